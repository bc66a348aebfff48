package fluxnet

import (
	"fmt"

	"github.com/RuyaSavascisi/Flux-Networks/internal/protocol"
)

// WritePayload serializes the subset of network state selected by kind.
// The password hash never crosses the wire.
func (n *Network) WritePayload(buf *protocol.Buffer, kind protocol.PayloadKind) error {
	switch kind {
	case protocol.PayloadBasic:
		return n.writeBasic(buf)
	case protocol.PayloadMembers:
		return n.writeMembers(buf)
	case protocol.PayloadStatistics:
		n.stats.write(buf)
		return nil
	case protocol.PayloadFull:
		if err := n.writeBasic(buf); err != nil {
			return err
		}
		if err := n.writeMembers(buf); err != nil {
			return err
		}
		n.stats.write(buf)
		return nil
	default:
		return fmt.Errorf("fluxnet: unknown payload kind %d", kind)
	}
}

// ApplyPayload deserializes a state payload onto the network. Used by the
// client-side view of a network; the server only ever writes.
func (n *Network) ApplyPayload(buf *protocol.Buffer, kind protocol.PayloadKind) error {
	switch kind {
	case protocol.PayloadBasic:
		return n.readBasic(buf)
	case protocol.PayloadMembers:
		return n.readMembers(buf)
	case protocol.PayloadStatistics:
		return n.stats.read(buf)
	case protocol.PayloadFull:
		if err := n.readBasic(buf); err != nil {
			return err
		}
		if err := n.readMembers(buf); err != nil {
			return err
		}
		return n.stats.read(buf)
	default:
		return fmt.Errorf("fluxnet: unknown payload kind %d", kind)
	}
}

func (n *Network) writeBasic(buf *protocol.Buffer) error {
	if err := buf.WriteString(n.name, protocol.MaxNameBytes); err != nil {
		return err
	}
	buf.WriteI32(n.color)
	buf.WriteU8(byte(n.security))
	buf.WriteUUID(n.ownerID)
	return nil
}

func (n *Network) readBasic(buf *protocol.Buffer) error {
	name, err := buf.String(protocol.MaxNameBytes)
	if err != nil {
		return err
	}
	color, err := buf.I32()
	if err != nil {
		return err
	}
	sec, err := buf.U8()
	if err != nil {
		return err
	}
	if !Security(sec).Valid() {
		return fmt.Errorf("fluxnet: unknown security policy %d", sec)
	}
	owner, err := buf.UUID()
	if err != nil {
		return err
	}
	n.name = name
	n.color = color
	n.security = Security(sec)
	n.ownerID = owner
	return nil
}

func (n *Network) writeMembers(buf *protocol.Buffer) error {
	buf.WriteVarInt(int32(len(n.members)))
	for _, m := range n.members {
		buf.WriteUUID(m.ID)
		buf.WriteU8(byte(m.Tier))
		if err := buf.WriteString(m.Name, protocol.MaxNameBytes); err != nil {
			return err
		}
	}
	return nil
}

// memberMinBytes is the smallest wire size of one member entry: uuid, tier
// byte, one-byte name length.
const memberMinBytes = 16 + 1 + 1

func (n *Network) readMembers(buf *protocol.Buffer) error {
	count, err := buf.VarInt()
	if err != nil {
		return err
	}
	// A count past the body length cannot decode and must not allocate.
	if count < 0 || int(count) > buf.Remaining()/memberMinBytes {
		return protocol.ErrBadBatchSize
	}
	members := make([]Member, 0, count)
	for i := int32(0); i < count; i++ {
		id, err := buf.UUID()
		if err != nil {
			return err
		}
		tier, err := buf.U8()
		if err != nil {
			return err
		}
		if Tier(tier) > Owner {
			return fmt.Errorf("fluxnet: unknown tier %d", tier)
		}
		name, err := buf.String(protocol.MaxNameBytes)
		if err != nil {
			return err
		}
		members = append(members, Member{ID: id, Name: name, Tier: Tier(tier)})
	}
	n.members = members
	return nil
}
