package server

import (
	"github.com/RuyaSavascisi/Flux-Networks/internal/fluxnet"
	"github.com/RuyaSavascisi/Flux-Networks/internal/protocol"
)

// Fan-out builds outbound state messages and routes them to one session or
// to every connected client. Authorization is the dispatcher's problem; by
// the time a handler reaches fan-out it has already been established.

func (d *Dispatcher) sendResponse(s *Session, token byte, key uint16, code protocol.ResponseCode) {
	var buf protocol.Buffer
	buf.WriteU8(token)
	buf.WriteU16(key)
	buf.WriteU8(byte(code))
	if err := s.Send(protocol.S2CResponse, buf.Bytes()); err != nil {
		d.log.Debug().Str("player", s.Name).Err(err).Msg("response send failed")
	}
}

func (d *Dispatcher) sendCapability(s *Session) {
	var buf protocol.Buffer
	buf.WriteBool(s.SuperAdmin)
	buf.WriteI32(s.WirelessMode)
	buf.WriteVarInt(s.WirelessNetwork)
	if err := s.Send(protocol.S2CCapability, buf.Bytes()); err != nil {
		d.log.Debug().Str("player", s.Name).Err(err).Msg("capability send failed")
	}
}

// updateNetworksMessage builds one frame covering every given network, each
// serialized under the same payload kind.
func updateNetworksMessage(kind protocol.PayloadKind, networks []*fluxnet.Network) ([]byte, error) {
	var buf protocol.Buffer
	buf.WriteU8(byte(kind))
	buf.WriteVarInt(int32(len(networks)))
	for _, n := range networks {
		buf.WriteVarInt(n.ID())
		var body protocol.Buffer
		if err := n.WritePayload(&body, kind); err != nil {
			return nil, err
		}
		if err := buf.WriteBlob(body.Bytes()); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func membersMessage(n *fluxnet.Network) ([]byte, error) {
	var buf protocol.Buffer
	buf.WriteVarInt(n.ID())
	var body protocol.Buffer
	if err := n.WritePayload(&body, protocol.PayloadMembers); err != nil {
		return nil, err
	}
	if err := buf.WriteBlob(body.Bytes()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func connectionsMessage(networkID int32, payloads [][]byte) ([]byte, error) {
	var buf protocol.Buffer
	buf.WriteVarInt(networkID)
	buf.WriteVarInt(int32(len(payloads)))
	for _, p := range payloads {
		if err := buf.WriteBlob(p); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func deviceBufferMessage(pos protocol.GlobalPos, id byte, payload []byte) []byte {
	var buf protocol.Buffer
	buf.WritePos(pos)
	buf.WriteU8(id)
	buf.WriteRaw(payload)
	return buf.Bytes()
}

// BroadcastDeviceBuffer pushes a device-originated sync buffer to every
// connected client. The device layer calls this from the executor when a
// device needs to re-sync its client-side state; ids in the server-to-client
// direction carry the high bit.
func (d *Dispatcher) BroadcastDeviceBuffer(pos protocol.GlobalPos, id byte, payload []byte) {
	d.broadcast(protocol.S2CDeviceBuffer, deviceBufferMessage(pos, id, payload))
}

// sendNetworkUpdate targets one session with a single-network state delta.
func (d *Dispatcher) sendNetworkUpdate(s *Session, n *fluxnet.Network, kind protocol.PayloadKind) {
	msg, err := updateNetworksMessage(kind, []*fluxnet.Network{n})
	if err != nil {
		d.log.Error().Err(err).Int32("network", n.ID()).Msg("network update build failed")
		return
	}
	if err := s.Send(protocol.S2CUpdateNetwork, msg); err != nil {
		d.log.Debug().Str("player", s.Name).Err(err).Msg("network update send failed")
	}
}

// broadcast sends one message to every connected client.
func (d *Dispatcher) broadcast(index uint16, payload []byte) {
	for _, s := range d.sessions.All() {
		if err := s.Send(index, payload); err != nil {
			d.log.Debug().Str("player", s.Name).Err(err).Msg("broadcast send failed")
		}
	}
}

// broadcastNetworkUpdate pushes a state delta to all connected clients.
func (d *Dispatcher) broadcastNetworkUpdate(n *fluxnet.Network, kind protocol.PayloadKind) {
	msg, err := updateNetworksMessage(kind, []*fluxnet.Network{n})
	if err != nil {
		d.log.Error().Err(err).Int32("network", n.ID()).Msg("network update build failed")
		return
	}
	d.broadcast(protocol.S2CUpdateNetwork, msg)
}

// broadcastDeleteNetwork notifies every client that a network is gone.
func (d *Dispatcher) broadcastDeleteNetwork(id int32) {
	var buf protocol.Buffer
	buf.WriteVarInt(id)
	d.broadcast(protocol.S2CDeleteNetwork, buf.Bytes())
}
