package server

import (
	"fmt"

	"github.com/RuyaSavascisi/Flux-Networks/internal/fluxnet"
	"github.com/RuyaSavascisi/Flux-Networks/internal/protocol"
)

// Handlers decode fixed fields and run cheap shape validation on the
// transport goroutine, then defer the privileged portion to the executor.
// Inside every deferred task the first check is whether the originating
// session is still open.

func (d *Dispatcher) onDeviceBuffer(s *Session, buf *protocol.Buffer) error {
	pos, err := buf.Pos()
	if err != nil {
		return err
	}
	id, err := buf.U8()
	if err != nil {
		return err
	}
	// Client-to-server device message ids are strictly positive; the high
	// bit marks the server-to-client direction.
	if id == 0 || id >= 0x80 {
		return fmt.Errorf("invalid device buffer id %d", id)
	}
	rest := buf.Rest()

	d.exec.Submit(func() {
		if s.Closed() {
			return
		}
		dev, ok := d.world.DeviceAt(pos)
		if !ok || !dev.CanAccess(s.PlayerID) {
			return
		}
		body := protocol.NewBuffer(rest)
		if err := dev.HandleBuffer(id, body); err != nil {
			d.kick(s, err)
			return
		}
		if err := body.ExpectEOF(); err != nil {
			d.kick(s, err)
		}
	})
	return nil
}

func (d *Dispatcher) onSuperAdmin(s *Session, buf *protocol.Buffer) error {
	token, err := buf.U8()
	if err != nil {
		return err
	}
	enable, err := buf.Bool()
	if err != nil {
		return err
	}
	if err := buf.ExpectEOF(); err != nil {
		return err
	}

	d.exec.Submit(func() {
		if s.Closed() {
			return
		}
		if s.SuperAdmin || d.super(s) {
			s.SuperAdmin = enable
			d.sendCapability(s)
		} else {
			d.sendResponse(s, token, protocol.RequestSuperAdmin, protocol.ResponseReject)
		}
	})
	return nil
}

func (d *Dispatcher) onCreateNetwork(s *Session, buf *protocol.Buffer) error {
	token, err := buf.U8()
	if err != nil {
		return err
	}
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
	security := fluxnet.Security(sec)
	if !security.Valid() {
		return fmt.Errorf("unknown security policy %d", sec)
	}
	password := ""
	if security == fluxnet.SecurityEncrypted {
		password, err = buf.String(protocol.MaxPasswordBytes)
		if err != nil {
			return err
		}
	}
	if err := buf.ExpectEOF(); err != nil {
		return err
	}
	if !fluxnet.ValidName(name) {
		return fmt.Errorf("invalid network name %q", name)
	}
	if security == fluxnet.SecurityEncrypted && !fluxnet.ValidPassword(password) {
		return fmt.Errorf("invalid network password")
	}

	d.exec.Submit(func() {
		if s.Closed() {
			return
		}
		if s.MenuToken == 0 || s.MenuToken != token {
			d.sendResponse(s, token, protocol.RequestCreateNetwork, protocol.ResponseReject)
			return
		}
		n, err := d.registry.Create(s.PlayerID, s.Name, name, color, security, password)
		if err != nil {
			d.log.Error().Err(err).Msg("network create failed")
			d.sendResponse(s, token, protocol.RequestCreateNetwork, protocol.ResponseReject)
			return
		}
		if !n.Valid() {
			d.sendResponse(s, token, protocol.RequestCreateNetwork, protocol.ResponseNoSpace)
			return
		}
		d.log.Info().Str("player", s.Name).Int32("network", n.ID()).Str("name", name).Msg("network created")
		d.sendNetworkUpdate(s, n, protocol.PayloadBasic)
		d.sendResponse(s, token, protocol.RequestCreateNetwork, protocol.ResponseSuccess)
	})
	return nil
}

func (d *Dispatcher) onDeleteNetwork(s *Session, buf *protocol.Buffer) error {
	token, err := buf.U8()
	if err != nil {
		return err
	}
	networkID, err := buf.VarInt()
	if err != nil {
		return err
	}
	if err := buf.ExpectEOF(); err != nil {
		return err
	}

	d.exec.Submit(func() {
		if s.Closed() {
			return
		}
		n := d.registry.Get(networkID)
		if d.checkTokenFailed(token, s, n) {
			d.sendResponse(s, token, protocol.RequestDeleteNetwork, protocol.ResponseReject)
			return
		}
		if !d.canDelete(s, n) {
			d.sendResponse(s, token, protocol.RequestDeleteNetwork, protocol.ResponseNoOwner)
			return
		}
		d.registry.Delete(n.ID())
		d.log.Info().Str("player", s.Name).Int32("network", n.ID()).Msg("network deleted")
		d.broadcastDeleteNetwork(n.ID())
		d.sendResponse(s, token, protocol.RequestDeleteNetwork, protocol.ResponseSuccess)
	})
	return nil
}

func (d *Dispatcher) onEditDevice(s *Session, buf *protocol.Buffer) error {
	token, err := buf.U8()
	if err != nil {
		return err
	}
	pos, err := buf.Pos()
	if err != nil {
		return err
	}
	settings, err := buf.Blob()
	if err != nil {
		return err
	}
	if err := buf.ExpectEOF(); err != nil {
		return err
	}

	d.exec.Submit(func() {
		if s.Closed() {
			return
		}
		if s.MenuToken == 0 || s.MenuToken != token {
			d.sendResponse(s, token, protocol.RequestEditDevice, protocol.ResponseReject)
			return
		}
		dev, ok := d.world.DeviceAt(pos)
		if !ok || !dev.CanAccess(s.PlayerID) {
			d.sendResponse(s, token, protocol.RequestEditDevice, protocol.ResponseReject)
			return
		}
		if err := dev.ApplySettings(settings); err != nil {
			d.kick(s, err)
			return
		}
		d.sendResponse(s, token, protocol.RequestEditDevice, protocol.ResponseSuccess)
	})
	return nil
}

func (d *Dispatcher) onBindDevice(s *Session, buf *protocol.Buffer) error {
	token, err := buf.U8()
	if err != nil {
		return err
	}
	pos, err := buf.Pos()
	if err != nil {
		return err
	}
	networkID, err := buf.VarInt()
	if err != nil {
		return err
	}
	password, err := buf.String(protocol.MaxPasswordBytes)
	if err != nil {
		return err
	}
	if err := buf.ExpectEOF(); err != nil {
		return err
	}
	if password != "" && !fluxnet.ValidPassword(password) {
		return fmt.Errorf("invalid network password")
	}

	d.exec.Submit(func() {
		if s.Closed() {
			return
		}
		dev, ok := d.world.DeviceAt(pos)
		if !ok {
			d.sendResponse(s, token, protocol.RequestBindDevice, protocol.ResponseReject)
			return
		}
		if dev.NetworkID() == networkID {
			// Already bound; idempotent success.
			d.sendResponse(s, token, protocol.RequestBindDevice, protocol.ResponseSuccess)
			return
		}
		if !dev.CanAccess(s.PlayerID) {
			d.sendResponse(s, token, protocol.RequestBindDevice, protocol.ResponseReject)
			return
		}
		target := d.registry.Get(networkID)
		if dev.Controller() && target.Valid() && target.HasController() {
			d.sendResponse(s, token, protocol.RequestBindDevice, protocol.ResponseHasController)
			return
		}
		// Binding to an invalid network is a plain disconnect.
		if !target.Valid() || target.CanAccess(s.PlayerID, password) {
			d.registry.Get(dev.NetworkID()).RemoveDevice(dev)
			if target.Valid() {
				dev.SetOwner(s.PlayerID)
				dev.Connect(target.ID())
				target.AddDevice(dev)
			} else {
				dev.Disconnect()
			}
			d.sendResponse(s, token, protocol.RequestBindDevice, protocol.ResponseSuccess)
			return
		}
		if password == "" {
			d.sendResponse(s, token, protocol.RequestBindDevice, protocol.ResponseRequirePassword)
		} else {
			d.sendResponse(s, token, protocol.RequestBindDevice, protocol.ResponseInvalidPassword)
		}
	})
	return nil
}

func (d *Dispatcher) onEditNetwork(s *Session, buf *protocol.Buffer) error {
	token, err := buf.U8()
	if err != nil {
		return err
	}
	networkID, err := buf.VarInt()
	if err != nil {
		return err
	}
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
	security := fluxnet.Security(sec)
	if !security.Valid() {
		return fmt.Errorf("unknown security policy %d", sec)
	}
	password := ""
	if security == fluxnet.SecurityEncrypted {
		password, err = buf.String(protocol.MaxPasswordBytes)
		if err != nil {
			return err
		}
	}
	if err := buf.ExpectEOF(); err != nil {
		return err
	}
	if !fluxnet.ValidName(name) {
		return fmt.Errorf("invalid network name %q", name)
	}
	if password != "" && !fluxnet.ValidPassword(password) {
		return fmt.Errorf("invalid network password")
	}

	d.exec.Submit(func() {
		if s.Closed() {
			return
		}
		n := d.registry.Get(networkID)
		if d.checkTokenFailed(token, s, n) {
			d.sendResponse(s, token, protocol.RequestEditNetwork, protocol.ResponseReject)
			return
		}
		if !d.canEdit(s, n) {
			d.sendResponse(s, token, protocol.RequestEditNetwork, protocol.ResponseNoAdmin)
			return
		}
		changed := n.SetName(name)
		changed = n.SetColor(color) || changed
		changed = n.SetSecurity(security) || changed
		if password != "" {
			// Password changes are applied silently, never echoed.
			if err := n.SetPassword(password); err != nil {
				d.log.Error().Err(err).Int32("network", n.ID()).Msg("password update failed")
			}
		}
		if changed {
			d.broadcastNetworkUpdate(n, protocol.PayloadBasic)
		}
		d.sendResponse(s, token, protocol.RequestEditNetwork, protocol.ResponseSuccess)
	})
	return nil
}

func (d *Dispatcher) onUpdateNetwork(s *Session, buf *protocol.Buffer) error {
	token, err := buf.U8()
	if err != nil {
		return err
	}
	count, err := buf.VarInt()
	if err != nil {
		return err
	}
	// Each id takes at least one byte; a count past the body length cannot
	// decode and must not allocate.
	if count <= 0 || int(count) > buf.Remaining() {
		return protocol.ErrBadBatchSize
	}
	ids := make([]int32, count)
	for i := range ids {
		if ids[i], err = buf.VarInt(); err != nil {
			return err
		}
	}
	kindByte, err := buf.U8()
	if err != nil {
		return err
	}
	kind := protocol.PayloadKind(kindByte)
	if !kind.Valid() {
		return fmt.Errorf("unknown payload kind %d", kindByte)
	}
	if err := buf.ExpectEOF(); err != nil {
		return err
	}

	d.exec.Submit(func() {
		if s.Closed() {
			return
		}
		reject := true
		if s.MenuToken != 0 && s.MenuToken == token {
			if s.SuperAdmin {
				reject = false
			} else if len(ids) == 1 {
				// Non-super-admins may refresh only the one network their
				// open session can see.
				n := d.registry.Get(ids[0])
				if n.Valid() {
					if !s.MenuAdminSurface {
						reject = s.MenuNetworkID != n.ID()
					} else {
						reject = !n.CanAccess(s.PlayerID, "")
					}
				}
			}
		}
		if reject {
			d.sendResponse(s, token, protocol.RequestUpdateNetwork, protocol.ResponseReject)
			return
		}
		networks := make([]*fluxnet.Network, 0, len(ids))
		for _, id := range ids {
			if n := d.registry.Get(id); n.Valid() {
				networks = append(networks, n)
			}
		}
		msg, err := updateNetworksMessage(kind, networks)
		if err != nil {
			d.log.Error().Err(err).Msg("network update build failed")
			return
		}
		if err := s.Send(protocol.S2CUpdateNetwork, msg); err != nil {
			d.log.Debug().Str("player", s.Name).Err(err).Msg("network update send failed")
			return
		}
		d.sendResponse(s, token, protocol.RequestUpdateNetwork, protocol.ResponseSuccess)
	})
	return nil
}

func (d *Dispatcher) onEditMember(s *Session, buf *protocol.Buffer) error {
	token, err := buf.U8()
	if err != nil {
		return err
	}
	networkID, err := buf.VarInt()
	if err != nil {
		return err
	}
	target, err := buf.UUID()
	if err != nil {
		return err
	}
	opByte, err := buf.U8()
	if err != nil {
		return err
	}
	op := fluxnet.MemberOp(opByte)
	if !op.Valid() {
		return fmt.Errorf("unknown membership op %d", opByte)
	}
	if err := buf.ExpectEOF(); err != nil {
		return err
	}
	// A player may not act on their own membership via this channel;
	// rejected before anything is scheduled.
	if target == s.PlayerID {
		d.sendResponse(s, token, protocol.RequestEditMember, protocol.ResponseReject)
		return nil
	}

	d.exec.Submit(func() {
		if s.Closed() {
			return
		}
		n := d.registry.Get(networkID)
		if d.checkTokenFailed(token, s, n) {
			d.sendResponse(s, token, protocol.RequestEditMember, protocol.ResponseReject)
			return
		}
		code := n.ChangeMembership(s.PlayerID, s.SuperAdmin, target, op, d.world.ResolvePlayer)
		if code == protocol.ResponseSuccess {
			d.log.Info().
				Str("player", s.Name).
				Int32("network", n.ID()).
				Str("op", op.String()).
				Msg("membership changed")
			msg, err := membersMessage(n)
			if err != nil {
				d.log.Error().Err(err).Int32("network", n.ID()).Msg("members update build failed")
			} else if err := s.Send(protocol.S2CUpdateMembers, msg); err != nil {
				d.log.Debug().Str("player", s.Name).Err(err).Msg("members update send failed")
			}
		}
		d.sendResponse(s, token, protocol.RequestEditMember, code)
	})
	return nil
}

func (d *Dispatcher) onEditConnection(s *Session, buf *protocol.Buffer) error {
	token, err := buf.U8()
	if err != nil {
		return err
	}
	networkID, err := buf.VarInt()
	if err != nil {
		return err
	}
	count, err := buf.VarInt()
	if err != nil {
		return err
	}
	if count <= 0 || int(count) > buf.Remaining()/protocol.PosMinBytes {
		return protocol.ErrBadBatchSize
	}
	positions := make([]protocol.GlobalPos, count)
	for i := range positions {
		if positions[i], err = buf.Pos(); err != nil {
			return err
		}
	}
	settings, err := buf.Blob()
	if err != nil {
		return err
	}
	if err := buf.ExpectEOF(); err != nil {
		return err
	}

	d.exec.Submit(func() {
		if s.Closed() {
			return
		}
		n := d.registry.Get(networkID)
		if d.checkTokenFailed(token, s, n) {
			d.sendResponse(s, token, protocol.RequestEditConnection, protocol.ResponseReject)
			return
		}
		if !d.canEdit(s, n) {
			d.sendResponse(s, token, protocol.RequestEditConnection, protocol.ResponseNoAdmin)
			return
		}
		for _, pos := range positions {
			dev, ok := n.DeviceAt(pos)
			if !ok {
				continue
			}
			if err := dev.ApplySettings(settings); err != nil {
				d.kick(s, err)
				return
			}
		}
		d.sendResponse(s, token, protocol.RequestEditConnection, protocol.ResponseSuccess)
	})
	return nil
}

func (d *Dispatcher) onWirelessMode(s *Session, buf *protocol.Buffer) error {
	token, err := buf.U8()
	if err != nil {
		return err
	}
	mode, err := buf.I32()
	if err != nil {
		return err
	}
	networkID, err := buf.VarInt()
	if err != nil {
		return err
	}
	if err := buf.ExpectEOF(); err != nil {
		return err
	}

	d.exec.Submit(func() {
		if s.Closed() {
			return
		}
		n := d.registry.Get(networkID)
		// Binding to an invalid network clears the default and is allowed.
		if n.Valid() && d.checkTokenFailed(token, s, n) {
			d.sendResponse(s, token, protocol.RequestWirelessMode, protocol.ResponseReject)
			return
		}
		s.WirelessMode = mode
		s.WirelessNetwork = networkID
		d.sendCapability(s)
		d.sendResponse(s, token, protocol.RequestWirelessMode, protocol.ResponseSuccess)
	})
	return nil
}

func (d *Dispatcher) onDisconnect(s *Session, buf *protocol.Buffer) error {
	token, err := buf.U8()
	if err != nil {
		return err
	}
	networkID, err := buf.VarInt()
	if err != nil {
		return err
	}
	count, err := buf.VarInt()
	if err != nil {
		return err
	}
	if count <= 0 || int(count) > buf.Remaining()/protocol.PosMinBytes {
		return protocol.ErrBadBatchSize
	}
	positions := make([]protocol.GlobalPos, count)
	for i := range positions {
		if positions[i], err = buf.Pos(); err != nil {
			return err
		}
	}
	if err := buf.ExpectEOF(); err != nil {
		return err
	}

	d.exec.Submit(func() {
		if s.Closed() {
			return
		}
		n := d.registry.Get(networkID)
		if d.checkTokenFailed(token, s, n) {
			d.sendResponse(s, token, protocol.RequestDisconnect, protocol.ResponseReject)
			return
		}
		if !d.canEdit(s, n) {
			d.sendResponse(s, token, protocol.RequestDisconnect, protocol.ResponseNoAdmin)
			return
		}
		for _, pos := range positions {
			if dev, ok := n.DeviceAt(pos); ok {
				n.RemoveDevice(dev)
				dev.Disconnect()
			}
		}
		d.sendResponse(s, token, protocol.RequestDisconnect, protocol.ResponseSuccess)
	})
	return nil
}

func (d *Dispatcher) onUpdateConnections(s *Session, buf *protocol.Buffer) error {
	token, err := buf.U8()
	if err != nil {
		return err
	}
	networkID, err := buf.VarInt()
	if err != nil {
		return err
	}
	count, err := buf.VarInt()
	if err != nil {
		return err
	}
	if count <= 0 || count > protocol.MaxConnectionBatch {
		return protocol.ErrBadBatchSize
	}
	positions := make([]protocol.GlobalPos, count)
	for i := range positions {
		if positions[i], err = buf.Pos(); err != nil {
			return err
		}
	}
	if err := buf.ExpectEOF(); err != nil {
		return err
	}

	d.exec.Submit(func() {
		if s.Closed() {
			return
		}
		n := d.registry.Get(networkID)
		if d.checkTokenFailed(token, s, n) || !(s.SuperAdmin || n.CanAccess(s.PlayerID, "")) {
			d.sendResponse(s, token, protocol.RequestUpdateConnections, protocol.ResponseReject)
			return
		}
		payloads := make([][]byte, 0, len(positions))
		for _, pos := range positions {
			dev, ok := n.DeviceAt(pos)
			if !ok {
				continue
			}
			snapshot, err := dev.Snapshot(byte(protocol.PayloadFull))
			if err != nil {
				d.log.Error().Err(err).Msg("device snapshot failed")
				continue
			}
			payloads = append(payloads, snapshot)
		}
		msg, err := connectionsMessage(n.ID(), payloads)
		if err != nil {
			d.log.Error().Err(err).Msg("connections update build failed")
			return
		}
		if err := s.Send(protocol.S2CUpdateConnections, msg); err != nil {
			d.log.Debug().Str("player", s.Name).Err(err).Msg("connections update send failed")
			return
		}
		d.sendResponse(s, token, protocol.RequestUpdateConnections, protocol.ResponseSuccess)
	})
	return nil
}
