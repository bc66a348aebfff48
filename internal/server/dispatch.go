package server

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/RuyaSavascisi/Flux-Networks/internal/device"
	"github.com/RuyaSavascisi/Flux-Networks/internal/fluxnet"
	"github.com/RuyaSavascisi/Flux-Networks/internal/protocol"
)

// SuperAdminPolicy decides whether a player may switch the global
// super-admin override on. Granted out-of-band; the default policy denies
// everyone.
type SuperAdminPolicy func(s *Session) bool

// Dispatcher routes inbound indexed messages through decode, validation and
// the authoritative executor, then emits responses and notifications.
type Dispatcher struct {
	registry *fluxnet.Registry
	sessions *Sessions
	world    device.World
	exec     Submitter
	super    SuperAdminPolicy
	log      zerolog.Logger
}

func NewDispatcher(registry *fluxnet.Registry, sessions *Sessions, world device.World, exec Submitter, super SuperAdminPolicy, log zerolog.Logger) *Dispatcher {
	if super == nil {
		super = func(*Session) bool { return false }
	}
	return &Dispatcher{
		registry: registry,
		sessions: sessions,
		world:    world,
		exec:     exec,
		super:    super,
		log:      log,
	}
}

// Sessions exposes the session table for transport attach/detach, which must
// itself run on the executor.
func (d *Dispatcher) Sessions() *Sessions {
	return d.sessions
}

// handlerFunc decodes one message body and schedules its privileged portion.
// A returned error is a protocol violation and costs the connection.
type handlerFunc func(d *Dispatcher, s *Session, buf *protocol.Buffer) error

// handlers is the flat dispatch table. Indices are contractually sequential
// and must not gap; keep entries in catalogue order.
var handlers = [protocol.C2SCount]handlerFunc{
	protocol.C2SDeviceBuffer:      (*Dispatcher).onDeviceBuffer,
	protocol.C2SSuperAdmin:        (*Dispatcher).onSuperAdmin,
	protocol.C2SCreateNetwork:     (*Dispatcher).onCreateNetwork,
	protocol.C2SDeleteNetwork:     (*Dispatcher).onDeleteNetwork,
	protocol.C2SEditDevice:        (*Dispatcher).onEditDevice,
	protocol.C2SBindDevice:        (*Dispatcher).onBindDevice,
	protocol.C2SEditNetwork:       (*Dispatcher).onEditNetwork,
	protocol.C2SUpdateNetwork:     (*Dispatcher).onUpdateNetwork,
	protocol.C2SEditMember:        (*Dispatcher).onEditMember,
	protocol.C2SEditConnection:    (*Dispatcher).onEditConnection,
	protocol.C2SWirelessMode:      (*Dispatcher).onWirelessMode,
	protocol.C2SDisconnect:        (*Dispatcher).onDisconnect,
	protocol.C2SUpdateConnections: (*Dispatcher).onUpdateConnections,
}

// HandleMessage decodes one inbound message on the calling (transport)
// goroutine. Decode faults terminate the connection; the client sees only a
// generic invalid-packet notice while the full reason stays in the log.
func (d *Dispatcher) HandleMessage(s *Session, index uint16, payload []byte) {
	if int(index) >= len(handlers) {
		d.kick(s, fmt.Errorf("%w: %d", protocol.ErrUnknownMessage, index))
		return
	}
	buf := protocol.NewBuffer(payload)
	if err := handlers[index](d, s, buf); err != nil {
		d.kick(s, fmt.Errorf("message %d: %w", index, err))
	}
}

func (d *Dispatcher) kick(s *Session, err error) {
	d.log.Info().Str("player", s.Name).Err(err).Msg("received invalid packet")
	s.sink.Kick("invalid packet")
}

// checkTokenFailed is the gating rule shared by every privileged handler.
// The token proves a live session for the player; the second clause
// re-derives authorization from current access-control state, so a revoked
// player is cut off on their very next request even with a stale token.
func (d *Dispatcher) checkTokenFailed(token byte, s *Session, n *fluxnet.Network) bool {
	if !n.Valid() {
		return true
	}
	if s.MenuToken == 0 || s.MenuToken != token {
		return true
	}
	if s.SuperAdmin {
		return false
	}
	if !s.MenuAdminSurface && s.MenuNetworkID == n.ID() {
		return false
	}
	return !n.CanAccess(s.PlayerID, "")
}

// canEdit folds the super-admin override into the tier check.
func (d *Dispatcher) canEdit(s *Session, n *fluxnet.Network) bool {
	return s.SuperAdmin || fluxnet.ResolveAccess(s.PlayerID, n, "").CanEdit()
}

// canDelete folds the super-admin override into the tier check.
func (d *Dispatcher) canDelete(s *Session, n *fluxnet.Network) bool {
	return s.SuperAdmin || fluxnet.ResolveAccess(s.PlayerID, n, "").CanDelete()
}
