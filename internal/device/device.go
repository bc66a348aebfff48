// Package device declares the capability surface the world simulation
// exposes to the protocol core. The core never owns device state; it only
// addresses devices by position and moves their network binding.
package device

import (
	"github.com/google/uuid"

	"github.com/RuyaSavascisi/Flux-Networks/internal/protocol"
)

// Device is one position-addressable connection handle.
type Device interface {
	Pos() protocol.GlobalPos
	NetworkID() int32

	// Controller reports whether the device is controller-class. A network
	// holds at most one controller.
	Controller() bool

	CanAccess(player uuid.UUID) bool
	SetOwner(player uuid.UUID)

	// ApplySettings applies a client-supplied settings tree. The payload is
	// opaque to the protocol core.
	ApplySettings(settings []byte) error

	// Snapshot serializes the device's custom payload for the given kind.
	Snapshot(kind byte) ([]byte, error)

	// HandleBuffer consumes a raw device-defined message body. id is the
	// device-local message discriminator, strictly positive for
	// client-to-server traffic.
	HandleBuffer(id byte, buf *protocol.Buffer) error

	Connect(networkID int32)
	Disconnect()
}

// World resolves live positions and players. Provided by the simulation.
type World interface {
	DeviceAt(pos protocol.GlobalPos) (Device, bool)

	// ResolvePlayer maps a player id to a live display name. Offline or
	// unknown players do not resolve.
	ResolvePlayer(id uuid.UUID) (string, bool)
}
