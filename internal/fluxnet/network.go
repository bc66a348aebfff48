package fluxnet

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/RuyaSavascisi/Flux-Networks/internal/device"
	"github.com/RuyaSavascisi/Flux-Networks/internal/protocol"
)

// Security is a network's join policy.
type Security byte

const (
	SecurityOpen Security = iota
	SecurityEncrypted
)

// Valid reports whether s names a known policy.
func (s Security) Valid() bool {
	return s == SecurityOpen || s == SecurityEncrypted
}

// Member is one (player, tier) entry. Mutated only through the membership
// state machine.
type Member struct {
	ID   uuid.UUID
	Name string
	Tier Tier
}

// Network is one shared, mutable network entity. The id is assigned once by
// the registry and never changes. The zero Network is the invalid sentinel:
// id 0, Valid() false, Guest access for everyone.
type Network struct {
	id           int32
	name         string
	color        int32
	security     Security
	passwordHash []byte
	ownerID      uuid.UUID
	members      []Member
	devices      []device.Device
	stats        Statistics
}

func (n *Network) ID() int32 {
	return n.id
}

// Valid reports whether the network exists in the registry. Lookups of
// unknown ids return the invalid sentinel instead of nil.
func (n *Network) Valid() bool {
	return n.id > 0
}

func (n *Network) Name() string {
	return n.name
}

// SetName reports whether the stored name changed.
func (n *Network) SetName(name string) bool {
	if n.name == name {
		return false
	}
	n.name = name
	return true
}

func (n *Network) Color() int32 {
	return n.color
}

func (n *Network) SetColor(color int32) bool {
	if n.color == color {
		return false
	}
	n.color = color
	return true
}

func (n *Network) Security() Security {
	return n.security
}

func (n *Network) SetSecurity(s Security) bool {
	if n.security == s {
		return false
	}
	n.security = s
	return true
}

// SetPassword stores only a bcrypt hash; plaintext is never retained.
func (n *Network) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	n.passwordHash = hash
	return nil
}

func (n *Network) matchPassword(password string) bool {
	if len(n.passwordHash) == 0 || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(n.passwordHash, []byte(password)) == nil
}

// CanAccess reports whether the player reaches at least implicit User access.
func (n *Network) CanAccess(player uuid.UUID, password string) bool {
	return ResolveAccess(player, n, password) >= User
}

func (n *Network) Owner() uuid.UUID {
	return n.ownerID
}

// Members returns a copy of the member list in stored order.
func (n *Network) Members() []Member {
	out := make([]Member, len(n.members))
	copy(out, n.members)
	return out
}

func (n *Network) member(id uuid.UUID) (*Member, bool) {
	for i := range n.members {
		if n.members[i].ID == id {
			return &n.members[i], true
		}
	}
	return nil, false
}

// MemberTier returns the stored tier for a member.
func (n *Network) MemberTier(id uuid.UUID) (Tier, bool) {
	m, ok := n.member(id)
	if !ok {
		return Guest, false
	}
	return m.Tier, true
}

// AddDevice records a connected device reference.
func (n *Network) AddDevice(d device.Device) {
	if !n.Valid() {
		return
	}
	for _, have := range n.devices {
		if have == d {
			return
		}
	}
	n.devices = append(n.devices, d)
	n.stats.Connections = int32(len(n.devices))
}

// RemoveDevice drops a connected device reference.
func (n *Network) RemoveDevice(d device.Device) {
	for i, have := range n.devices {
		if have == d {
			n.devices = append(n.devices[:i], n.devices[i+1:]...)
			n.stats.Connections = int32(len(n.devices))
			return
		}
	}
}

// Devices returns the connected device references.
func (n *Network) Devices() []device.Device {
	out := make([]device.Device, len(n.devices))
	copy(out, n.devices)
	return out
}

// DeviceAt finds a connected device by position.
func (n *Network) DeviceAt(pos protocol.GlobalPos) (device.Device, bool) {
	for _, d := range n.devices {
		if d.Pos() == pos {
			return d, true
		}
	}
	return nil, false
}

// HasController reports whether a controller-class device is connected.
func (n *Network) HasController() bool {
	for _, d := range n.devices {
		if d.Controller() {
			return true
		}
	}
	return false
}

// Stats exposes the server-maintained counters. Clients never write these.
func (n *Network) Stats() *Statistics {
	return &n.stats
}

// ValidName reports whether a display name is acceptable: non-blank, within
// the wire cap, free of control characters.
func ValidName(name string) bool {
	if name == "" || len(name) > protocol.MaxNameBytes {
		return false
	}
	if strings.TrimSpace(name) == "" {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// ValidPassword reports whether a password is acceptable: 1..256 bytes of
// printable ASCII without spaces.
func ValidPassword(password string) bool {
	if password == "" || len(password) > protocol.MaxPasswordBytes {
		return false
	}
	for _, r := range password {
		if r <= ' ' || r > '~' {
			return false
		}
	}
	return true
}
