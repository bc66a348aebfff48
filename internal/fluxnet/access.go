package fluxnet

import "github.com/google/uuid"

// Tier is an ordered access level. The order is total and strict:
// Guest < User < Admin < Owner.
type Tier byte

const (
	Guest Tier = iota
	User
	Admin
	Owner
)

func (t Tier) String() string {
	switch t {
	case Guest:
		return "guest"
	case User:
		return "user"
	case Admin:
		return "admin"
	case Owner:
		return "owner"
	default:
		return "unknown"
	}
}

// CanEdit reports whether the tier may change network settings, membership
// and connections.
func (t Tier) CanEdit() bool {
	return t >= Admin
}

// CanDelete reports whether the tier may delete the network, grant Admin or
// transfer ownership. The global super-admin override is applied by the
// caller, never here.
func (t Tier) CanDelete() bool {
	return t >= Owner
}

// ResolveAccess computes the requester's tier against current network state.
// Deterministic and side-effect free; safe on any goroutine.
//
// Owner identity wins over the member list; a non-member gains User on an
// open network or with a matching password, otherwise Guest.
func ResolveAccess(requester uuid.UUID, n *Network, password string) Tier {
	if !n.Valid() {
		return Guest
	}
	if requester == n.ownerID {
		return Owner
	}
	if m, ok := n.member(requester); ok {
		return m.Tier
	}
	if n.security == SecurityOpen || n.matchPassword(password) {
		return User
	}
	return Guest
}
