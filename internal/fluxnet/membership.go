package fluxnet

import (
	"github.com/google/uuid"

	"github.com/RuyaSavascisi/Flux-Networks/internal/protocol"
)

// MemberOp requests one membership transition.
type MemberOp byte

const (
	OpAddMember MemberOp = iota
	OpPromote
	OpDemote
	OpRevoke
	OpTransferOwnership
)

// Valid reports whether op names a known transition.
func (op MemberOp) Valid() bool {
	return op <= OpTransferOwnership
}

func (op MemberOp) String() string {
	switch op {
	case OpAddMember:
		return "add_member"
	case OpPromote:
		return "promote"
	case OpDemote:
		return "demote"
	case OpRevoke:
		return "revoke"
	case OpTransferOwnership:
		return "transfer_ownership"
	default:
		return "unknown"
	}
}

// Resolver maps a player id to a live display name. Targets that do not
// resolve cannot be added or given ownership.
type Resolver func(id uuid.UUID) (string, bool)

// ChangeMembership applies one membership transition and returns the
// response code for the requester. Every path either fully applies or leaves
// the member list and owner identity untouched.
//
// Authority: every transition needs edit access; Promote and
// TransferOwnership additionally need delete access. Any admin may demote
// another admin back to User, but only an owner or super-admin may grant
// Admin. That asymmetry is part of the protocol contract.
//
// Self-targeting is rejected by the dispatcher before this runs.
func (n *Network) ChangeMembership(requester uuid.UUID, superAdmin bool, target uuid.UUID, op MemberOp, resolve Resolver) protocol.ResponseCode {
	tier := ResolveAccess(requester, n, "")
	canEdit := superAdmin || tier.CanEdit()
	canDelete := superAdmin || tier.CanDelete()

	// Promote and transfer need delete authority; report the stronger
	// requirement regardless of the requester's edit access.
	if (op == OpPromote || op == OpTransferOwnership) && !canDelete {
		return protocol.ResponseNoOwner
	}
	if !canEdit {
		return protocol.ResponseNoAdmin
	}

	switch op {
	case OpAddMember:
		if _, ok := n.member(target); ok {
			// Idempotent: adding an existing member succeeds as a no-op.
			return protocol.ResponseSuccess
		}
		name, ok := resolve(target)
		if !ok {
			return protocol.ResponseInvalidTarget
		}
		n.members = append(n.members, Member{ID: target, Name: name, Tier: User})
		return protocol.ResponseSuccess

	case OpPromote:
		m, ok := n.member(target)
		if !ok {
			return protocol.ResponseInvalidUser
		}
		m.Tier = Admin
		return protocol.ResponseSuccess

	case OpDemote:
		m, ok := n.member(target)
		if !ok {
			return protocol.ResponseInvalidUser
		}
		m.Tier = User
		return protocol.ResponseSuccess

	case OpRevoke:
		for i := range n.members {
			if n.members[i].ID == target {
				n.members = append(n.members[:i], n.members[i+1:]...)
				return protocol.ResponseSuccess
			}
		}
		return protocol.ResponseInvalidUser

	case OpTransferOwnership:
		return n.transferOwnership(target, resolve)

	default:
		return protocol.ResponseReject
	}
}

// transferOwnership moves the Owner tier to target. Order matters: the
// target is resolved before anything mutates, then every delete-capable
// member is demoted to User so the network holds at most one Owner at every
// step, then the target gains Owner and the owner identity field follows.
func (n *Network) transferOwnership(target uuid.UUID, resolve Resolver) protocol.ResponseCode {
	name := ""
	if m, ok := n.member(target); ok {
		name = m.Name
	} else {
		live, ok := resolve(target)
		if !ok {
			return protocol.ResponseInvalidTarget
		}
		name = live
	}

	for i := range n.members {
		if n.members[i].Tier.CanDelete() {
			n.members[i].Tier = User
		}
	}

	if m, ok := n.member(target); ok {
		m.Tier = Owner
	} else {
		n.members = append(n.members, Member{ID: target, Name: name, Tier: Owner})
	}
	n.ownerID = target
	return protocol.ResponseSuccess
}
