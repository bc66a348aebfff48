package fluxnet

import (
	"testing"

	"github.com/google/uuid"

	"github.com/RuyaSavascisi/Flux-Networks/internal/protocol"
)

func resolveAll(uuid.UUID) (string, bool) { return "resolved", true }

func resolveNone(uuid.UUID) (string, bool) { return "", false }

func TestAddMemberIdempotent(t *testing.T) {
	n, owner := networkWithOwner(t, SecurityOpen, "")
	target := uuid.New()

	if code := n.ChangeMembership(owner, false, target, OpAddMember, resolveAll); code != protocol.ResponseSuccess {
		t.Fatalf("first add: %v", code)
	}
	if code := n.ChangeMembership(owner, false, target, OpAddMember, resolveAll); code != protocol.ResponseSuccess {
		t.Fatalf("second add: %v", code)
	}

	count := 0
	for _, m := range n.Members() {
		if m.ID == target {
			count++
			if m.Tier != User {
				t.Fatalf("expected User tier, got %v", m.Tier)
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one entry for target, got %d", count)
	}
}

func TestAddMemberUnresolvable(t *testing.T) {
	n, owner := networkWithOwner(t, SecurityOpen, "")
	before := len(n.Members())

	if code := n.ChangeMembership(owner, false, uuid.New(), OpAddMember, resolveNone); code != protocol.ResponseInvalidTarget {
		t.Fatalf("expected invalid_target, got %v", code)
	}
	if len(n.Members()) != before {
		t.Fatalf("member list mutated on failure")
	}
}

func TestPromoteRequiresDeleteAuthority(t *testing.T) {
	n, _ := networkWithOwner(t, SecurityOpen, "")
	requester := uuid.New()
	other := uuid.New()
	addMember(n, requester, "requester", User)
	addMember(n, other, "other", User)
	before := n.Members()

	// A plain user lacks delete authority; the stronger requirement wins.
	if code := n.ChangeMembership(requester, false, other, OpPromote, resolveAll); code != protocol.ResponseNoOwner {
		t.Fatalf("user requester: expected no_owner, got %v", code)
	}

	// An admin can edit but cannot grant Admin.
	admin := uuid.New()
	addMember(n, admin, "admin", Admin)
	if code := n.ChangeMembership(admin, false, other, OpPromote, resolveAll); code != protocol.ResponseNoOwner {
		t.Fatalf("admin requester: expected no_owner, got %v", code)
	}

	got := n.Members()
	for i, m := range before {
		if got[i] != m {
			t.Fatalf("member list changed on rejected promote")
		}
	}
}

func TestPromoteAndDemoteAsymmetry(t *testing.T) {
	n, owner := networkWithOwner(t, SecurityOpen, "")
	target := uuid.New()
	addMember(n, target, "target", User)

	if code := n.ChangeMembership(owner, false, target, OpPromote, resolveAll); code != protocol.ResponseSuccess {
		t.Fatalf("owner promote: %v", code)
	}
	if tier, _ := n.MemberTier(target); tier != Admin {
		t.Fatalf("expected Admin after promote, got %v", tier)
	}

	// Any admin may demote another admin; no owner authority needed.
	admin := uuid.New()
	addMember(n, admin, "admin", Admin)
	if code := n.ChangeMembership(admin, false, target, OpDemote, resolveAll); code != protocol.ResponseSuccess {
		t.Fatalf("admin demote: %v", code)
	}
	if tier, _ := n.MemberTier(target); tier != User {
		t.Fatalf("expected User after demote, got %v", tier)
	}
}

func TestRevokeRemovesMember(t *testing.T) {
	n, owner := networkWithOwner(t, SecurityOpen, "")
	target := uuid.New()
	addMember(n, target, "target", User)

	if code := n.ChangeMembership(owner, false, target, OpRevoke, resolveAll); code != protocol.ResponseSuccess {
		t.Fatalf("revoke: %v", code)
	}
	if _, ok := n.MemberTier(target); ok {
		t.Fatalf("target still a member after revoke")
	}
	if code := n.ChangeMembership(owner, false, target, OpRevoke, resolveAll); code != protocol.ResponseInvalidUser {
		t.Fatalf("second revoke: expected invalid_user, got %v", code)
	}
}

func TestTransferOwnershipToMember(t *testing.T) {
	n, owner := networkWithOwner(t, SecurityOpen, "")
	target := uuid.New()
	addMember(n, target, "target", User)

	if code := n.ChangeMembership(owner, false, target, OpTransferOwnership, resolveAll); code != protocol.ResponseSuccess {
		t.Fatalf("transfer: %v", code)
	}
	if n.Owner() != target {
		t.Fatalf("owner identity not updated")
	}
	if tier, _ := n.MemberTier(target); tier != Owner {
		t.Fatalf("target tier: %v", tier)
	}
	if tier, _ := n.MemberTier(owner); tier != User {
		t.Fatalf("previous owner tier: %v", tier)
	}
	if got := ownerCount(n); got != 1 {
		t.Fatalf("expected exactly one Owner, got %d", got)
	}
}

func TestTransferOwnershipToOutsider(t *testing.T) {
	n, owner := networkWithOwner(t, SecurityOpen, "")
	target := uuid.New()

	if code := n.ChangeMembership(owner, false, target, OpTransferOwnership, resolveAll); code != protocol.ResponseSuccess {
		t.Fatalf("transfer: %v", code)
	}
	if n.Owner() != target {
		t.Fatalf("owner identity not updated")
	}
	if got := ownerCount(n); got != 1 {
		t.Fatalf("expected exactly one Owner, got %d", got)
	}
}

func TestTransferOwnershipUnresolvableNoPartialMutation(t *testing.T) {
	n, owner := networkWithOwner(t, SecurityOpen, "")
	before := n.Members()

	if code := n.ChangeMembership(owner, false, uuid.New(), OpTransferOwnership, resolveNone); code != protocol.ResponseInvalidTarget {
		t.Fatalf("expected invalid_target, got %v", code)
	}
	if n.Owner() != owner {
		t.Fatalf("owner identity changed on failed transfer")
	}
	got := n.Members()
	if len(got) != len(before) {
		t.Fatalf("member list changed on failed transfer")
	}
	for i := range before {
		if got[i] != before[i] {
			t.Fatalf("member entry %d changed on failed transfer", i)
		}
	}
}

func TestTransferOwnershipRequiresDeleteAuthority(t *testing.T) {
	n, _ := networkWithOwner(t, SecurityOpen, "")
	admin := uuid.New()
	addMember(n, admin, "admin", Admin)

	if code := n.ChangeMembership(admin, false, uuid.New(), OpTransferOwnership, resolveAll); code != protocol.ResponseNoOwner {
		t.Fatalf("expected no_owner, got %v", code)
	}
}

func TestSuperAdminOverride(t *testing.T) {
	n, _ := networkWithOwner(t, SecurityEncrypted, "hunter2")
	requester := uuid.New()
	target := uuid.New()
	addMember(n, target, "target", User)

	if code := n.ChangeMembership(requester, true, target, OpPromote, resolveAll); code != protocol.ResponseSuccess {
		t.Fatalf("super-admin promote: %v", code)
	}
	if tier, _ := n.MemberTier(target); tier != Admin {
		t.Fatalf("expected Admin, got %v", tier)
	}
}

func TestOwnerInvariantAcrossTransitions(t *testing.T) {
	n, owner := networkWithOwner(t, SecurityOpen, "")
	a := uuid.New()
	b := uuid.New()
	addMember(n, a, "a", User)
	addMember(n, b, "b", User)

	steps := []struct {
		target uuid.UUID
		op     MemberOp
	}{
		{a, OpPromote},
		{a, OpTransferOwnership},
		{b, OpAddMember},
		{b, OpDemote},
	}
	requester := owner
	for i, step := range steps {
		code := n.ChangeMembership(requester, true, step.target, step.op, resolveAll)
		if code != protocol.ResponseSuccess {
			t.Fatalf("step %d (%v): %v", i, step.op, code)
		}
		if got := ownerCount(n); got > 1 {
			t.Fatalf("step %d (%v): %d Owner-tier members", i, step.op, got)
		}
	}
}
