package fluxnet

import (
	"testing"

	"github.com/google/uuid"
)

func TestResolveAccessOwnerWins(t *testing.T) {
	reg := NewRegistry(0)
	owner := uuid.New()
	n, err := reg.Create(owner, "owner", "alpha", 0x36AEFF, SecurityOpen, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if tier := ResolveAccess(owner, n, ""); tier != Owner {
		t.Fatalf("expected Owner, got %v", tier)
	}
}

func TestResolveAccessMemberTier(t *testing.T) {
	n, owner := networkWithOwner(t, SecurityEncrypted, "hunter2")
	_ = owner
	admin := uuid.New()
	addMember(n, admin, "admin", Admin)

	if tier := ResolveAccess(admin, n, ""); tier != Admin {
		t.Fatalf("expected Admin, got %v", tier)
	}
}

func TestResolveAccessImplicitUser(t *testing.T) {
	stranger := uuid.New()

	open, _ := networkWithOwner(t, SecurityOpen, "")
	if tier := ResolveAccess(stranger, open, ""); tier != User {
		t.Fatalf("open network: expected User, got %v", tier)
	}

	locked, _ := networkWithOwner(t, SecurityEncrypted, "hunter2")
	if tier := ResolveAccess(stranger, locked, ""); tier != Guest {
		t.Fatalf("no password: expected Guest, got %v", tier)
	}
	if tier := ResolveAccess(stranger, locked, "wrong"); tier != Guest {
		t.Fatalf("wrong password: expected Guest, got %v", tier)
	}
	if tier := ResolveAccess(stranger, locked, "hunter2"); tier != User {
		t.Fatalf("matching password: expected User, got %v", tier)
	}
}

func TestResolveAccessDeterministic(t *testing.T) {
	n, _ := networkWithOwner(t, SecurityEncrypted, "hunter2")
	stranger := uuid.New()

	first := ResolveAccess(stranger, n, "hunter2")
	for i := 0; i < 5; i++ {
		if got := ResolveAccess(stranger, n, "hunter2"); got != first {
			t.Fatalf("call %d diverged: %v vs %v", i, got, first)
		}
	}
}

func TestResolveAccessInvalidSentinel(t *testing.T) {
	if tier := ResolveAccess(uuid.New(), Invalid(), ""); tier != Guest {
		t.Fatalf("expected Guest on invalid network, got %v", tier)
	}
}

func TestTierOrdering(t *testing.T) {
	if Guest.CanEdit() || User.CanEdit() {
		t.Fatalf("guest/user must not edit")
	}
	if !Admin.CanEdit() || !Owner.CanEdit() {
		t.Fatalf("admin/owner must edit")
	}
	if Admin.CanDelete() {
		t.Fatalf("admin must not delete")
	}
	if !Owner.CanDelete() {
		t.Fatalf("owner must delete")
	}
}

// helpers

func networkWithOwner(t *testing.T, security Security, password string) (*Network, uuid.UUID) {
	t.Helper()
	reg := NewRegistry(0)
	owner := uuid.New()
	n, err := reg.Create(owner, "owner", "alpha", 0x36AEFF, security, password)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !n.Valid() {
		t.Fatalf("create returned invalid network")
	}
	return n, owner
}

func addMember(n *Network, id uuid.UUID, name string, tier Tier) {
	n.members = append(n.members, Member{ID: id, Name: name, Tier: tier})
}

func ownerCount(n *Network) int {
	count := 0
	for _, m := range n.Members() {
		if m.Tier == Owner {
			count++
		}
	}
	return count
}
