package fluxnet

import (
	"sort"

	"github.com/google/uuid"
)

// invalid is the shared sentinel for unknown ids. Id 0 is never allocated,
// so Valid() is false and every access resolves to Guest.
var invalid = &Network{}

// Invalid returns the sentinel network.
func Invalid() *Network {
	return invalid
}

// Registry holds all live networks and assigns ids. Not synchronized; owned
// by the authoritative executor.
type Registry struct {
	capacity int
	nextID   int32
	byID     map[int32]*Network
}

// NewRegistry creates a registry bounded to capacity networks. A capacity of
// zero or less means unbounded.
func NewRegistry(capacity int) *Registry {
	return &Registry{
		capacity: capacity,
		nextID:   1,
		byID:     make(map[int32]*Network),
	}
}

// Get returns the network for id, or the invalid sentinel when the id is
// unknown or non-positive. Never nil.
func (r *Registry) Get(id int32) *Network {
	if id <= 0 {
		return invalid
	}
	if n, ok := r.byID[id]; ok {
		return n
	}
	return invalid
}

// Create allocates a network with the creator as sole Owner-tier member.
// Returns the invalid sentinel when the registry is full.
func (r *Registry) Create(creator uuid.UUID, creatorName, name string, color int32, security Security, password string) (*Network, error) {
	if r.capacity > 0 && len(r.byID) >= r.capacity {
		return invalid, nil
	}
	n := &Network{
		id:       r.nextID,
		name:     name,
		color:    color,
		security: security,
		ownerID:  creator,
		members: []Member{
			{ID: creator, Name: creatorName, Tier: Owner},
		},
	}
	if security == SecurityEncrypted {
		if err := n.SetPassword(password); err != nil {
			return invalid, err
		}
	}
	r.nextID++
	r.byID[n.id] = n
	return n, nil
}

// Delete removes the network and detaches its devices. Reports whether the
// id was live.
func (r *Registry) Delete(id int32) bool {
	n, ok := r.byID[id]
	if !ok {
		return false
	}
	for _, d := range n.Devices() {
		d.Disconnect()
	}
	n.devices = nil
	delete(r.byID, id)
	return true
}

// All returns every live network ordered by id.
func (r *Registry) All() []*Network {
	out := make([]*Network, 0, len(r.byID))
	for _, n := range r.byID {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Count reports the number of live networks.
func (r *Registry) Count() int {
	return len(r.byID)
}
