// Package fluxnet owns shared network state.
//
// Ownership boundary:
// - network entities (identity, security policy, members, statistics)
// - the access control model
// - the membership state machine
// - the registry with invalid-sentinel lookup
//
// Nothing in this package synchronizes. All mutation happens on the server's
// single authoritative executor; see internal/server.
package fluxnet
