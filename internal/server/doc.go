// Package server owns message dispatch and session state.
//
// Ownership boundary:
// - the index-to-handler dispatch table
// - token-gated session validation shared by privileged handlers
// - the single authoritative executor serializing all state mutation
// - notification fan-out (targeted and broadcast)
//
// Decode and shape validation run on the transport goroutine. Everything
// touching registry, network or session-capability state runs on the
// executor.
package server
