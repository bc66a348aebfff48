// Package protocol owns the wire contract and parsing primitives.
//
// Ownership boundary:
// - byte cursor primitives (varint, bounded strings, uuids, positions, blobs)
// - message index catalogues for both directions
// - response codes, request keys and payload kinds
//
// The message index is the sole dispatch key. Indices are assigned
// sequentially and independently per direction and must never be renumbered
// without a protocol version bump.
package protocol
