// Package engine implements the playground state engine: the single
// authority over one component playground's live state.
//
// ARCHITECTURE:
//
// Single Writer, Many Readers:
// An Engine owns exactly one State. Consumers (controls, canvas, code
// view, toolbar) read it through Snapshot or Subscribe and change it only
// through the mutation methods. There is no direct field assignment.
//
// Mutation Flow:
// 1. A mutation method computes the next State from the current one
// 2. The new State replaces the old one under a lock
// 3. Subscribers receive a snapshot, in registration order
// 4. If a durable field changed, the persisted subset is queued for
// writing in the background
//
// Mutations are serialized end to end: the next one does not start until
// every subscriber has seen the previous one.
//
// Initialization:
// New layers four sources, later wins: Baseline, the configuration's
// default props, the caller's Partial, and the persisted record. Only
// props, viewport, theme, background and codeView are persisted; panels,
// panel sizes and events always come from the first three layers.
//
// CRITICAL PATTERNS:
//
// Copy-on-write: props mappings and the event slice are never modified
// in place once published, so snapshots stay valid after later mutations.
//
// Bounded history: the event log holds at most MaxEvents entries; logging
// beyond the cap drops the oldest.
//
// Permissive props: prop names and value types are not checked against
// the configuration. Type fidelity is the caller's responsibility.
package engine
