// Package eventlog provides the stateless helpers behind the playground's
// event log: unique event identifiers, a wall clock seam, and timestamp
// formatting for display.
//
// Production code uses UUIDGenerator and SystemClock. Tests inject
// SequenceGenerator and a fixed clock so logged events and golden traces
// are deterministic.
package eventlog
