// Package worker implements the per-connection client state machine.
//
// A Worker owns exactly one WebSocket connection for the duration of the
// run. Each loop iteration picks a random pre-generated write, sends it,
// records a pending check, and blocks for one response:
//
//   - a text frame acknowledges the most recently sent write;
//   - a binary frame is decoded as a tile snapshot and every acknowledged
//     pending write is verified against it by byte offset; a mismatch is
//     fatal to the worker, a successful pass clears the pending set;
//   - anything else is logged and ignored.
//
// The configured duration is a soft deadline checked at the top of each
// iteration, so the last in-flight request always completes. Transport
// errors are fatal and never retried: the harness measures the server's
// behavior, so masking connection failures would hide real problems.
//
// State transitions:
//
//	connecting → running → closed_normal
//	                     → closed_mismatch
//	                     → closed_transport
//
// The pending set is private to its worker and needs no locking.
package worker
