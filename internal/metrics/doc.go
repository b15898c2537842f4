// Package metrics provides thread-safe collection of traffic and
// verification statistics for a harness run.
//
// Counters (requests, acks, snapshots, verified checks, decode errors,
// mismatches) use atomic operations. Latency percentiles are computed
// from a bounded sample window.
//
// # Basic Usage
//
//	m := metrics.New()
//	m.RecordRoundTrip(latency)
//	m.RecordAck()
//	m.RecordSnapshot(verified, skipped)
//
//	snap := m.Snapshot()
//	fmt.Printf("RPS: %.2f, P99: %v\n", snap.OverallRPS, snap.P99Latency)
package metrics
