package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestRecordRoundTrip(t *testing.T) {
	m := New()

	m.RecordRoundTrip(10 * time.Millisecond)
	m.RecordRoundTrip(20 * time.Millisecond)

	if got := m.TotalRequests(); got != 2 {
		t.Errorf("expected 2 requests, got %d", got)
	}
	if got := m.AverageLatency(); got != 15*time.Millisecond {
		t.Errorf("expected 15ms average latency, got %v", got)
	}
}

func TestRecordVerification(t *testing.T) {
	m := New()

	m.RecordAck()
	m.RecordAck()
	m.RecordSnapshot(5, 2)
	m.RecordSnapshot(3, 0)
	m.RecordDecodeError()
	m.RecordMismatch()

	if got := m.Acks(); got != 2 {
		t.Errorf("expected 2 acks, got %d", got)
	}
	if got := m.Snapshots(); got != 2 {
		t.Errorf("expected 2 snapshots, got %d", got)
	}
	if got := m.ChecksVerified(); got != 8 {
		t.Errorf("expected 8 verified checks, got %d", got)
	}
	if got := m.SkippedUnacked(); got != 2 {
		t.Errorf("expected 2 skipped checks, got %d", got)
	}
	if got := m.DecodeErrors(); got != 1 {
		t.Errorf("expected 1 decode error, got %d", got)
	}
	if got := m.Mismatches(); got != 1 {
		t.Errorf("expected 1 mismatch, got %d", got)
	}
}

func TestP99Latency(t *testing.T) {
	m := New()

	for i := 1; i <= 100; i++ {
		m.RecordRoundTrip(time.Duration(i) * time.Millisecond)
	}

	p99 := m.P99Latency()
	if p99 < 99*time.Millisecond || p99 > 100*time.Millisecond {
		t.Errorf("expected P99 around 99-100ms, got %v", p99)
	}
}

func TestP99LatencyEmpty(t *testing.T) {
	m := New()
	if got := m.P99Latency(); got != 0 {
		t.Errorf("expected 0 for empty metrics, got %v", got)
	}
}

func TestSnapshot(t *testing.T) {
	m := New()

	m.RecordRoundTrip(5 * time.Millisecond)
	m.RecordAck()
	m.RecordSnapshot(1, 0)

	snap := m.Snapshot()

	if snap.TotalRequests != 1 {
		t.Errorf("expected 1 request, got %d", snap.TotalRequests)
	}
	if snap.Acks != 1 {
		t.Errorf("expected 1 ack, got %d", snap.Acks)
	}
	if snap.ChecksVerified != 1 {
		t.Errorf("expected 1 verified check, got %d", snap.ChecksVerified)
	}
	if snap.Elapsed <= 0 {
		t.Error("expected positive elapsed time")
	}
}

func TestConcurrentRecording(t *testing.T) {
	m := New()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				m.RecordRoundTrip(time.Millisecond)
				m.RecordAck()
			}
		}()
	}
	wg.Wait()

	if got := m.TotalRequests(); got != 1000 {
		t.Errorf("expected 1000 requests, got %d", got)
	}
	if got := m.Acks(); got != 1000 {
		t.Errorf("expected 1000 acks, got %d", got)
	}
}
