package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics はハーネス全体のトラフィックと検証のメトリクスを収集する
// 全ワーカーで共有され、すべての操作は並行安全
type Metrics struct {
	totalRequests  atomic.Uint64
	acks           atomic.Uint64
	snapshots      atomic.Uint64
	checksVerified atomic.Uint64
	skippedUnacked atomic.Uint64
	decodeErrors   atomic.Uint64
	mismatches     atomic.Uint64
	totalLatencyNs atomic.Uint64

	mu                sync.RWMutex
	startTime         time.Time
	latencies         []time.Duration
	maxLatencySamples int
}

// New は新しいメトリクスを作成する
func New() *Metrics {
	return &Metrics{
		startTime:         time.Now(),
		latencies:         make([]time.Duration, 0, 1000),
		maxLatencySamples: 1000,
	}
}

// RecordRoundTrip は1往復（送信から応答まで）を記録する
func (m *Metrics) RecordRoundTrip(latency time.Duration) {
	m.totalRequests.Add(1)
	m.totalLatencyNs.Add(uint64(latency.Nanoseconds()))

	m.mu.Lock()
	if len(m.latencies) < m.maxLatencySamples {
		m.latencies = append(m.latencies, latency)
	}
	m.mu.Unlock()
}

// RecordAck はテキストackの受信を記録する
func (m *Metrics) RecordAck() {
	m.acks.Add(1)
}

// RecordSnapshot は検証を通過したスナップショットを記録する
// verifiedは突き合わせたチェック数、skippedはack未着で読み飛ばした数
func (m *Metrics) RecordSnapshot(verified, skipped int) {
	m.snapshots.Add(1)
	m.checksVerified.Add(uint64(verified))
	m.skippedUnacked.Add(uint64(skipped))
}

// RecordDecodeError はデコード失敗を記録する
func (m *Metrics) RecordDecodeError() {
	m.decodeErrors.Add(1)
}

// RecordMismatch は整合性違反の検出を記録する
func (m *Metrics) RecordMismatch() {
	m.mismatches.Add(1)
}

// TotalRequests は総リクエスト数を返す
func (m *Metrics) TotalRequests() uint64 {
	return m.totalRequests.Load()
}

// Acks は受信したackの総数を返す
func (m *Metrics) Acks() uint64 {
	return m.acks.Load()
}

// Snapshots は検証を通過したスナップショット数を返す
func (m *Metrics) Snapshots() uint64 {
	return m.snapshots.Load()
}

// ChecksVerified は突き合わせたチェックの総数を返す
func (m *Metrics) ChecksVerified() uint64 {
	return m.checksVerified.Load()
}

// SkippedUnacked はack未着で読み飛ばしたチェック数を返す
func (m *Metrics) SkippedUnacked() uint64 {
	return m.skippedUnacked.Load()
}

// DecodeErrors はデコード失敗数を返す
func (m *Metrics) DecodeErrors() uint64 {
	return m.decodeErrors.Load()
}

// Mismatches は検出した整合性違反の数を返す
func (m *Metrics) Mismatches() uint64 {
	return m.mismatches.Load()
}

// OverallRPS は開始からの平均RPSを返す
func (m *Metrics) OverallRPS() float64 {
	elapsed := time.Since(m.startTime).Seconds()
	if elapsed == 0 {
		return 0
	}
	return float64(m.totalRequests.Load()) / elapsed
}

// AverageLatency は平均往復レイテンシを返す
func (m *Metrics) AverageLatency() time.Duration {
	total := m.totalRequests.Load()
	if total == 0 {
		return 0
	}
	avgNs := m.totalLatencyNs.Load() / total
	return time.Duration(avgNs)
}

// P99Latency はP99往復レイテンシを返す（サンプルベース）
func (m *Metrics) P99Latency() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.latencies) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	idx := int(float64(len(sorted)) * 0.99)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Snapshot はメトリクスのスナップショット
type Snapshot struct {
	TotalRequests  uint64
	Acks           uint64
	Snapshots      uint64
	ChecksVerified uint64
	SkippedUnacked uint64
	DecodeErrors   uint64
	Mismatches     uint64
	OverallRPS     float64
	AverageLatency time.Duration
	P99Latency     time.Duration
	Elapsed        time.Duration
}

// Snapshot は現在のメトリクスのスナップショットを返す
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		TotalRequests:  m.TotalRequests(),
		Acks:           m.Acks(),
		Snapshots:      m.Snapshots(),
		ChecksVerified: m.ChecksVerified(),
		SkippedUnacked: m.SkippedUnacked(),
		DecodeErrors:   m.DecodeErrors(),
		Mismatches:     m.Mismatches(),
		OverallRPS:     m.OverallRPS(),
		AverageLatency: m.AverageLatency(),
		P99Latency:     m.P99Latency(),
		Elapsed:        time.Since(m.startTime),
	}
}
