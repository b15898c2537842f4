package harness

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"tilebench/internal/events"
	"tilebench/internal/grid"
	"tilebench/internal/logger"
	"tilebench/internal/metrics"
	"tilebench/internal/server"
	"tilebench/internal/transport"
	"tilebench/internal/worker"
	"tilebench/internal/workload"
)

// Config はハーネス実行の設定
type Config struct {
	Name        string        // 実行名
	Description string        // 説明
	ServerURL   string        // 対象サーバーのWebSocket URL
	Duration    time.Duration // 実行時間（ワーカーごとのソフトな上限）

	// ワーカー設定
	Workers        int           // ワーカー数
	ConnsPerWorker int           // ワーカーあたりの接続数（現状は常に1本のみ使用）
	SleepTime      time.Duration // リクエスト間のウェイト
	MaxMessageSize int64         // 1メッセージの最大サイズ

	// ワークロード設定
	WorkloadSize int    // 事前生成するエントリ数
	GridWidth    int    // グリッド幅
	ColorRange   uint32 // 色の上限値

	// 組み込みサーバー設定（selftest用）
	EmbedServer   bool          // 参照サーバーを同一プロセスで起動する
	EmbedAddr     string        // 組み込みサーバーのアドレス
	SnapshotEvery time.Duration // スナップショット配信間隔
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		Name:           "default",
		Description:    "Default harness run",
		ServerURL:      "ws://localhost:8081/tile",
		Duration:       3 * time.Second,
		Workers:        2,
		ConnsPerWorker: 1,
		SleepTime:      100 * time.Millisecond,
		MaxMessageSize: transport.DefaultMaxMessageSize,
		WorkloadSize:   10000,
		GridWidth:      grid.TileX,
		ColorRange:     10000,
		EmbedAddr:      "127.0.0.1:8081",
		SnapshotEvery:  time.Second,
	}
}

// Result はハーネス実行結果
type Result struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// ワーカーの終了状態
	WorkersTotal    int
	CompletedNormal int
	Mismatches      int
	TransportErrors int
	WorkerStates    map[int]string

	// トラフィックと検証のメトリクス
	TotalRequests  uint64
	Acks           uint64
	Snapshots      uint64
	ChecksVerified uint64
	SkippedUnacked uint64
	DecodeErrors   uint64
	OverallRPS     float64
	AvgLatency     time.Duration
	P99Latency     time.Duration

	// 総合判定：1件でも不一致か接続エラーがあれば失敗
	Failed         bool
	FailureDetails []string
}

// Engine はハーネス実行エンジン
type Engine struct {
	config   Config
	eventBus *events.Bus

	metrics *metrics.Metrics
	pool    *workload.Pool
	workers []*worker.Worker

	srv       *server.Server
	srvCancel context.CancelFunc

	mu      sync.RWMutex
	running bool
}

// New は新しいEngineを作成する
func New(config Config) *Engine {
	return &Engine{
		config:  config,
		metrics: metrics.New(),
	}
}

// SetEventBus はイベントバスを設定する
func (e *Engine) SetEventBus(bus *events.Bus) {
	e.eventBus = bus
}

// IsRunning は実行中かどうかを返す
func (e *Engine) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// Metrics は現在のメトリクスのスナップショットを返す
func (e *Engine) Metrics() metrics.Snapshot {
	return e.metrics.Snapshot()
}

// Run はハーネスを実行する
// ワーカーは互いに独立で、全員の終了を待ってから結果を集計する
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil, fmt.Errorf("harness is already running")
	}
	e.running = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	logger.Info("", "=== Run '%s' started ===", e.config.Name)
	logger.Info("", "Description: %s", e.config.Description)

	result := &Result{
		Name:      e.config.Name,
		StartTime: time.Now(),
	}

	if err := e.setup(ctx); err != nil {
		return nil, fmt.Errorf("setup failed: %w", err)
	}
	defer e.teardown()

	errs := e.runWorkers(ctx)

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	e.collectResults(result, errs)

	logger.Info("", "=== Run '%s' completed ===", e.config.Name)

	return result, nil
}

// setup は実行前の準備（組み込みサーバー起動とワークロード生成）
func (e *Engine) setup(ctx context.Context) error {
	if e.config.EmbedServer {
		e.srv = server.New(e.config.EmbedAddr, e.config.GridWidth, e.config.GridWidth, e.config.SnapshotEvery)

		srvCtx, cancel := context.WithCancel(ctx)
		e.srvCancel = cancel
		go func() {
			if err := e.srv.Start(srvCtx); err != nil {
				logger.Error("", "Embedded server error: %v", err)
			}
		}()

		if err := waitForServer(ctx, "http://"+e.config.EmbedAddr+"/status"); err != nil {
			return err
		}
		e.config.ServerURL = "ws://" + e.config.EmbedAddr + "/tile"
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	e.pool = workload.Generate(e.config.WorkloadSize, e.config.GridWidth, e.config.ColorRange, rng)
	logger.Info("", "Generated %d workload entries (grid %dx%d, colors 0-%d)",
		e.pool.Len(), e.config.GridWidth, e.config.GridWidth, e.config.ColorRange)

	workerConfig := worker.Config{
		URL:            e.config.ServerURL,
		Duration:       e.config.Duration,
		SleepTime:      e.config.SleepTime,
		MaxMessageSize: e.config.MaxMessageSize,
		GridWidth:      e.config.GridWidth,
	}

	e.workers = make([]*worker.Worker, 0, e.config.Workers)
	for i := range e.config.Workers {
		w := worker.New(i, workerConfig, e.pool, e.metrics)
		if e.eventBus != nil {
			w.SetEventBus(e.eventBus)
		}
		e.workers = append(e.workers, w)
	}

	return nil
}

// teardown は実行後のクリーンアップ
func (e *Engine) teardown() {
	if e.srvCancel != nil {
		e.srvCancel()
	}
}

// runWorkers は全ワーカーを並行起動して終了を待つ（join semantics）
// 戻り値はワーカーIDごとの終了エラー（nilは正常終了）
func (e *Engine) runWorkers(ctx context.Context) []error {
	logger.Info("", "Starting %d workers against %s for %v",
		len(e.workers), e.config.ServerURL, e.config.Duration)

	errs := make([]error, len(e.workers))
	var wg sync.WaitGroup
	for i, w := range e.workers {
		wg.Add(1)
		go func(i int, w *worker.Worker) {
			defer wg.Done()
			errs[i] = w.Run(ctx)
		}(i, w)
	}
	wg.Wait()

	return errs
}

// collectResults は終了状態とメトリクスを集計する
func (e *Engine) collectResults(result *Result, errs []error) {
	result.WorkersTotal = len(e.workers)
	result.WorkerStates = make(map[int]string)

	for i, w := range e.workers {
		state := w.State()
		result.WorkerStates[w.ID()] = state.String()

		switch state {
		case worker.StateClosedNormal:
			result.CompletedNormal++
		case worker.StateClosedMismatch:
			result.Mismatches++
		case worker.StateClosedTransport:
			result.TransportErrors++
		}

		if errs[i] != nil {
			result.FailureDetails = append(result.FailureDetails,
				fmt.Sprintf("worker-%d: %v", w.ID(), errs[i]))
		}
	}

	result.Failed = result.Mismatches > 0 || result.TransportErrors > 0

	snap := e.metrics.Snapshot()
	result.TotalRequests = snap.TotalRequests
	result.Acks = snap.Acks
	result.Snapshots = snap.Snapshots
	result.ChecksVerified = snap.ChecksVerified
	result.SkippedUnacked = snap.SkippedUnacked
	result.DecodeErrors = snap.DecodeErrors
	result.OverallRPS = snap.OverallRPS
	result.AvgLatency = snap.AverageLatency
	result.P99Latency = snap.P99Latency
}

// waitForServer は組み込みサーバーの起動を待つ
func waitForServer(ctx context.Context, statusURL string) error {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		resp, err := http.Get(statusURL)
		if err == nil {
			_ = resp.Body.Close()
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("embedded server did not become ready at %s", statusURL)
}

// Report は結果をフォーマットして返す
func (r *Result) Report() string {
	verdict := "PASS"
	if r.Failed {
		verdict = "FAIL"
	}

	report := fmt.Sprintf(`
================================================================================
                         HARNESS REPORT: %s [%s]
================================================================================

EXECUTION SUMMARY
-----------------
  Start Time:     %s
  End Time:       %s
  Duration:       %v

WORKER OUTCOMES
---------------
  Workers:            %d
  Completed Normal:   %d
  Mismatches:         %d
  Transport Errors:   %d

TRAFFIC METRICS
---------------
  Total Requests:   %d
  Acks:             %d
  Overall RPS:      %.2f
  Avg Latency:      %v
  P99 Latency:      %v

VERIFICATION
------------
  Snapshots Verified:  %d
  Checks Verified:     %d
  Skipped (unacked):   %d
  Decode Errors:       %d

WORKER STATES
-------------
`,
		r.Name,
		verdict,
		r.StartTime.Format("2006-01-02 15:04:05"),
		r.EndTime.Format("2006-01-02 15:04:05"),
		r.Duration.Round(time.Millisecond),
		r.WorkersTotal,
		r.CompletedNormal,
		r.Mismatches,
		r.TransportErrors,
		r.TotalRequests,
		r.Acks,
		r.OverallRPS,
		r.AvgLatency.Round(time.Microsecond),
		r.P99Latency.Round(time.Microsecond),
		r.Snapshots,
		r.ChecksVerified,
		r.SkippedUnacked,
		r.DecodeErrors,
	)

	for id, state := range r.WorkerStates {
		report += fmt.Sprintf("  worker-%-13d %s\n", id, state)
	}

	if len(r.FailureDetails) > 0 {
		report += "\nFAILURES\n--------\n"
		for _, detail := range r.FailureDetails {
			report += "  " + detail + "\n"
		}
	}

	report += "\n================================================================================"

	return report
}
