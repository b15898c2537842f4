package worker

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"tilebench/internal/check"
	"tilebench/internal/events"
	"tilebench/internal/grid"
	"tilebench/internal/logger"
	"tilebench/internal/metrics"
	"tilebench/internal/snapshot"
	"tilebench/internal/transport"
	"tilebench/internal/workload"
)

// State はワーカーの状態を表す
type State int

const (
	StateConnecting      State = iota // ハンドシェイク中
	StateRunning                      // 送受信ループ実行中
	StateClosedNormal                 // 実行時間満了による正常終了
	StateClosedMismatch               // 整合性違反を検出して終了
	StateClosedTransport              // 接続エラーで終了
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateRunning:
		return "running"
	case StateClosedNormal:
		return "closed_normal"
	case StateClosedMismatch:
		return "closed_mismatch"
	case StateClosedTransport:
		return "closed_transport"
	default:
		return "unknown"
	}
}

// Config はワーカーの設定
type Config struct {
	URL            string        // サーバーのWebSocket URL
	Duration       time.Duration // 実行時間（ループ先頭で判定するソフトな上限）
	SleepTime      time.Duration // リクエスト間のウェイト
	MaxMessageSize int64         // 1メッセージの最大サイズ
	GridWidth      int           // グリッド幅（スナップショットのデフォルト幅）
}

// Worker は1本の接続を実行時間いっぱい専有する疑似クライアント
// pendingは自分専用で、他のワーカーと共有しない
type Worker struct {
	id      int
	tag     string
	config  Config
	pool    *workload.Pool
	metrics *metrics.Metrics
	bus     *events.Bus
	rng     *rand.Rand

	mu      sync.RWMutex
	state   State
	pending []check.Pending
}

// New は新しいワーカーを作成する
func New(id int, config Config, pool *workload.Pool, m *metrics.Metrics) *Worker {
	if config.GridWidth <= 0 {
		config.GridWidth = grid.TileX
	}
	return &Worker{
		id:      id,
		tag:     fmt.Sprintf("worker-%d", id),
		config:  config,
		pool:    pool,
		metrics: m,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano() + int64(id))),
		state:   StateConnecting,
	}
}

// SetEventBus はイベントバスを設定する
func (w *Worker) SetEventBus(bus *events.Bus) {
	w.bus = bus
}

// ID はワーカーIDを返す
func (w *Worker) ID() int {
	return w.id
}

// State はワーカーの現在の状態を返す
func (w *Worker) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

func (w *Worker) setState(state State) {
	w.mu.Lock()
	w.state = state
	w.mu.Unlock()
}

// Run は接続を開いて送受信ループを実行する
// 正常終了でnil、整合性違反で*check.MismatchError、接続エラーでそのエラーを返す
// どの経路でも接続は必ず閉じる
func (w *Worker) Run(ctx context.Context) error {
	conn, err := transport.Dial(ctx, w.config.URL, w.config.MaxMessageSize)
	if err != nil {
		w.setState(StateClosedTransport)
		w.closeEvent()
		return fmt.Errorf("handshake failed: %w", err)
	}
	defer func() {
		// close failures during shutdown are logged, never fatal
		if cerr := conn.Close(); cerr != nil {
			logger.Debug(w.tag, "Close failed: %v", cerr)
		}
	}()

	w.setState(StateRunning)
	if w.bus != nil {
		w.bus.Publish(events.NewWorkerConnectedEvent(w.id))
	}
	logger.Debug(w.tag, "Connected to %s", w.config.URL)

	start := time.Now()
	for {
		// Soft deadline: the in-flight request below always completes.
		if time.Since(start) >= w.config.Duration {
			w.setState(StateClosedNormal)
			w.closeEvent()
			return nil
		}
		select {
		case <-ctx.Done():
			w.setState(StateClosedNormal)
			w.closeEvent()
			return nil
		default:
		}

		if err := w.step(conn); err != nil {
			w.closeEvent()
			return err
		}

		// Pacing between requests.
		select {
		case <-ctx.Done():
		case <-time.After(w.config.SleepTime):
		}
	}
}

// step は1往復を実行する（送信、受信、応答の分類と処理）
func (w *Worker) step(conn *transport.Conn) error {
	entry := w.pool.Pick(w.rng)

	sendStart := time.Now()
	if err := conn.SendText(entry.Payload); err != nil {
		w.setState(StateClosedTransport)
		return err
	}
	w.pending = append(w.pending, check.Pending{Write: entry.Expect})

	msg, err := conn.Recv()
	if err != nil {
		w.setState(StateClosedTransport)
		return err
	}
	w.metrics.RecordRoundTrip(time.Since(sendStart))

	switch msg.Kind {
	case transport.KindText:
		// The ack addresses the most recently sent request.
		w.pending[len(w.pending)-1].Acked = true
		w.metrics.RecordAck()

	case transport.KindBinary:
		return w.verifySnapshot(msg.Data)

	default:
		logger.Warn(w.tag, "Unknown message kind, ignoring %d bytes", len(msg.Data))
	}

	return nil
}

// verifySnapshot はバイナリ応答をデコードしてpendingと突き合わせる
func (w *Worker) verifySnapshot(data []byte) error {
	snap, err := snapshot.Decode(data, w.config.GridWidth)
	if err != nil {
		var decodeErr *snapshot.DecodeError
		if errors.As(err, &decodeErr) {
			// Malformed response from the server: log and keep going.
			logger.Warn(w.tag, "Skipping undecodable snapshot: %v", err)
			w.metrics.RecordDecodeError()
			if w.bus != nil {
				w.bus.Publish(events.NewDecodeErrorEvent(w.id, err))
			}
			return nil
		}
		w.setState(StateClosedTransport)
		return err
	}

	logger.Debug(w.tag, "Received %dx%d snapshot at (%d,%d)", snap.Width, snap.Height, snap.X, snap.Y)

	if err := check.Verify(w.pending, snap); err != nil {
		w.setState(StateClosedMismatch)
		w.metrics.RecordMismatch()

		var mismatch *check.MismatchError
		if errors.As(err, &mismatch) {
			logger.Error(w.tag, "Data mismatch: expected %v at (%d,%d) offset %d, got %v (found at %d)",
				mismatch.Expected, mismatch.X, mismatch.Y, mismatch.Offset, mismatch.Actual, mismatch.FoundAt)
			if w.bus != nil {
				w.bus.Publish(events.NewMismatchDetectedEvent(w.id, mismatch.X, mismatch.Y, mismatch.Offset))
			}
		}
		return err
	}

	// Writes that never got an ack before this snapshot are counted as
	// indeterminate rather than retried or failed.
	skipped := check.CountUnacked(w.pending)
	verified := len(w.pending) - skipped
	w.metrics.RecordSnapshot(verified, skipped)
	if w.bus != nil {
		w.bus.Publish(events.NewSnapshotVerifiedEvent(w.id, verified, skipped))
	}
	if skipped > 0 {
		logger.Debug(w.tag, "Snapshot verified %d checks, %d left unacked", verified, skipped)
	}

	w.pending = w.pending[:0]
	return nil
}

func (w *Worker) closeEvent() {
	if w.bus != nil {
		w.bus.Publish(events.NewWorkerClosedEvent(w.id, w.State().String()))
	}
}
