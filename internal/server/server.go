package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"tilebench/internal/logger"
	"tilebench/internal/protocol"
	"tilebench/internal/tilemap"
)

// Server は参照タイルサーバー
// /tileエンドポイントでJSONの書き込みを受けて"OK"をackし、
// 一定間隔で全セッションにバイナリスナップショットを配信する
type Server struct {
	addr          string
	tiles         *tilemap.Map
	snapshotEvery time.Duration

	mu       sync.RWMutex
	sessions map[*websocket.Conn]*sync.Mutex

	server *http.Server
}

// New は新しいサーバーを作成する
func New(addr string, width, height int, snapshotEvery time.Duration) *Server {
	return &Server{
		addr:          addr,
		tiles:         tilemap.New(width, height),
		snapshotEvery: snapshotEvery,
		sessions:      make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Tiles はサーバーが保持するタイルマップを返す
func (s *Server) Tiles() *tilemap.Map {
	return s.tiles
}

// Handler はサーバーのHTTPハンドラを返す（テストからも使われる）
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/tile", websocket.Handler(s.handleTile))
	mux.HandleFunc("/status", s.handleStatus)
	return mux
}

// Start はサーバーを起動し、ctxのキャンセルで停止する
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	go s.broadcastLoop(ctx)

	logger.Info("", "Tile server starting on %s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// writeRequest はクライアントが送るJSONペイロード
type writeRequest struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Color uint32 `json:"color"`
}

// handleTile は1セッションの書き込みループ
func (s *Server) handleTile(ws *websocket.Conn) {
	// The send lock orders acks and snapshot pushes on this session: a
	// snapshot built after an ack went out always contains that write.
	sendMu := &sync.Mutex{}

	s.mu.Lock()
	s.sessions[ws] = sendMu
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.sessions, ws)
		s.mu.Unlock()
		_ = ws.Close()
	}()

	for {
		var data string
		if err := websocket.Message.Receive(ws, &data); err != nil {
			return
		}

		var req writeRequest
		if err := json.Unmarshal([]byte(data), &req); err != nil {
			logger.Error("", "Failed to parse write request %q: %v", data, err)
			continue
		}

		if err := s.tiles.Set(req.X, req.Y, req.Color); err != nil {
			logger.Error("", "Rejected write: %v", err)
			continue
		}

		sendMu.Lock()
		err := websocket.Message.Send(ws, "OK")
		sendMu.Unlock()
		if err != nil {
			return
		}
	}
}

// Broadcast は現在のグリッド全体をスナップショットとして全セッションに送る
func (s *Server) Broadcast() {
	s.mu.RLock()
	sessions := make(map[*websocket.Conn]*sync.Mutex, len(s.sessions))
	for ws, mu := range s.sessions {
		sessions[ws] = mu
	}
	s.mu.RUnlock()

	if len(sessions) == 0 {
		return
	}

	logger.Debug("", "Broadcasting snapshot to %d sessions", len(sessions))

	for ws, mu := range sessions {
		// Build under the session lock so the snapshot reflects every
		// write this session has already been acked for. Width 0 on the
		// wire means full grid width.
		mu.Lock()
		buf := protocol.BuildTileMapUpdate(0, 0, 0, s.tiles.Snapshot())
		err := websocket.Message.Send(ws, buf)
		mu.Unlock()
		if err != nil {
			logger.Debug("", "Failed to push snapshot: %v", err)
		}
	}
}

// broadcastLoop は一定間隔でスナップショットを配信する
func (s *Server) broadcastLoop(ctx context.Context) {
	ticker := time.NewTicker(s.snapshotEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Broadcast()
		}
	}
}

// statusResponse は/statusのレスポンス
type statusResponse struct {
	Sessions int    `json:"sessions"`
	Writes   uint64 `json:"writes"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	sessions := len(s.sessions)
	s.mu.RUnlock()

	resp := statusResponse{
		Sessions: sessions,
		Writes:   s.tiles.Writes(),
		Width:    s.tiles.Width(),
		Height:   s.tiles.Height(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("", "Failed to encode JSON: %v", err)
	}
}
