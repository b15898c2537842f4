package harness

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tilebench/internal/grid"
	"tilebench/internal/server"
	"tilebench/internal/transport"
)

// startTileServer runs the reference handler on an ephemeral port and
// broadcasts snapshots on a short interval.
func startTileServer(t *testing.T) (url string) {
	t.Helper()
	s := server.New(":0", grid.TileX, grid.TileX, time.Hour)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	done := make(chan struct{})
	t.Cleanup(func() { close(done) })
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.Broadcast()
			}
		}
	}()

	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/tile"
}

func testRunConfig(url string) Config {
	return Config{
		Name:           "test",
		Description:    "engine test run",
		ServerURL:      url,
		Duration:       400 * time.Millisecond,
		Workers:        2,
		ConnsPerWorker: 1,
		SleepTime:      5 * time.Millisecond,
		MaxMessageSize: transport.DefaultMaxMessageSize,
		WorkloadSize:   30,
		GridWidth:      grid.TileX,
		ColorRange:     10000,
	}
}

func TestEngineRunSuccess(t *testing.T) {
	url := startTileServer(t)

	engine := New(testRunConfig(url))
	result, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Failed {
		t.Errorf("expected pass, got failure: %v", result.FailureDetails)
	}
	if result.WorkersTotal != 2 {
		t.Errorf("expected 2 workers, got %d", result.WorkersTotal)
	}
	if result.CompletedNormal != 2 {
		t.Errorf("expected 2 normal completions, got %d (states: %v)",
			result.CompletedNormal, result.WorkerStates)
	}
	if result.TotalRequests == 0 {
		t.Error("expected requests to be recorded")
	}

	report := result.Report()
	if !strings.Contains(report, "PASS") {
		t.Errorf("expected PASS in report, got:\n%s", report)
	}
}

func TestEngineRunTransportFailure(t *testing.T) {
	// Nothing listens on this port: every worker fails its handshake.
	cfg := testRunConfig("ws://127.0.0.1:1/tile")
	cfg.Workers = 2

	engine := New(cfg)
	result, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !result.Failed {
		t.Error("expected run to report failure")
	}
	if result.TransportErrors != 2 {
		t.Errorf("expected 2 transport errors, got %d", result.TransportErrors)
	}
	if len(result.FailureDetails) != 2 {
		t.Errorf("expected 2 failure details, got %v", result.FailureDetails)
	}

	if !strings.Contains(result.Report(), "FAIL") {
		t.Error("expected FAIL in report")
	}
}

func TestEngineRejectsConcurrentRuns(t *testing.T) {
	url := startTileServer(t)

	engine := New(testRunConfig(url))

	errCh := make(chan error, 1)
	go func() {
		_, err := engine.Run(context.Background())
		errCh <- err
	}()

	// Wait for the first run to actually start.
	deadline := time.Now().Add(2 * time.Second)
	for !engine.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !engine.IsRunning() {
		t.Fatal("first run never started")
	}

	if _, err := engine.Run(context.Background()); err == nil {
		t.Error("expected error for concurrent run")
	}

	if err := <-errCh; err != nil {
		t.Fatalf("first run failed: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	tests := []struct {
		name   string
		expect bool
	}{
		{"quick", true},
		{"stress", true},
		{"soak", true},
		{"selftest", true},
		{"nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, ok := GetPreset(tt.name)
			if ok != tt.expect {
				t.Errorf("GetPreset(%q) ok = %v, want %v", tt.name, ok, tt.expect)
			}
			if ok && cfg.Name != tt.name {
				t.Errorf("expected config name %q, got %q", tt.name, cfg.Name)
			}
		})
	}

	if len(ListPresets()) != 4 {
		t.Errorf("expected 4 presets, got %v", ListPresets())
	}
}

func TestSelfTestPresetEmbedsServer(t *testing.T) {
	cfg := SelfTestRun()
	if !cfg.EmbedServer {
		t.Error("selftest preset must embed the reference server")
	}
	if cfg.EmbedAddr == "" {
		t.Error("selftest preset must set an embed address")
	}
}
