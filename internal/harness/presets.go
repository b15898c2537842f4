package harness

import (
	"time"

	"tilebench/internal/grid"
	"tilebench/internal/transport"
)

// QuickRun はクイックテスト用の設定を返す
// 短時間での動作確認用（デフォルト）
func QuickRun() Config {
	cfg := DefaultConfig()
	cfg.Name = "quick"
	cfg.Description = "Quick verification run"
	return cfg
}

// StressRun は高負荷の設定を返す
// 多数のワーカー、短いウェイト
func StressRun() Config {
	return Config{
		Name:           "stress",
		Description:    "High load stress run",
		ServerURL:      "ws://localhost:8081/tile",
		Duration:       30 * time.Second,
		Workers:        20,
		ConnsPerWorker: 1,
		SleepTime:      10 * time.Millisecond,
		MaxMessageSize: transport.DefaultMaxMessageSize,
		WorkloadSize:   10000,
		GridWidth:      grid.TileX,
		ColorRange:     10000,
		EmbedAddr:      "127.0.0.1:8081",
		SnapshotEvery:  time.Second,
	}
}

// SoakRun は長時間の設定を返す
// 少数のワーカーで持続的に検証する
func SoakRun() Config {
	return Config{
		Name:           "soak",
		Description:    "Long-running soak verification",
		ServerURL:      "ws://localhost:8081/tile",
		Duration:       2 * time.Minute,
		Workers:        5,
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

// SelfTestRun は組み込みサーバーに対する自己検証の設定を返す
// 外部サーバーなしで一連の動作を確認できる
func SelfTestRun() Config {
	return Config{
		Name:           "selftest",
		Description:    "Self-contained run against the embedded reference server",
		Duration:       5 * time.Second,
		Workers:        4,
		ConnsPerWorker: 1,
		SleepTime:      20 * time.Millisecond,
		MaxMessageSize: transport.DefaultMaxMessageSize,
		WorkloadSize:   10000,
		GridWidth:      grid.TileX,
		ColorRange:     10000,
		EmbedServer:    true,
		EmbedAddr:      "127.0.0.1:8081",
		SnapshotEvery:  500 * time.Millisecond,
	}
}

// GetPreset は名前からプリセット設定を取得する
func GetPreset(name string) (Config, bool) {
	presets := map[string]func() Config{
		"quick":    QuickRun,
		"stress":   StressRun,
		"soak":     SoakRun,
		"selftest": SelfTestRun,
	}

	if fn, ok := presets[name]; ok {
		return fn(), true
	}
	return Config{}, false
}

// ListPresets は利用可能なプリセット名を返す
func ListPresets() []string {
	return []string{"quick", "stress", "soak", "selftest"}
}
