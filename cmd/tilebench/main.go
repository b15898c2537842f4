// Package main is the entry point for tilebench.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tilebench/internal/config"
	"tilebench/internal/events"
	"tilebench/internal/grid"
	"tilebench/internal/harness"
	"tilebench/internal/logger"
	"tilebench/internal/server"
)

var (
	version = "dev"
)

func main() {
	// フラグ定義
	var (
		configFile  = flag.String("config", "", "設定ファイルパス (YAML/JSON)")
		presetName  = flag.String("preset", "", "プリセット名 (quick, stress, soak, selftest)")
		serverURL   = flag.String("url", "", "対象サーバーのWebSocket URL (例: ws://localhost:8081/tile)")
		duration    = flag.Duration("duration", 0, "実行時間 (例: 10s, 1m)")
		workers     = flag.Int("workers", 0, "ワーカー数")
		sleepTime   = flag.Duration("sleep", 0, "リクエスト間のウェイト (例: 100ms)")
		workload    = flag.Int("workload", 0, "事前生成するワークロードのエントリ数")
		verbose     = flag.Bool("verbose", false, "デバッグログを出力")
		listPresets = flag.Bool("list-presets", false, "利用可能なプリセットを表示")
		showVersion = flag.Bool("version", false, "バージョンを表示")
		serveMode   = flag.Bool("serve", false, "参照タイルサーバーモードで起動")
		serveAddr   = flag.String("addr", ":8081", "サーバーアドレス (例: :8081)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `tilebench - Tile Server Load & Integrity Verification Harness

Usage:
  tilebench [options]

Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # 組み込みサーバーに対する自己検証
  tilebench --preset selftest

  # 外部サーバーに対して実行
  tilebench --url ws://localhost:8081/tile --duration 30s --workers 10

  # 設定ファイルから実行
  tilebench --config run.yaml

  # プリセット一覧を表示
  tilebench --list-presets

  # 参照タイルサーバーとして起動
  tilebench --serve --addr :8081
`)
	}

	flag.Parse()

	if *verbose {
		logger.Default.SetLevel(logger.LevelDebug)
	}

	// バージョン表示
	if *showVersion {
		fmt.Printf("tilebench version %s\n", version)
		return
	}

	// プリセット一覧表示
	if *listPresets {
		printPresets()
		return
	}

	// 参照サーバーモード
	if *serveMode {
		if err := runServer(*serveAddr); err != nil {
			logger.Error("", "サーバーエラー: %v", err)
			os.Exit(1)
		}
		return
	}

	// ハーネス設定の決定
	cfg, err := buildConfig(*configFile, *presetName, *serverURL, *duration, *workers, *sleepTime, *workload)
	if err != nil {
		logger.Error("", "設定エラー: %v", err)
		os.Exit(1)
	}

	// ハーネス実行
	failed, err := runHarness(cfg)
	if err != nil {
		logger.Error("", "実行エラー: %v", err)
		os.Exit(1)
	}
	if failed {
		os.Exit(1)
	}
}

// buildConfig はハーネス設定を構築する
func buildConfig(
	configFile, presetName, serverURL string,
	duration time.Duration, workers int,
	sleepTime time.Duration, workload int,
) (harness.Config, error) {
	var cfg harness.Config

	// 1. 設定ファイルから読み込み
	if configFile != "" {
		fileConfig, err := config.LoadFile(configFile)
		if err != nil {
			return cfg, fmt.Errorf("設定ファイル読み込みエラー: %w", err)
		}
		if err := fileConfig.Validate(); err != nil {
			return cfg, fmt.Errorf("設定検証エラー: %w", err)
		}
		cfg, err = fileConfig.ToHarnessConfig()
		if err != nil {
			return cfg, fmt.Errorf("設定変換エラー: %w", err)
		}
	} else if presetName != "" {
		// 2. プリセットから読み込み
		preset, ok := harness.GetPreset(presetName)
		if !ok {
			return cfg, fmt.Errorf("不明なプリセット: %s (利用可能: %v)", presetName, harness.ListPresets())
		}
		cfg = preset
	} else {
		// 3. デフォルト（quick）
		cfg = harness.QuickRun()
	}

	// フラグでオーバーライド
	if serverURL != "" {
		cfg.ServerURL = serverURL
		cfg.EmbedServer = false
	}
	if duration > 0 {
		cfg.Duration = duration
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if sleepTime > 0 {
		cfg.SleepTime = sleepTime
	}
	if workload > 0 {
		cfg.WorkloadSize = workload
	}

	return cfg, nil
}

// runHarness はハーネスを実行し、検証が失敗したかどうかを返す
func runHarness(cfg harness.Config) (bool, error) {
	fmt.Println("tilebench - Tile Server Load & Integrity Verification Harness")
	fmt.Println("==============================================================")
	fmt.Printf("Run: %s\n", cfg.Name)
	fmt.Printf("Target: %s\n", targetLabel(cfg))
	fmt.Printf("Duration: %v\n", cfg.Duration)
	fmt.Printf("Workers: %d, Sleep: %v, Workload: %d entries\n", cfg.Workers, cfg.SleepTime, cfg.WorkloadSize)
	fmt.Println("==============================================================")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\n中断シグナルを受信、実行を終了中...")
		cancel()
	}()

	engine := harness.New(cfg)

	// 進行中のイベントをログに流す
	bus := events.NewBus()
	defer bus.Close()
	engine.SetEventBus(bus)
	go func() {
		for event := range bus.Subscribe() {
			logger.Debug("", "event %s worker=%d %+v", event.Type, event.WorkerID, event.Data)
		}
	}()

	result, err := engine.Run(ctx)
	if err != nil {
		return true, err
	}

	// レポート出力
	fmt.Println(result.Report())

	return result.Failed, nil
}

func targetLabel(cfg harness.Config) string {
	if cfg.EmbedServer {
		return "embedded server on " + cfg.EmbedAddr
	}
	return cfg.ServerURL
}

// printPresets は利用可能なプリセットを表示する
func printPresets() {
	fmt.Println("利用可能なプリセット:")
	fmt.Println()

	presets := []struct {
		name string
		desc string
	}{
		{"quick", "短時間の動作確認（デフォルト）"},
		{"stress", "高負荷ストレス実行"},
		{"soak", "長時間の持続検証"},
		{"selftest", "組み込みサーバーに対する自己検証"},
	}

	for _, p := range presets {
		fmt.Printf("  %-12s %s\n", p.name, p.desc)
	}

	fmt.Println()
	fmt.Println("使用例: tilebench --preset selftest")
}

// runServer は参照タイルサーバーを起動する
func runServer(addr string) error {
	fmt.Println("tilebench - Reference Tile Server")
	fmt.Println("=================================")
	fmt.Printf("Grid: %dx%d, endpoint: ws://%s/tile\n", grid.TileX, grid.TileX, addr)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\n中断シグナルを受信、サーバーを終了中...")
		cancel()
	}()

	srv := server.New(addr, grid.TileX, grid.TileX, time.Second)
	return srv.Start(ctx)
}
