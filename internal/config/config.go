package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tilebench/internal/harness"
)

// FileConfig は設定ファイルの構造
type FileConfig struct {
	Run RunConfig `yaml:"run" json:"run"`
}

// RunConfig はハーネス実行の設定
type RunConfig struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	ServerURL   string `yaml:"server_url" json:"server_url"`
	Duration    string `yaml:"duration" json:"duration"`

	Workers  WorkersConfig  `yaml:"workers" json:"workers"`
	Workload WorkloadConfig `yaml:"workload" json:"workload"`
	Server   ServerConfig   `yaml:"server" json:"server"`
}

// WorkersConfig はワーカー設定
type WorkersConfig struct {
	Count          int    `yaml:"count" json:"count"`
	Connections    int    `yaml:"connections" json:"connections"`
	SleepTime      string `yaml:"sleep_time" json:"sleep_time"`
	MaxMessageSize int64  `yaml:"max_message_size" json:"max_message_size"`
}

// WorkloadConfig はワークロード設定
type WorkloadConfig struct {
	Size       int    `yaml:"size" json:"size"`
	GridWidth  int    `yaml:"grid_width" json:"grid_width"`
	ColorRange uint32 `yaml:"color_range" json:"color_range"`
}

// ServerConfig は組み込みサーバー設定
type ServerConfig struct {
	Embed         bool   `yaml:"embed" json:"embed"`
	Addr          string `yaml:"addr" json:"addr"`
	SnapshotEvery string `yaml:"snapshot_every" json:"snapshot_every"`
}

// LoadFile は設定ファイルを読み込む
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config FileConfig
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	return &config, nil
}

// ToHarnessConfig はFileConfigをharness.Configに変換する
func (f *FileConfig) ToHarnessConfig() (harness.Config, error) {
	rc := f.Run

	// デフォルト値の設定
	config := harness.DefaultConfig()

	if rc.Name != "" {
		config.Name = rc.Name
	}
	if rc.Description != "" {
		config.Description = rc.Description
	}
	if rc.ServerURL != "" {
		config.ServerURL = rc.ServerURL
	}
	if rc.Duration != "" {
		d, err := time.ParseDuration(rc.Duration)
		if err != nil {
			return config, fmt.Errorf("invalid duration: %w", err)
		}
		config.Duration = d
	}

	// Workers設定
	if rc.Workers.Count > 0 {
		config.Workers = rc.Workers.Count
	}
	if rc.Workers.Connections > 0 {
		config.ConnsPerWorker = rc.Workers.Connections
	}
	if rc.Workers.SleepTime != "" {
		d, err := time.ParseDuration(rc.Workers.SleepTime)
		if err != nil {
			return config, fmt.Errorf("invalid sleep_time: %w", err)
		}
		config.SleepTime = d
	}
	if rc.Workers.MaxMessageSize > 0 {
		config.MaxMessageSize = rc.Workers.MaxMessageSize
	}

	// Workload設定
	if rc.Workload.Size > 0 {
		config.WorkloadSize = rc.Workload.Size
	}
	if rc.Workload.GridWidth > 0 {
		config.GridWidth = rc.Workload.GridWidth
	}
	if rc.Workload.ColorRange > 0 {
		config.ColorRange = rc.Workload.ColorRange
	}

	// Server設定
	config.EmbedServer = rc.Server.Embed
	if rc.Server.Addr != "" {
		config.EmbedAddr = rc.Server.Addr
	}
	if rc.Server.SnapshotEvery != "" {
		d, err := time.ParseDuration(rc.Server.SnapshotEvery)
		if err != nil {
			return config, fmt.Errorf("invalid snapshot_every: %w", err)
		}
		config.SnapshotEvery = d
	}

	return config, nil
}

// Validate は設定を検証する
func (f *FileConfig) Validate() error {
	rc := f.Run

	if rc.Workers.Count < 0 {
		return fmt.Errorf("workers.count must be non-negative")
	}

	if rc.Workers.Connections < 0 {
		return fmt.Errorf("workers.connections must be non-negative")
	}

	if rc.Workers.MaxMessageSize < 0 {
		return fmt.Errorf("workers.max_message_size must be non-negative")
	}

	if rc.Workload.Size < 0 {
		return fmt.Errorf("workload.size must be non-negative")
	}

	if rc.Workload.GridWidth < 0 {
		return fmt.Errorf("workload.grid_width must be non-negative")
	}

	if rc.Server.Embed && rc.ServerURL != "" {
		return fmt.Errorf("server_url and server.embed are mutually exclusive")
	}

	return nil
}
