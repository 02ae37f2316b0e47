package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Stores StoresConfig `yaml:"stores"`
	Jobs   JobsConfig   `yaml:"jobs"`
}

// EngineConfig holds the scoring knobs. Every calculator receives the
// values it needs at construction time; nothing reads the process
// environment at scoring time.
type EngineConfig struct {
	MinAccountAgeDays  int     `yaml:"min_account_age_days"`
	BotRiskThreshold   float64 `yaml:"bot_risk_threshold"`
	TopN               int     `yaml:"top_n"`
	TopPct             float64 `yaml:"top_pct"`
	FallbackWindowDays int     `yaml:"fallback_window_days"`
	FallbackMinScore   float64 `yaml:"fallback_min_score"`
	FallbackPercentile float64 `yaml:"fallback_percentile"`
	PageRankDamping    float64 `yaml:"pagerank_damping"`
	PageRankIterations int     `yaml:"pagerank_iterations"`
}

type StoresConfig struct {
	PostgresURL        string `yaml:"postgres_url"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMin int    `yaml:"conn_max_lifetime_minutes"`
	// SnapshotTable names the DynamoDB snapshot table. When empty the
	// snapshot cache lives in Postgres next to the platform tables.
	SnapshotTable string `yaml:"snapshot_table"`
}

type JobsConfig struct {
	SmartRankFunction string `yaml:"smartrank_function"`
	SnapshotFunction  string `yaml:"snapshot_function"`
}

// LoadConfig loads configuration from a yaml file. An empty path falls
// back to the default search locations.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = GetConfigPath()
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file %s not found", path)
	}

	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks that every knob sits inside its defined range.
func (c *Config) Validate() error {
	e := c.Engine
	if e.BotRiskThreshold < 0 || e.BotRiskThreshold > 1 {
		return fmt.Errorf("bot_risk_threshold must be in [0,1], got %v", e.BotRiskThreshold)
	}
	if e.MinAccountAgeDays <= 0 {
		return fmt.Errorf("min_account_age_days must be positive, got %d", e.MinAccountAgeDays)
	}
	if e.TopN <= 0 && e.TopPct <= 0 {
		return fmt.Errorf("at least one of top_n and top_pct must be positive")
	}
	if e.TopPct < 0 || e.TopPct > 100 {
		return fmt.Errorf("top_pct must be in [0,100], got %v", e.TopPct)
	}
	if e.FallbackWindowDays <= 0 {
		return fmt.Errorf("fallback_window_days must be positive, got %d", e.FallbackWindowDays)
	}
	if e.FallbackPercentile <= 0 || e.FallbackPercentile >= 100 {
		return fmt.Errorf("fallback_percentile must be in (0,100), got %v", e.FallbackPercentile)
	}
	if e.PageRankDamping <= 0 || e.PageRankDamping >= 1 {
		return fmt.Errorf("pagerank_damping must be in (0,1), got %v", e.PageRankDamping)
	}
	if e.PageRankIterations <= 0 {
		return fmt.Errorf("pagerank_iterations must be positive, got %d", e.PageRankIterations)
	}
	return nil
}

// applyDefaults fills in zero-valued optional fields.
func (c *Config) applyDefaults() {
	if c.Engine.MinAccountAgeDays == 0 {
		c.Engine.MinAccountAgeDays = 90
	}
	if c.Engine.BotRiskThreshold == 0 {
		c.Engine.BotRiskThreshold = 0.6
	}
	if c.Engine.TopN == 0 && c.Engine.TopPct == 0 {
		c.Engine.TopN = 500
		c.Engine.TopPct = 2.0
	}
	if c.Engine.FallbackWindowDays == 0 {
		c.Engine.FallbackWindowDays = 30
	}
	if c.Engine.FallbackMinScore == 0 {
		c.Engine.FallbackMinScore = 100
	}
	if c.Engine.FallbackPercentile == 0 {
		c.Engine.FallbackPercentile = 80
	}
	if c.Engine.PageRankDamping == 0 {
		c.Engine.PageRankDamping = 0.85
	}
	if c.Engine.PageRankIterations == 0 {
		c.Engine.PageRankIterations = 30
	}
	if c.Stores.MaxOpenConns == 0 {
		c.Stores.MaxOpenConns = 10
	}
	if c.Stores.MaxIdleConns == 0 {
		c.Stores.MaxIdleConns = 5
	}
	if c.Stores.ConnMaxLifetimeMin == 0 {
		c.Stores.ConnMaxLifetimeMin = 5
	}
	if c.Jobs.SmartRankFunction == "" {
		c.Jobs.SmartRankFunction = "creatorstats-smartrank"
	}
	if c.Jobs.SnapshotFunction == "" {
		c.Jobs.SnapshotFunction = "creatorstats-snapshot"
	}
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	// Try current directory first
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}

	// Try executable directory
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		configPath := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	return "config.yaml"
}
