// Package config loads runtime configuration for the assistant from a
// YAML file, with safe defaults when no file is present.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config contains runtime configuration for the assistant.
type Config struct {
	Model                     string   `yaml:"model"`
	AnalysisModel             string   `yaml:"analysis_model"`
	MaxTokens                 int64    `yaml:"max_tokens"`
	Temperature               float64  `yaml:"temperature"`
	MemoryPath                string   `yaml:"memory_path"`
	MaxMemoryItems            int      `yaml:"max_memory_items"`
	MaxRelevant               int      `yaml:"max_relevant"`
	MaxHistory                int      `yaml:"max_history"`
	SummarizeAfter            int      `yaml:"summarize_after"`
	LogLevel                  string   `yaml:"log_level"`
	ListenAddr                string   `yaml:"listen_addr"`
	BannedWords               []string `yaml:"banned_words"`
	FilterPhoneNumbers        bool     `yaml:"filter_phone_numbers"`
	FilterAddresses           bool     `yaml:"filter_addresses"`
	TimerCheckIntervalSeconds int      `yaml:"timer_check_interval_seconds"`
}

// Default returns a Config populated with safe defaults.
func Default() Config {
	return Config{
		Model:                     "claude-sonnet-4-20250514",
		AnalysisModel:             "claude-3-5-haiku-latest",
		MaxTokens:                 150,
		Temperature:               0.7,
		MemoryPath:                "memorias",
		MaxMemoryItems:            1000,
		MaxRelevant:               5,
		MaxHistory:                10,
		SummarizeAfter:            5,
		LogLevel:                  "info",
		ListenAddr:                ":8765",
		FilterPhoneNumbers:        true,
		FilterAddresses:           true,
		TimerCheckIntervalSeconds: 1,
	}
}

// Load loads config from disk; if path does not exist, default config
// is returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks configuration sanity.
func (c *Config) Validate() error {
	if c.Model == "" {
		return errors.New("model must not be empty")
	}
	if c.AnalysisModel == "" {
		return errors.New("analysis_model must not be empty")
	}
	if c.MaxTokens <= 0 {
		return errors.New("max_tokens must be > 0")
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return errors.New("temperature must be within [0,1]")
	}
	if c.MemoryPath == "" {
		return errors.New("memory_path must not be empty")
	}
	if c.MaxMemoryItems <= 0 {
		return errors.New("max_memory_items must be > 0")
	}
	if c.MaxRelevant <= 0 {
		return errors.New("max_relevant must be > 0")
	}
	if c.MaxHistory <= 0 {
		return errors.New("max_history must be > 0")
	}
	if c.SummarizeAfter <= 0 {
		return errors.New("summarize_after must be > 0")
	}
	if c.TimerCheckIntervalSeconds <= 0 {
		return errors.New("timer_check_interval_seconds must be > 0")
	}
	return nil
}

// EnsurePaths creates the memory directory tree.
func (c *Config) EnsurePaths() error {
	if err := os.MkdirAll(c.MemoryPath, 0o755); err != nil {
		return fmt.Errorf("create memory dir: %w", err)
	}
	return nil
}

// MemoryFile is the memory snapshot location.
func (c *Config) MemoryFile() string {
	return filepath.Join(c.MemoryPath, "memory.json")
}

// PersonalityFile is the personality snapshot location.
func (c *Config) PersonalityFile() string {
	return filepath.Join(c.MemoryPath, "personality.json")
}

// MetricsFile is the metrics snapshot location.
func (c *Config) MetricsFile() string {
	return filepath.Join(c.MemoryPath, "metrics.json")
}

// NotesFile is the notes store location.
func (c *Config) NotesFile() string {
	return filepath.Join(c.MemoryPath, "notes", "notes.json")
}
