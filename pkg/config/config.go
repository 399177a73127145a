// Package config loads lumen configuration from TOML, YAML, or JSON files.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all tunable parameters of the analytics engine. Defaults
// match the documented analyzer behavior; a config file can override any
// subset.
type Config struct {
	Trend    TrendConfig    `koanf:"trend"`
	Heatmap  HeatmapConfig  `koanf:"heatmap"`
	Weakness WeaknessConfig `koanf:"weakness"`
	Predict  PredictConfig  `koanf:"predict"`
	Batch    BatchConfig    `koanf:"batch"`
	Output   OutputConfig   `koanf:"output"`
}

// TrendConfig sets the slope thresholds (score units per day) used for
// trend classification.
type TrendConfig struct {
	StableBand    float64 `koanf:"stable_band"`
	FastThreshold float64 `koanf:"fast_threshold"`
}

// HeatmapConfig tunes heatmap cell classification.
type HeatmapConfig struct {
	TrendDelta float64 `koanf:"trend_delta"` // accuracy points between halves
}

// WeaknessConfig tunes weakness ranking.
type WeaknessConfig struct {
	TopPatterns   int     `koanf:"top_patterns"`
	ActivityDelta float64 `koanf:"activity_delta"`
}

// PredictConfig tunes score forecasting.
type PredictConfig struct {
	MinDays    int `koanf:"min_days"`
	WindowDays int `koanf:"window_days"`
}

// BatchConfig bounds batch processing.
type BatchConfig struct {
	ChunkSize  int `koanf:"chunk_size"`
	MaxWorkers int `koanf:"max_workers"` // <= 0 means NumCPU
}

// OutputConfig controls CLI output formatting.
type OutputConfig struct {
	Format string `koanf:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color"`
}

// DefaultConfig returns a config with the engine's documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Trend: TrendConfig{
			StableBand:    0.1,
			FastThreshold: 0.5,
		},
		Heatmap: HeatmapConfig{
			TrendDelta: 5,
		},
		Weakness: WeaknessConfig{
			TopPatterns:   3,
			ActivityDelta: 0.2,
		},
		Predict: PredictConfig{
			MinDays:    7,
			WindowDays: 30,
		},
		Batch: BatchConfig{
			ChunkSize:  1000,
			MaxWorkers: 0,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file, layered over defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries standard config locations, falling back to defaults.
func LoadOrDefault() *Config {
	names := []string{
		"lumen.toml",
		"lumen.yaml",
		"lumen.yml",
		"lumen.json",
		".lumen.toml",
		".lumen.yaml",
		".lumen.yml",
		".lumen.json",
	}

	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			if cfg, err := Load(name); err == nil {
				return cfg
			}
		}
	}

	return DefaultConfig()
}
