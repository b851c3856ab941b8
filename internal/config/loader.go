package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr           string `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir      string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	MemoryBudgetMB int    `json:"memory_budget_mb" yaml:"memory_budget_mb" toml:"memory_budget_mb"`
	MemoryMarginMB int    `json:"memory_margin_mb" yaml:"memory_margin_mb" toml:"memory_margin_mb"`
	DefaultModel   string `json:"default_model" yaml:"default_model" toml:"default_model"`
	DefaultTask    string `json:"default_task" yaml:"default_task" toml:"default_task"`

	// Pipeline placement. Device is a pointer because 0 names the first
	// accelerator; nil means unset (CPU). Device and DeviceMap are mutually
	// exclusive; the pipeline layer enforces it.
	Device    *int   `json:"device,omitempty" yaml:"device,omitempty" toml:"device,omitempty"`
	DeviceMap string `json:"device_map" yaml:"device_map" toml:"device_map"`

	// Generation and admission knobs.
	BatchSize     int `json:"batch_size" yaml:"batch_size" toml:"batch_size"`
	MaxNewTokens  int `json:"max_new_tokens" yaml:"max_new_tokens" toml:"max_new_tokens"`
	MaxQueueDepth int `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	MaxWaitMS     int `json:"max_wait_ms" yaml:"max_wait_ms" toml:"max_wait_ms"`

	// Runtime selection: "llama" (in-process, default) or "server" (attach
	// to an OpenAI-compatible completion server).
	Runtime      string `json:"runtime" yaml:"runtime" toml:"runtime"`
	ServerURL    string `json:"server_url" yaml:"server_url" toml:"server_url"`
	ServerAPIKey string `json:"server_api_key" yaml:"server_api_key" toml:"server_api_key"`

	// In-process llama knobs.
	ContextSize int `json:"context_size" yaml:"context_size" toml:"context_size"`
	Threads     int `json:"threads" yaml:"threads" toml:"threads"`

	// StatePath persists least-recently-used ordering across restarts.
	StatePath string `json:"state_path" yaml:"state_path" toml:"state_path"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
