// Package config loads the environment toggles named in spec §6: epoch
// boundary heights, per-epoch lifetime multipliers and grace periods, the
// working directory, and the announcer allow-list.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EpochRule is one row of the epoch/pricing table (spec §6).
type EpochRule struct {
	EndBlock               uint64 `yaml:"end_block"`
	NamespaceLifetimeMult  uint64 `yaml:"namespace_lifetime_multiplier"`
	NamespaceLifetimeGrace uint64 `yaml:"namespace_lifetime_grace_period"`
}

// Config is the engine's environment toggle set.
type Config struct {
	WorkingDir string      `yaml:"working_dir"`
	Announcers []string    `yaml:"announcers"`
	Epochs     []EpochRule `yaml:"epochs"`
	LogLevel   string      `yaml:"log_level"`
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

func DefaultWorkingDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".nameengine"
	}
	return filepath.Join(home, ".nameengine")
}

// DefaultConfig mirrors the reference "tests" chain profile: a single
// always-active epoch with lifetime multiplier 1 and a short grace period.
func DefaultConfig() Config {
	return Config{
		WorkingDir: DefaultWorkingDir(),
		Announcers: nil,
		LogLevel:   "info",
		Epochs: []EpochRule{
			{EndBlock: ^uint64(0), NamespaceLifetimeMult: 1, NamespaceLifetimeGrace: 5_000},
		},
	}
}

// Load reads YAML config from path (if non-empty) and layers .env overrides
// for ANNOUNCERS / WORKING_DIR / LOG_LEVEL on top, the way a deployment's
// dev harness layers a checked-in YAML baseline with local/CI overrides.
func Load(path string, envPath string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path) // #nosec G304 -- path is an operator-supplied config flag, not user input.
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	if envPath != "" {
		vars, err := godotenv.Read(envPath)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read env file: %w", err)
		}
		applyEnvOverrides(&cfg, vars)
	}

	return cfg, ValidateConfig(cfg)
}

func applyEnvOverrides(cfg *Config, vars map[string]string) {
	if v, ok := vars["WORKING_DIR"]; ok && strings.TrimSpace(v) != "" {
		cfg.WorkingDir = v
	}
	if v, ok := vars["LOG_LEVEL"]; ok && strings.TrimSpace(v) != "" {
		cfg.LogLevel = v
	}
	if v, ok := vars["ANNOUNCERS"]; ok {
		cfg.Announcers = NormalizeAnnouncers(strings.Split(v, ","))
	}
}

// NormalizeAnnouncers dedupes and trims a comma-split announcer address
// list, preserving first-seen order (mirrors the teacher's NormalizePeers).
func NormalizeAnnouncers(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, token := range raw {
		p := strings.TrimSpace(token)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.WorkingDir) == "" {
		return errors.New("working_dir is required")
	}
	logLevel := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, ok := allowedLogLevels[logLevel]; !ok {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	if len(cfg.Epochs) == 0 {
		return errors.New("at least one epoch rule is required")
	}
	for i, e := range cfg.Epochs {
		if e.NamespaceLifetimeMult == 0 {
			return fmt.Errorf("epoch[%d]: namespace_lifetime_multiplier must be > 0", i)
		}
	}
	return nil
}

// EpochFor returns the rule governing height h: the first rule (in
// ascending end_block order) whose end_block is >= h.
func (c Config) EpochFor(h uint64) (EpochRule, error) {
	sorted := append([]EpochRule(nil), c.Epochs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].EndBlock < sorted[j].EndBlock })
	for _, e := range sorted {
		if h <= e.EndBlock {
			return e, nil
		}
	}
	return EpochRule{}, fmt.Errorf("no epoch rule covers height %d", h)
}
