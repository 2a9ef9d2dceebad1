// Package config loads the YAML configuration tree from the state
// directory, writing the embedded defaults on first run.
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/jarvis-go/assets"
	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// FileLoader loads YAML configuration from ~/.jarvis/config.yaml
// (overridable via JARVIS_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader. An empty path resolves the default
// location at load time.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := os.WriteFile(path, assets.DefaultConfigYAML, 0o600); err != nil {
				return domain.Config{}, err
			}
			data = assets.DefaultConfigYAML
		} else {
			return domain.Config{}, err
		}
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}
	cfg = hydrateDefaults(cfg)

	// Seed an editable ruleset on first run; the validator falls back to
	// compiled defaults when the file is absent or partial.
	if _, err := os.Stat(cfg.Security.RulesFile); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(cfg.Security.RulesFile), 0o700); err == nil {
			_ = os.WriteFile(cfg.Security.RulesFile, assets.DefaultRulesetYAML, 0o600)
		}
	}
	return cfg, nil
}

// Path reports where the configuration is read from.
func (l *FileLoader) Path() string {
	return l.resolvePath()
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return expandPath(l.overridePath)
	}
	if custom := os.Getenv("JARVIS_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(StateDir(), "config.yaml")
}

// StateDir returns the directory holding config, credentials, history and
// logs.
func StateDir() string {
	return filepath.Join(userHomeDir(), ".jarvis")
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Gateway.Endpoint == "" {
		cfg.Gateway.Endpoint = "https://openrouter.ai/api/v1/chat/completions"
	}
	if cfg.Gateway.TimeoutSeconds == 0 {
		cfg.Gateway.TimeoutSeconds = 25
	}
	if cfg.Gateway.MaxAttempts == 0 {
		cfg.Gateway.MaxAttempts = 3
	}
	if cfg.Execution.Shell == "" {
		cfg.Execution.Shell = "auto"
	}
	if cfg.Execution.TimeoutSeconds == 0 {
		cfg.Execution.TimeoutSeconds = 90
	}
	if cfg.Security.RulesFile == "" {
		cfg.Security.RulesFile = filepath.Join(StateDir(), "ruleset.yaml")
	} else {
		cfg.Security.RulesFile = expandPath(cfg.Security.RulesFile)
	}
	if cfg.Audit.LogFile == "" {
		cfg.Audit.LogFile = filepath.Join(StateDir(), "audit.log")
	} else {
		cfg.Audit.LogFile = expandPath(cfg.Audit.LogFile)
	}
	if cfg.Audit.MaxSizeMB == 0 {
		cfg.Audit.MaxSizeMB = 10
	}
	if cfg.Audit.MaxBackups == 0 {
		cfg.Audit.MaxBackups = 3
	}
	if len(cfg.Models) == 0 {
		cfg.Models = []string{
			"liquid/lfm-2.5-1.2b-thinking:free",
			"liquid/lfm-2.5-1.2b:free",
			"stepfun-ai/step-3.5-flash:free",
		}
	}
	return cfg
}

// expandPath resolves "~/" against the home directory and bare relative
// paths against the state directory. Consumers of the hydrated config
// treat these paths as final.
func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(userHomeDir(), path[2:])
	}
	return filepath.Join(StateDir(), path)
}

func userHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
