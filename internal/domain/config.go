package domain

import "time"

// Config is the root of the YAML configuration tree stored at
// ~/.jarvis/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Gateway             GatewaySettings   `yaml:"gateway"`
	Execution           ExecutionSettings `yaml:"execution"`
	Security            SecuritySettings  `yaml:"security"`
	Audit               AuditSettings     `yaml:"audit"`
	Models              []string          `yaml:"models"`
}

// GatewaySettings controls the chat-completion transport.
type GatewaySettings struct {
	Endpoint       string `yaml:"endpoint"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxAttempts    int    `yaml:"max_attempts"`
}

// Timeout returns the per-attempt transport timeout.
func (g GatewaySettings) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// ExecutionSettings controls the sandboxed executor.
type ExecutionSettings struct {
	Shell          string `yaml:"shell"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the wall-clock execution ceiling.
func (e ExecutionSettings) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// SecuritySettings points at the validator ruleset file.
type SecuritySettings struct {
	RulesFile string `yaml:"rules_file"`
}

// AuditSettings controls the rotating audit log.
type AuditSettings struct {
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}
