package assets

import (
	_ "embed"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// DefaultRulesetYAML contains the embedded default validation ruleset.
//
//go:embed defaults/ruleset.yaml
var DefaultRulesetYAML []byte
