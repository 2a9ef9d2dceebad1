// Package security implements the deterministic command safety gate.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/pkg/textutil"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// Validator checks a single generated command against ordered local rules:
// normalization, block tokens, encoded-pattern regexes, the utility
// blacklist, and finally privilege classification for allowed commands.
// It is pure over the input string and performs no I/O after construction.
type Validator struct {
	tokens    []string
	patterns  []*regexp.Regexp
	blacklist []string
	highPriv  []string
	paths     []string
}

// RulesetFile is the YAML schema for ~/.jarvis/ruleset.yaml. Any empty
// section falls back to the compiled defaults.
type RulesetFile struct {
	Rules struct {
		BlockTokens           []string `yaml:"block_tokens"`
		BlockPatterns         []string `yaml:"block_patterns"`
		BlacklistKeywords     []string `yaml:"blacklist_keywords"`
		HighPrivilegeCommands []string `yaml:"high_privilege_commands"`
		SensitivePaths        []string `yaml:"sensitive_paths"`
	} `yaml:"rules"`
}

// NewValidator loads the ruleset from disk (or defaults when missing) and
// compiles the pattern rules.
func NewValidator(path string) (*Validator, error) {
	ruleset, err := loadRuleset(path)
	if err != nil {
		return nil, err
	}

	patterns := make([]*regexp.Regexp, 0, len(ruleset.Rules.BlockPatterns))
	for _, raw := range ruleset.Rules.BlockPatterns {
		re, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("compile block pattern %q: %w", raw, err)
		}
		patterns = append(patterns, re)
	}

	return &Validator{
		tokens:    lowered(ruleset.Rules.BlockTokens),
		patterns:  patterns,
		blacklist: lowered(ruleset.Rules.BlacklistKeywords),
		highPriv:  lowered(ruleset.Rules.HighPrivilegeCommands),
		paths:     lowered(ruleset.Rules.SensitivePaths),
	}, nil
}

// Validate implements ports.CommandValidator. First matching rule wins;
// every rejection carries risk HIGH and the normalized command text.
func (v *Validator) Validate(raw string) domain.ValidationResult {
	normalized := textutil.CleanSingleLine(raw)

	if normalized == "" {
		return blocked("Empty command", normalized)
	}

	// Raw line breaks are checked against the pre-normalization input; the
	// regex rule below re-checks post-normalization.
	if strings.ContainsAny(raw, "\r\n") {
		return blocked("Multi-line output blocked", normalized)
	}

	lowerCmd := strings.ToLower(normalized)

	for _, token := range v.tokens {
		if strings.Contains(lowerCmd, token) {
			return blocked(fmt.Sprintf("Blocked token detected: %s", token), normalized)
		}
	}

	for _, pattern := range v.patterns {
		if pattern.MatchString(normalized) {
			return blocked("Encoded or chained command pattern blocked", normalized)
		}
	}

	for _, keyword := range v.blacklist {
		if strings.Contains(lowerCmd, keyword) {
			return blocked("Blacklisted command detected", normalized)
		}
	}

	risk := domain.RiskNormal
	if v.isHighPrivilege(lowerCmd) {
		risk = domain.RiskHigh
	}
	return domain.ValidationResult{
		Allowed:           true,
		Reason:            "Command validated",
		NormalizedCommand: normalized,
		RiskLevel:         risk,
	}
}

// isHighPrivilege classifies an already-allowed command: HIGH when its first
// token is a high-privilege command name or the text touches a sensitive
// path substring.
func (v *Validator) isHighPrivilege(lowerCmd string) bool {
	for _, prefix := range v.highPriv {
		if lowerCmd == prefix || strings.HasPrefix(lowerCmd, prefix+" ") {
			return true
		}
	}
	for _, path := range v.paths {
		if strings.Contains(lowerCmd, path) {
			return true
		}
	}
	return false
}

func blocked(reason, normalized string) domain.ValidationResult {
	return domain.ValidationResult{
		Allowed:           false,
		Reason:            reason,
		NormalizedCommand: normalized,
		RiskLevel:         domain.RiskHigh,
	}
}

func loadRuleset(path string) (RulesetFile, error) {
	var ruleset RulesetFile
	data, err := os.ReadFile(rulesetPath(path))
	if err == nil {
		if err := yaml.Unmarshal(data, &ruleset); err != nil {
			return RulesetFile{}, err
		}
	}
	if len(ruleset.Rules.BlockTokens) == 0 {
		ruleset.Rules.BlockTokens = defaultBlockTokens()
	}
	if len(ruleset.Rules.BlockPatterns) == 0 {
		ruleset.Rules.BlockPatterns = defaultBlockPatterns()
	}
	if len(ruleset.Rules.BlacklistKeywords) == 0 {
		ruleset.Rules.BlacklistKeywords = defaultBlacklistKeywords()
	}
	if len(ruleset.Rules.HighPrivilegeCommands) == 0 {
		ruleset.Rules.HighPrivilegeCommands = defaultHighPrivCommands()
	}
	if len(ruleset.Rules.SensitivePaths) == 0 {
		ruleset.Rules.SensitivePaths = defaultSensitivePaths()
	}
	return ruleset, nil
}

func lowered(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value == "" {
			continue
		}
		out = append(out, strings.ToLower(value))
	}
	return out
}

// rulesetPath treats a non-empty path as already resolved; the config
// loader expands relative and ~/ forms before the validator sees them.
func rulesetPath(path string) string {
	if path == "" {
		return filepath.Join(userHomeDir(), ".jarvis", "ruleset.yaml")
	}
	return path
}

func userHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

var _ ports.CommandValidator = (*Validator)(nil)
