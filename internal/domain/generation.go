// Package domain defines core business entities and value objects for JARVIS.
//
// The domain layer is independent of infrastructure concerns and represents
// pure business logic and data structures.
package domain

import "strings"

// GenerationResult is the outcome of a single model generation pass: exactly
// one command line plus the identifier of the model that produced it.
// Instances are created fresh per user input and never mutated.
type GenerationResult struct {
	Command string
	Model   string
}

// CandidateModels is the ordered list of model identifiers the gateway will
// try, first entry first. A preferred model can be promoted to the front
// without reordering the rest; the base order always comes from configuration.
type CandidateModels struct {
	base      []string
	preferred string
}

// NewCandidateModels builds a candidate list from configuration, dropping
// duplicates while preserving order.
func NewCandidateModels(names []string) *CandidateModels {
	seen := make(map[string]bool, len(names))
	var base []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		base = append(base, name)
	}
	return &CandidateModels{base: base}
}

// Names returns the candidate identifiers in try order, the preferred model
// (if any) promoted to the front.
func (c *CandidateModels) Names() []string {
	if c.preferred == "" {
		return append([]string(nil), c.base...)
	}
	names := make([]string, 0, len(c.base))
	names = append(names, c.preferred)
	for _, name := range c.base {
		if name != c.preferred {
			names = append(names, name)
		}
	}
	return names
}

// Preferred returns the pinned model name, or "" when selection is automatic.
func (c *CandidateModels) Preferred() string {
	return c.preferred
}

// SetPreferred pins a model to the front of the try order. The name must
// resolve against the configured candidates.
func (c *CandidateModels) SetPreferred(name string) bool {
	resolved, ok := c.Resolve(name)
	if !ok {
		return false
	}
	c.preferred = resolved
	return true
}

// ClearPreferred restores automatic (configured) ordering.
func (c *CandidateModels) ClearPreferred() {
	c.preferred = ""
}

// Resolve maps a user selection - a 1-based index or a case-insensitive
// name fragment - to a configured model identifier.
func (c *CandidateModels) Resolve(choice string) (string, bool) {
	choice = strings.TrimSpace(choice)
	if choice == "" {
		return "", false
	}
	if idx, ok := parseIndex(choice); ok {
		names := c.Names()
		if idx >= 1 && idx <= len(names) {
			return names[idx-1], true
		}
		return "", false
	}
	lowered := strings.ToLower(choice)
	for _, name := range c.base {
		if strings.Contains(strings.ToLower(name), lowered) {
			return name, true
		}
	}
	return "", false
}

// Len reports the number of configured candidates.
func (c *CandidateModels) Len() int {
	return len(c.base)
}

func parseIndex(value string) (int, bool) {
	idx := 0
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0, false
		}
		idx = idx*10 + int(r-'0')
	}
	return idx, true
}
