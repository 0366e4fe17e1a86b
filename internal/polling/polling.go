// Package polling resolves per-query poll ceilings based on SQL pattern
// matching. A ceiling of zero means the poll loop runs until the service
// reports a terminal state.
package polling

import (
	"fmt"
	"regexp"
	"time"
)

// Rule maps a SQL pattern to a specific maximum wait.
type Rule struct {
	Pattern string
	MaxWait time.Duration
}

// Config holds the default ceiling and pattern rules.
type Config struct {
	DefaultMaxWait time.Duration
	Rules          []Rule
}

type compiledRule struct {
	pattern *regexp.Regexp
	maxWait time.Duration
}

// Manager resolves the maximum time to wait for a query to reach a terminal
// state.
type Manager struct {
	rules          []compiledRule
	defaultMaxWait time.Duration
}

// NewManager creates a new Manager. Returns an error on invalid regex patterns.
func NewManager(config Config) (*Manager, error) {
	compiled := make([]compiledRule, len(config.Rules))
	for i, r := range config.Rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("polling: invalid regex pattern %q: %v", r.Pattern, err)
		}
		compiled[i] = compiledRule{pattern: re, maxWait: r.MaxWait}
	}
	return &Manager{rules: compiled, defaultMaxWait: config.DefaultMaxWait}, nil
}

// MaxWait returns the poll ceiling for the given SQL. First matching rule
// wins. Falls back to the default; zero means no ceiling.
func (m *Manager) MaxWait(sql string) time.Duration {
	maxWait, _ := m.MaxWaitWithPattern(sql)
	return maxWait
}

// MaxWaitWithPattern returns the poll ceiling and the pattern of the rule
// that set it ("" when the default applied).
func (m *Manager) MaxWaitWithPattern(sql string) (time.Duration, string) {
	for _, rule := range m.rules {
		if rule.pattern.MatchString(sql) {
			return rule.maxWait, rule.pattern.String()
		}
	}
	return m.defaultMaxWait, ""
}
