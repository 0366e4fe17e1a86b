package sanitize

import (
	"fmt"
	"regexp"
)

// Rule is the sanitizer's own rule type.
type Rule struct {
	Pattern     string
	Replacement string
}

type compiledRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Sanitizer applies regex-based redaction to result cell values before they
// are rendered for display.
type Sanitizer struct {
	rules []compiledRule
}

// NewSanitizer creates a new Sanitizer. Returns an error on invalid regex patterns.
func NewSanitizer(rules []Rule) (*Sanitizer, error) {
	compiled := make([]compiledRule, len(rules))
	for i, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("sanitize: invalid regex pattern %q: %v", r.Pattern, err)
		}
		compiled[i] = compiledRule{pattern: re, replacement: r.Replacement}
	}
	return &Sanitizer{rules: compiled}, nil
}

// HasRules returns true if the sanitizer has any rules configured.
func (s *Sanitizer) HasRules() bool {
	return len(s.rules) > 0
}

// SanitizeCells applies every rule to every cell of the result grid in
// place, header row included — Athena results are all VarChar cells, so
// there is no type distinction to preserve.
func (s *Sanitizer) SanitizeCells(rows [][]string) [][]string {
	if len(s.rules) == 0 {
		return rows
	}
	for _, row := range rows {
		for i, cell := range row {
			for _, rule := range s.rules {
				cell = rule.pattern.ReplaceAllString(cell, rule.replacement)
			}
			row[i] = cell
		}
	}
	return rows
}
