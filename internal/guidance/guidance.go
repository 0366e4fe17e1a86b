// Package guidance matches error messages against patterns and appends
// corrective guidance for the calling agent. A built-in rule set covers the
// common AWS failure classes; config-supplied rules are evaluated after it.
package guidance

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule maps an error message pattern to a guidance message.
type Rule struct {
	Pattern string
	Message string
}

// DefaultRules returns the built-in AWS guidance rules.
func DefaultRules() []Rule {
	return []Rule{
		{
			Pattern: `(?i)(UnrecognizedClientException|InvalidSignatureException|ExpiredToken|failed to retrieve credentials|no valid credential|credentials not found)`,
			Message: "Check your AWS credentials: set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY, or configure a named profile via AWS_PROFILE.",
		},
		{
			Pattern: `AccessDenied`,
			Message: "The configured IAM identity is not allowed to perform this Athena operation. Verify its athena:* and s3:* permissions for the output location.",
		},
		{
			Pattern: `(ThrottlingException|TooManyRequestsException)`,
			Message: "Athena is throttling requests for this account. Retry after a short wait or reduce concurrent queries.",
		},
		{
			Pattern: `(TABLE_NOT_FOUND|SCHEMA_NOT_FOUND|does not exist)`,
			Message: "Check the database and table names. Use list_databases and describe_data_structure to discover what is available.",
		},
	}
}

type compiledRule struct {
	pattern *regexp.Regexp
	message string
}

// Matcher checks error messages against rules and returns guidance prompts.
type Matcher struct {
	rules []compiledRule
}

// NewMatcher compiles the given rules. Returns an error on invalid regex
// patterns.
func NewMatcher(rules []Rule) (*Matcher, error) {
	compiled := make([]compiledRule, len(rules))
	for i, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("guidance: invalid regex pattern %q: %v", r.Pattern, err)
		}
		compiled[i] = compiledRule{pattern: re, message: r.Message}
	}
	return &Matcher{rules: compiled}, nil
}

// Match checks an error message against all rules (top to bottom) and
// returns the matching guidance messages joined with newline separators.
// Returns empty string if no rule matches.
func (m *Matcher) Match(errMsg string) string {
	var matches []string
	for _, rule := range m.rules {
		if rule.pattern.MatchString(errMsg) {
			matches = append(matches, rule.message)
		}
	}
	return strings.Join(matches, "\n")
}

// MatchedPatterns returns the regex patterns that matched the given error
// message. Returns nil if no match.
func (m *Matcher) MatchedPatterns(errMsg string) []string {
	var patterns []string
	for _, rule := range m.rules {
		if rule.pattern.MatchString(errMsg) {
			patterns = append(patterns, rule.pattern.String())
		}
	}
	return patterns
}
