package guidance

import (
	"strings"
	"testing"
)

func TestCredentialsGuidance(t *testing.T) {
	t.Parallel()
	m, err := NewMatcher(DefaultRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := m.Match("operation error Athena: ListDatabases, https response error StatusCode: 403, UnrecognizedClientException: The security token included in the request is invalid.")
	if !strings.Contains(got, "AWS_ACCESS_KEY_ID") {
		t.Errorf("expected credentials guidance, got %q", got)
	}
}

func TestMultipleMatchesJoined(t *testing.T) {
	t.Parallel()
	m, err := NewMatcher([]Rule{
		{Pattern: "timeout", Message: "first"},
		{Pattern: "query", Message: "second"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := m.Match("query timeout exceeded")
	if got != "first\nsecond" {
		t.Errorf("expected both messages joined, got %q", got)
	}
	patterns := m.MatchedPatterns("query timeout exceeded")
	if len(patterns) != 2 {
		t.Errorf("expected 2 matched patterns, got %v", patterns)
	}
}

func TestNoMatch(t *testing.T) {
	t.Parallel()
	m, err := NewMatcher(DefaultRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.Match("something completely unrelated"); got != "" {
		t.Errorf("expected empty guidance, got %q", got)
	}
	if patterns := m.MatchedPatterns("something completely unrelated"); patterns != nil {
		t.Errorf("expected nil patterns, got %v", patterns)
	}
}

func TestInvalidPattern(t *testing.T) {
	t.Parallel()
	if _, err := NewMatcher([]Rule{{Pattern: "(", Message: "broken"}}); err == nil {
		t.Error("expected error for invalid regex pattern")
	}
}
