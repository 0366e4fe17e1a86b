package athenamcp

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/rs/zerolog"

	"github.com/lakequery/athena-mcp/internal/guidance"
	"github.com/lakequery/athena-mcp/internal/polling"
	"github.com/lakequery/athena-mcp/internal/sanitize"
)

// AthenaMcp is the core engine that provides the ListDatabases, ExecuteQuery,
// and DescribeStructure operations. All exported methods are safe for
// concurrent use from multiple goroutines: the engine holds no mutable state
// beyond the semaphore, and the Athena client is safe for concurrent use.
type AthenaMcp struct {
	config    Config
	client    Client
	semaphore chan struct{}
	sanitizer *sanitize.Sanitizer
	guidance  *guidance.Matcher
	pollRules *polling.Manager
	logger    zerolog.Logger
}

// New creates a new AthenaMcp instance. client is the pre-authenticated
// Athena client (see NewClient). Panics on structurally invalid config.
// Returns error only for runtime failures (invalid regex patterns).
func New(client Client, config Config, logger zerolog.Logger) (*AthenaMcp, error) {
	if client == nil {
		panic("athenamcp: client must be non-nil")
	}

	// --- Config validation and defaults ---

	if config.Athena.Region == "" {
		config.Athena.Region = DefaultRegion
	}
	if config.Athena.Catalog == "" {
		config.Athena.Catalog = DefaultCatalog
	}
	if config.Athena.DefaultDatabase == "" {
		config.Athena.DefaultDatabase = DefaultDatabase
	}

	if config.Query.MaxDisplayRows < 0 {
		panic("athenamcp: query.max_display_rows must be > 0")
	}
	if config.Query.MaxDisplayRows == 0 {
		config.Query.MaxDisplayRows = DefaultMaxDisplayRows
	}
	if config.Query.PollIntervalMillis < 0 {
		panic("athenamcp: query.poll_interval_millis must be > 0")
	}
	if config.Query.PollIntervalMillis == 0 {
		config.Query.PollIntervalMillis = 1000
	}
	if config.Query.DefaultMaxWaitSeconds < 0 {
		panic("athenamcp: query.default_max_wait_seconds must be >= 0 (0 = unbounded)")
	}
	if config.Query.MaxSQLLength < 0 {
		panic("athenamcp: query.max_sql_length must be > 0")
	}
	if config.Query.MaxSQLLength == 0 {
		config.Query.MaxSQLLength = 100000
	}
	if config.Query.MaxConcurrentQueries < 0 {
		panic("athenamcp: query.max_concurrent_queries must be >= 0 (0 = unlimited)")
	}
	for _, rule := range config.Query.MaxWaitRules {
		if rule.MaxWaitSeconds <= 0 {
			panic(fmt.Sprintf("athenamcp: max_wait_rule with pattern %q has max_wait_seconds <= 0", rule.Pattern))
		}
	}

	// --- Initialize internal components ---

	san, err := sanitize.NewSanitizer(mapSanitizationRules(config.Sanitization))
	if err != nil {
		return nil, err
	}

	matcher, err := guidance.NewMatcher(append(guidance.DefaultRules(), mapErrorPromptRules(config.ErrorPrompts)...))
	if err != nil {
		return nil, err
	}

	pollRules := make([]polling.Rule, len(config.Query.MaxWaitRules))
	for i, r := range config.Query.MaxWaitRules {
		pollRules[i] = polling.Rule{
			Pattern: r.Pattern,
			MaxWait: time.Duration(r.MaxWaitSeconds) * time.Second,
		}
	}
	pollMgr, err := polling.NewManager(polling.Config{
		DefaultMaxWait: time.Duration(config.Query.DefaultMaxWaitSeconds) * time.Second,
		Rules:          pollRules,
	})
	if err != nil {
		return nil, err
	}

	var semaphore chan struct{}
	if config.Query.MaxConcurrentQueries > 0 {
		semaphore = make(chan struct{}, config.Query.MaxConcurrentQueries)
	}

	return &AthenaMcp{
		config:    config,
		client:    client,
		semaphore: semaphore,
		sanitizer: san,
		guidance:  matcher,
		pollRules: pollMgr,
		logger:    logger,
	}, nil
}

// DefaultDatabase returns the configured default database (after defaults
// were applied).
func (a *AthenaMcp) DefaultDatabase() string {
	return a.config.Athena.DefaultDatabase
}

// Guidance returns the engine's error guidance matcher.
func (a *AthenaMcp) Guidance() *guidance.Matcher {
	return a.guidance
}

// Ping tests connectivity with Athena by listing databases in the
// configured catalog. Logs the database count and the first few names.
func (a *AthenaMcp) Ping(ctx context.Context) error {
	out, err := a.client.ListDatabases(ctx, &athena.ListDatabasesInput{
		CatalogName: aws.String(a.config.Athena.Catalog),
	})
	if err != nil {
		return classifyAWSError("ListDatabases", err)
	}

	names := make([]string, 0, 5)
	for _, db := range out.DatabaseList {
		if len(names) == 5 {
			break
		}
		names = append(names, aws.ToString(db.Name))
	}
	a.logger.Info().
		Int("database_count", len(out.DatabaseList)).
		Strs("first_databases", names).
		Msg("Athena connectivity test successful")
	return nil
}

// acquireSlot takes a query slot, respecting context cancellation.
// No-op when no concurrency cap is configured.
func (a *AthenaMcp) acquireSlot(ctx context.Context) (release func(), err error) {
	if a.semaphore == nil {
		return func() {}, nil
	}
	select {
	case a.semaphore <- struct{}{}:
		return func() { <-a.semaphore }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to acquire query slot: all %d slots are in use, context cancelled while waiting: %w", cap(a.semaphore), ctx.Err())
	}
}

// mapSanitizationRules converts config SanitizationRules to internal sanitize.Rules.
func mapSanitizationRules(rules []SanitizationRule) []sanitize.Rule {
	result := make([]sanitize.Rule, len(rules))
	for i, r := range rules {
		result[i] = sanitize.Rule{
			Pattern:     r.Pattern,
			Replacement: r.Replacement,
		}
	}
	return result
}

// mapErrorPromptRules converts config ErrorPromptRules to internal guidance.Rules.
func mapErrorPromptRules(rules []ErrorPromptRule) []guidance.Rule {
	result := make([]guidance.Rule, len(rules))
	for i, r := range rules {
		result[i] = guidance.Rule{
			Pattern: r.Pattern,
			Message: r.Message,
		}
	}
	return result
}
