package athenamcp

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"

	"github.com/lakequery/athena-mcp/internal/format"
	"github.com/lakequery/athena-mcp/internal/s3loc"
)

// ExecuteQuery runs a SQL query on the given database and returns the
// formatted result text prefixed with a success banner. All failure modes
// are returned as typed errors (ConfigurationError, CredentialsError,
// ServiceError, QueryExecutionError, QueryTimeoutError) — nothing panics
// across this boundary.
func (a *AthenaMcp) ExecuteQuery(ctx context.Context, sql, database string) (string, error) {
	return a.runQuery(ctx, sql, database, "Query executed successfully:")
}

// runQuery drives one query from submission to terminal outcome:
// validate output location → submit → poll → fetch → sanitize → format.
func (a *AthenaMcp) runQuery(ctx context.Context, sql, database, banner string) (string, error) {
	startTime := time.Now()

	release, err := a.acquireSlot(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	if len(sql) > a.config.Query.MaxSQLLength {
		return "", fmt.Errorf("SQL query too long: %d bytes exceeds maximum of %d bytes", len(sql), a.config.Query.MaxSQLLength)
	}

	// Output location may have been reconfigured between calls; validate
	// before every submission.
	if msg := s3loc.ErrorMessage(a.config.Athena.OutputLocation); msg != "" {
		return "", &ConfigurationError{Message: msg}
	}

	a.logger.Info().
		Str("database", database).
		Str("sql", truncateForLog(sql, 200)).
		Msg("submitting query")

	input := &athena.StartQueryExecutionInput{
		QueryString: aws.String(sql),
		QueryExecutionContext: &types.QueryExecutionContext{
			Database: aws.String(database),
			Catalog:  aws.String(a.config.Athena.Catalog),
		},
		ResultConfiguration: &types.ResultConfiguration{
			OutputLocation: aws.String(a.config.Athena.OutputLocation),
		},
	}
	if a.config.Athena.Workgroup != "" {
		input.WorkGroup = aws.String(a.config.Athena.Workgroup)
	}

	started, err := a.client.StartQueryExecution(ctx, input)
	if err != nil {
		return "", a.logError(classifyAWSError("StartQueryExecution", err))
	}
	queryID := aws.ToString(started.QueryExecutionId)
	a.logger.Info().Str("query_id", queryID).Msg("query submitted")

	state, reason, err := a.waitForQuery(ctx, queryID, sql)
	if err != nil {
		return "", a.logError(err)
	}

	if state != types.QueryExecutionStateSucceeded {
		if reason == "" {
			reason = "Unknown error"
		}
		return "", a.logError(&QueryExecutionError{
			QueryID: queryID,
			State:   string(state),
			Reason:  reason,
		})
	}

	results, err := a.client.GetQueryResults(ctx, &athena.GetQueryResultsInput{
		QueryExecutionId: aws.String(queryID),
	})
	if err != nil {
		return "", a.logError(classifyAWSError("GetQueryResults", err))
	}

	grid := resultGrid(results.ResultSet)
	grid = a.sanitizer.SanitizeCells(grid)
	table := format.Results(grid, a.config.Query.MaxDisplayRows)

	rowCount := 0
	if len(grid) > 0 {
		rowCount = len(grid) - 1 // first row is the header
	}
	logEvent := a.logger.Info().
		Str("query_id", queryID).
		Dur("duration", time.Since(startTime)).
		Int("row_count", rowCount)
	if a.sanitizer.HasRules() {
		logEvent = logEvent.Bool("sanitized", true)
	}
	logEvent.Msg("query executed")

	return banner + "\n\n" + table, nil
}

// waitForQuery polls the query state until it is terminal. Each non-terminal
// observation is followed by one passive timed wait; the loop never
// busy-spins. A poll ceiling (resolved per SQL pattern, 0 = unbounded)
// converts a stuck query into a QueryTimeoutError; the loop is always
// abandonable through ctx.
func (a *AthenaMcp) waitForQuery(ctx context.Context, queryID, sql string) (types.QueryExecutionState, string, error) {
	maxWait, rulePattern := a.pollRules.MaxWaitWithPattern(sql)

	pollCtx := ctx
	if maxWait > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, maxWait)
		defer cancel()
		if rulePattern != "" {
			a.logger.Debug().Str("query_id", queryID).Str("max_wait_rule", rulePattern).Dur("max_wait", maxWait).Msg("poll ceiling applied")
		}
	}

	interval := time.Duration(a.config.Query.PollIntervalMillis) * time.Millisecond

	for {
		out, err := a.client.GetQueryExecution(pollCtx, &athena.GetQueryExecutionInput{
			QueryExecutionId: aws.String(queryID),
		})
		if err != nil {
			if timeoutErr := a.pollDeadlineError(ctx, pollCtx, queryID, maxWait); timeoutErr != nil {
				return "", "", timeoutErr
			}
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return "", "", fmt.Errorf("query %s abandoned: %w", queryID, ctx.Err())
			}
			return "", "", classifyAWSError("GetQueryExecution", err)
		}

		status := out.QueryExecution.Status
		state := status.State
		a.logger.Debug().Str("query_id", queryID).Str("state", string(state)).Msg("poll")

		switch state {
		case types.QueryExecutionStateSucceeded,
			types.QueryExecutionStateFailed,
			types.QueryExecutionStateCancelled:
			return state, aws.ToString(status.StateChangeReason), nil
		}

		select {
		case <-pollCtx.Done():
			if timeoutErr := a.pollDeadlineError(ctx, pollCtx, queryID, maxWait); timeoutErr != nil {
				return "", "", timeoutErr
			}
			return "", "", fmt.Errorf("query %s abandoned: %w", queryID, ctx.Err())
		case <-time.After(interval):
		}
	}
}

// pollDeadlineError returns a QueryTimeoutError when the poll ceiling (not
// the caller's context) expired, nil otherwise.
func (a *AthenaMcp) pollDeadlineError(ctx, pollCtx context.Context, queryID string, maxWait time.Duration) error {
	if maxWait > 0 && pollCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		return &QueryTimeoutError{QueryID: queryID, MaxWait: maxWait}
	}
	return nil
}

// resultGrid flattens an Athena ResultSet into a grid of cell strings.
// Missing cell values render as empty strings, never as null markers.
func resultGrid(rs *types.ResultSet) [][]string {
	if rs == nil || len(rs.Rows) == 0 {
		return nil
	}
	grid := make([][]string, len(rs.Rows))
	for i, row := range rs.Rows {
		cells := make([]string, len(row.Data))
		for j, datum := range row.Data {
			cells[j] = aws.ToString(datum.VarCharValue)
		}
		grid[i] = cells
	}
	return grid
}

// logError logs an error at the gateway boundary and returns it unchanged.
// Matching guidance patterns are logged for observability; the guidance text
// itself is appended at the router boundary.
func (a *AthenaMcp) logError(err error) error {
	logEvent := a.logger.Error().Err(err)
	if patterns := a.guidance.MatchedPatterns(err.Error()); len(patterns) > 0 {
		logEvent = logEvent.Strs("error_prompts", patterns)
	}
	logEvent.Msg("query error")
	return err
}

// truncateForLog truncates a string for log output to avoid oversized log entries.
func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	truncateAt := maxLen
	for truncateAt > 0 && !utf8.RuneStart(s[truncateAt]) {
		truncateAt--
	}
	return s[:truncateAt] + "...[truncated]"
}
