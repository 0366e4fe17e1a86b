package athenamcp_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	athenamcp "github.com/lakequery/athena-mcp"
	"github.com/rs/zerolog"
)

const testQueryID = "abc-123-execution-id"

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func defaultConfig() athenamcp.Config {
	return athenamcp.Config{
		Athena: athenamcp.AthenaConfig{
			OutputLocation: "s3://test-bucket/athena-results/",
		},
		Query: athenamcp.QueryConfig{
			PollIntervalMillis: 10,
		},
	}
}

// stubClient is a call-counting in-memory Client. Each method delegates to
// its fn field when set; nil fns fail the calling test.
type stubClient struct {
	t *testing.T

	mu              sync.Mutex
	startCalls      int
	getExecCalls    int
	getResultsCalls int
	listCalls       int

	startFn      func(params *athena.StartQueryExecutionInput) (*athena.StartQueryExecutionOutput, error)
	getExecFn    func(params *athena.GetQueryExecutionInput) (*athena.GetQueryExecutionOutput, error)
	getResultsFn func(params *athena.GetQueryResultsInput) (*athena.GetQueryResultsOutput, error)
	listFn       func(params *athena.ListDatabasesInput) (*athena.ListDatabasesOutput, error)
}

func (s *stubClient) StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error) {
	s.mu.Lock()
	s.startCalls++
	s.mu.Unlock()
	if s.startFn == nil {
		s.t.Fatal("unexpected StartQueryExecution call")
	}
	return s.startFn(params)
}

func (s *stubClient) GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error) {
	s.mu.Lock()
	s.getExecCalls++
	s.mu.Unlock()
	if s.getExecFn == nil {
		s.t.Fatal("unexpected GetQueryExecution call")
	}
	return s.getExecFn(params)
}

func (s *stubClient) GetQueryResults(ctx context.Context, params *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error) {
	s.mu.Lock()
	s.getResultsCalls++
	s.mu.Unlock()
	if s.getResultsFn == nil {
		s.t.Fatal("unexpected GetQueryResults call")
	}
	return s.getResultsFn(params)
}

func (s *stubClient) ListDatabases(ctx context.Context, params *athena.ListDatabasesInput, optFns ...func(*athena.Options)) (*athena.ListDatabasesOutput, error) {
	s.mu.Lock()
	s.listCalls++
	s.mu.Unlock()
	if s.listFn == nil {
		s.t.Fatal("unexpected ListDatabases call")
	}
	return s.listFn(params)
}

func (s *stubClient) calls() (start, getExec, getResults, list int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startCalls, s.getExecCalls, s.getResultsCalls, s.listCalls
}

func newTestEngine(t *testing.T, client *stubClient, config athenamcp.Config) *athenamcp.AthenaMcp {
	t.Helper()
	client.t = t
	engine, err := athenamcp.New(client, config, testLogger())
	if err != nil {
		t.Fatalf("Failed to create AthenaMcp: %v", err)
	}
	return engine
}

// succeedingClient returns a stub whose query reaches SUCCEEDED after
// pollsUntilDone RUNNING observations and then serves the given cell grid.
func succeedingClient(grid [][]string, pollsUntilDone int) *stubClient {
	s := &stubClient{}
	s.startFn = func(params *athena.StartQueryExecutionInput) (*athena.StartQueryExecutionOutput, error) {
		return &athena.StartQueryExecutionOutput{
			QueryExecutionId: aws.String(testQueryID),
		}, nil
	}
	s.getExecFn = func(params *athena.GetQueryExecutionInput) (*athena.GetQueryExecutionOutput, error) {
		s.mu.Lock()
		polls := s.getExecCalls
		s.mu.Unlock()
		state := types.QueryExecutionStateRunning
		if polls > pollsUntilDone {
			state = types.QueryExecutionStateSucceeded
		}
		return executionOutput(state, ""), nil
	}
	s.getResultsFn = func(params *athena.GetQueryResultsInput) (*athena.GetQueryResultsOutput, error) {
		return &athena.GetQueryResultsOutput{ResultSet: resultSet(grid)}, nil
	}
	return s
}

// failingClient returns a stub whose query terminates in the given state
// with the given state change reason.
func failingClient(state types.QueryExecutionState, reason string) *stubClient {
	s := &stubClient{}
	s.startFn = func(params *athena.StartQueryExecutionInput) (*athena.StartQueryExecutionOutput, error) {
		return &athena.StartQueryExecutionOutput{
			QueryExecutionId: aws.String(testQueryID),
		}, nil
	}
	s.getExecFn = func(params *athena.GetQueryExecutionInput) (*athena.GetQueryExecutionOutput, error) {
		return executionOutput(state, reason), nil
	}
	return s
}

func executionOutput(state types.QueryExecutionState, reason string) *athena.GetQueryExecutionOutput {
	status := &types.QueryExecutionStatus{State: state}
	if reason != "" {
		status.StateChangeReason = aws.String(reason)
	}
	return &athena.GetQueryExecutionOutput{
		QueryExecution: &types.QueryExecution{Status: status},
	}
}

func resultSet(grid [][]string) *types.ResultSet {
	rows := make([]types.Row, len(grid))
	for i, cells := range grid {
		data := make([]types.Datum, len(cells))
		for j, cell := range cells {
			data[j] = types.Datum{VarCharValue: aws.String(cell)}
		}
		rows[i] = types.Row{Data: data}
	}
	return &types.ResultSet{Rows: rows}
}

func databaseList(names ...string) []types.Database {
	dbs := make([]types.Database, len(names))
	for i, name := range names {
		dbs[i] = types.Database{Name: aws.String(name)}
	}
	return dbs
}
