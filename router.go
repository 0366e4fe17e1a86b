package athenamcp

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lakequery/athena-mcp/internal/guidance"
)

// ArgSpec declares one tool argument.
type ArgSpec struct {
	Name        string
	Description string
	Required    bool
	Default     string
}

// ToolDefinition declares one tool: name, description, and argument
// contract. The catalog is constructed once at startup and read-only
// thereafter.
type ToolDefinition struct {
	Name        string
	Description string
	Args        []ArgSpec
	ReadOnly    bool
}

// notConfiguredMessage is returned by every dispatch when the engine could
// not be initialized (e.g. AWS client creation failed).
const notConfiguredMessage = "Error: Athena service not configured. Check AWS credentials."

// toolCatalog builds the static tool catalog.
func toolCatalog(defaultDatabase string) []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "list_databases",
			Description: "List all available databases in AWS Athena",
			ReadOnly:    true,
		},
		{
			Name:        "query_athena",
			Description: "Execute SQL queries on AWS Athena for semi-structured data",
			Args: []ArgSpec{
				{Name: "query", Description: "SQL query to execute", Required: true},
				{Name: "database", Description: "Athena database name", Default: defaultDatabase},
			},
		},
		{
			Name:        "describe_data_structure",
			Description: "Get information about available tables and their structure",
			Args: []ArgSpec{
				{Name: "database", Description: "Database to explore", Default: defaultDatabase},
			},
			ReadOnly: true,
		},
	}
}

// Router translates (tool name, arguments) pairs into engine calls,
// enforcing each tool's declared argument contract.
type Router struct {
	engine          *AthenaMcp
	defaultDatabase string
	tools           []ToolDefinition
	guidance        *guidance.Matcher
	logger          zerolog.Logger
}

// NewRouter creates a Router over the given engine. engine may be nil when
// service initialization failed — every dispatch then short-circuits to a
// fixed configuration-error response instead of attempting a call.
func NewRouter(engine *AthenaMcp, defaultDatabase string, logger zerolog.Logger) *Router {
	if defaultDatabase == "" {
		defaultDatabase = DefaultDatabase
	}
	var matcher *guidance.Matcher
	if engine != nil {
		defaultDatabase = engine.DefaultDatabase()
		matcher = engine.Guidance()
	} else {
		m, err := guidance.NewMatcher(guidance.DefaultRules())
		if err != nil {
			panic("athenamcp: built-in guidance rules must compile: " + err.Error())
		}
		matcher = m
	}
	return &Router{
		engine:          engine,
		defaultDatabase: defaultDatabase,
		tools:           toolCatalog(defaultDatabase),
		guidance:        matcher,
		logger:          logger,
	}
}

// Tools returns the static tool catalog.
func (r *Router) Tools() []ToolDefinition {
	return r.tools
}

// Dispatch routes a tool call to the engine. Caller-side contract
// violations (unknown tool, missing required argument) are detected before
// any remote call is attempted.
func (r *Router) Dispatch(ctx context.Context, name string, args map[string]any) (string, error) {
	if r.engine == nil {
		r.logger.Error().Str("tool", name).Msg("dispatch with uninitialized engine")
		return "", &ConfigurationError{Message: notConfiguredMessage}
	}

	switch name {
	case "list_databases":
		return r.engine.ListDatabases(ctx)

	case "query_athena":
		query := stringArg(args, "query")
		if query == "" {
			return "", &ArgumentError{Tool: name, Argument: "query"}
		}
		database := stringArgDefault(args, "database", r.defaultDatabase)
		return r.engine.ExecuteQuery(ctx, query, database)

	case "describe_data_structure":
		database := stringArgDefault(args, "database", r.defaultDatabase)
		return r.engine.DescribeStructure(ctx, database)

	default:
		return "", &ToolNotFoundError{Name: name}
	}
}

// RenderError converts a dispatch error into the user-facing error text,
// appending any matching guidance. Error text is prefixed distinctly from
// success responses, but the prefix is a display convention only — callers
// must not parse it.
func (r *Router) RenderError(err error) string {
	msg := err.Error()
	if !strings.HasPrefix(msg, "Error:") {
		msg = "Error: " + msg
	}
	if prompt := r.guidance.Match(err.Error()); prompt != "" {
		msg = msg + "\n\n" + prompt
	}
	return msg
}

func stringArg(args map[string]any, name string) string {
	if v, ok := args[name].(string); ok {
		return v
	}
	return ""
}

func stringArgDefault(args map[string]any, name, fallback string) string {
	if v := stringArg(args, name); v != "" {
		return v
	}
	return fallback
}
