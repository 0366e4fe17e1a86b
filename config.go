package athenamcp

// Defaults matching the Athena service conventions.
const (
	DefaultRegion         = "us-east-1"
	DefaultCatalog        = "AwsDataCatalog"
	DefaultDatabase       = "default"
	DefaultMaxDisplayRows = 20
)

// Config is the base configuration used by library mode via New().
type Config struct {
	Athena       AthenaConfig       `json:"athena"`
	Query        QueryConfig        `json:"query"`
	ErrorPrompts []ErrorPromptRule  `json:"error_prompts"`
	Sanitization []SanitizationRule `json:"sanitization"`
}

// ServerConfig embeds Config and adds server-only fields for CLI mode.
type ServerConfig struct {
	Config
	AWS     AWSSettings    `json:"aws"`
	Server  ServerSettings `json:"server"`
	Logging LoggingConfig  `json:"logging"`
}

// AthenaConfig holds query-service settings.
type AthenaConfig struct {
	Region          string `json:"region"`
	Catalog         string `json:"catalog"`
	DefaultDatabase string `json:"default_database"`
	OutputLocation  string `json:"output_location"`
	Workgroup       string `json:"workgroup"`
}

// AWSSettings holds credential-resolution settings used by CLI mode.
// Access keys are never stored in the config file — they come from the
// AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY environment variables.
type AWSSettings struct {
	Profile string `json:"profile"`
}

// QueryConfig holds query execution settings.
type QueryConfig struct {
	MaxDisplayRows        int           `json:"max_display_rows"`
	PollIntervalMillis    int           `json:"poll_interval_millis"`
	DefaultMaxWaitSeconds int           `json:"default_max_wait_seconds"`
	MaxWaitRules          []MaxWaitRule `json:"max_wait_rules"`
	MaxSQLLength          int           `json:"max_sql_length"`
	MaxConcurrentQueries  int           `json:"max_concurrent_queries"`
}

// MaxWaitRule maps a SQL pattern to a poll ceiling. Queries matching the
// pattern are abandoned with a timeout error after max_wait_seconds.
type MaxWaitRule struct {
	Pattern        string `json:"pattern"`
	MaxWaitSeconds int    `json:"max_wait_seconds"`
}

// ErrorPromptRule maps an error message pattern to a guidance message.
type ErrorPromptRule struct {
	Pattern string `json:"pattern"`
	Message string `json:"message"`
}

// SanitizationRule defines a regex-based result cell sanitization rule.
type SanitizationRule struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
	Description string `json:"description"`
}

// ServerSettings holds transport settings for CLI mode.
type ServerSettings struct {
	Transport          string `json:"transport"` // stdio, http
	Port               int    `json:"port"`
	HealthCheckEnabled bool   `json:"health_check_enabled"`
	HealthCheckPath    string `json:"health_check_path"`
}

// LoggingConfig holds logging settings for CLI mode.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stderr, stdout, or file path
}
