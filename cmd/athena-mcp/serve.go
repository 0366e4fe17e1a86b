package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	athenamcp "github.com/lakequery/athena-mcp"
	"github.com/lakequery/athena-mcp/internal/meta"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

const defaultConfigPath = ".athena-mcp/config.json"

func runServe() error {
	ctx := context.Background()

	serverConfig, err := loadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyEnvOverrides(serverConfig)

	logger := setupLogger(serverConfig.Logging)

	// Initialize the engine. Credential absence is not fatal at startup:
	// a nil engine degrades every tool call to a configuration-error
	// response so the agent can report the problem to the user.
	var engine *athenamcp.AthenaMcp
	client, err := athenamcp.NewClient(ctx, clientOptions(serverConfig), logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize Athena client; tool calls will report a configuration error")
	} else {
		engine, err = athenamcp.New(client, serverConfig.Config, logger)
		if err != nil {
			return fmt.Errorf("failed to create AthenaMcp: %w", err)
		}
		logger.Info().Msg("testing Athena connectivity")
		if err := engine.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("Athena connectivity test failed; tool calls may fail")
		}
	}

	router := athenamcp.NewRouter(engine, serverConfig.Athena.DefaultDatabase, logger)

	hooks := &server.Hooks{}
	hooks.AddAfterInitialize(func(ctx context.Context, id any, req *mcp.InitializeRequest, result *mcp.InitializeResult) {
		logger.Info().
			Str("client_name", req.Params.ClientInfo.Name).
			Str("client_version", req.Params.ClientInfo.Version).
			Msg("AI agent connected (MCP initialize)")
	})

	mcpServer := server.NewMCPServer("athena-mcp", meta.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithHooks(hooks),
	)

	athenamcp.RegisterMCPTools(mcpServer, router)

	switch serverConfig.Server.Transport {
	case "", "stdio":
		logger.Info().Msg("starting athena-mcp server on stdio")
		return server.ServeStdio(mcpServer)
	case "http":
		return serveHTTP(mcpServer, serverConfig, logger)
	default:
		panic(fmt.Sprintf("athena-mcp: unknown server.transport %q (use stdio or http)", serverConfig.Server.Transport))
	}
}

func serveHTTP(mcpServer *server.MCPServer, serverConfig *athenamcp.ServerConfig, logger zerolog.Logger) error {
	if serverConfig.Server.Port <= 0 {
		panic("athena-mcp: server.port must be > 0 for http transport")
	}

	addr := fmt.Sprintf(":%d", serverConfig.Server.Port)
	mux := http.NewServeMux()

	// Health check endpoint (process liveness only, not Athena connectivity)
	if serverConfig.Server.HealthCheckEnabled {
		if serverConfig.Server.HealthCheckPath == "" {
			panic("athena-mcp: health_check_path must be set when health_check_enabled is true")
		}
		mux.HandleFunc(serverConfig.Server.HealthCheckPath, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})
	}

	httpSrv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	streamableServer := server.NewStreamableHTTPServer(mcpServer,
		server.WithEndpointPath("/mcp"),
		server.WithStateLess(true),
		server.WithStreamableHTTPServer(httpSrv),
	)

	// Manually register the MCP handler — Start() does NOT register
	// when a custom *http.Server is provided via WithStreamableHTTPServer.
	mux.Handle("/mcp", streamableServer)

	logger.Info().Int("port", serverConfig.Server.Port).Msg("starting athena-mcp server")
	return streamableServer.Start(addr)
}

// loadServerConfig reads the JSON config file. A missing file is not an
// error — the server can run entirely from environment variables.
func loadServerConfig() (*athenamcp.ServerConfig, error) {
	configPath := os.Getenv("ATHENA_MCP_CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	var config athenamcp.ServerConfig
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &config, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// applyEnvOverrides layers environment-sourced settings over the config
// file. Environment wins, matching the upstream AWS variable conventions.
func applyEnvOverrides(config *athenamcp.ServerConfig) {
	if v := os.Getenv("AWS_S3_OUTPUT_LOCATION"); v != "" {
		config.Athena.OutputLocation = v
	}
	if v := regionFromEnv(); v != "" {
		config.Athena.Region = v
	}
	if v := os.Getenv("AWS_PROFILE"); v != "" {
		config.AWS.Profile = v
	}
	if v := os.Getenv("ATHENA_DEFAULT_DATABASE"); v != "" {
		config.Athena.DefaultDatabase = v
	}
	if v := os.Getenv("ATHENA_MAX_DISPLAY_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Query.MaxDisplayRows = n
		}
	}
}

// regionFromEnv resolves the region the way the original AWS tooling does:
// AWS_DEFAULT_REGION first, then AWS_REGION.
func regionFromEnv() string {
	if v := os.Getenv("AWS_DEFAULT_REGION"); v != "" {
		return v
	}
	return os.Getenv("AWS_REGION")
}

// clientOptions builds credential options from config + environment.
func clientOptions(config *athenamcp.ServerConfig) athenamcp.ClientOptions {
	return athenamcp.ClientOptions{
		Region:          config.Athena.Region,
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Profile:         config.AWS.Profile,
	}
}

func setupLogger(config athenamcp.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(config.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	// Default to stderr — on stdio transport, stdout carries the protocol.
	var output io.Writer = os.Stderr
	if config.Output == "stdout" {
		output = os.Stdout
	} else if config.Output != "" && config.Output != "stderr" {
		f, err := os.OpenFile(config.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			output = f
		}
	}

	if config.Format == "text" {
		output = zerolog.ConsoleWriter{Out: output}
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
