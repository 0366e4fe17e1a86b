package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	athenamcp "github.com/lakequery/athena-mcp"
	"github.com/lakequery/athena-mcp/internal/meta"
	"github.com/lakequery/athena-mcp/internal/s3loc"
	"github.com/rs/zerolog"
)

func runDoctor() error {
	fs := flag.NewFlagSet("doctor", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to configuration file")
	fs.Parse(os.Args[2:])

	useColor := isTTY(os.Stderr.Fd())
	return doctor(context.Background(), os.Stderr, useColor, *configPath, true)
}

func doctor(ctx context.Context, w io.Writer, useColor bool, configPath string, probe bool) error {
	printBanner(w, useColor)
	fmt.Fprintf(w, "athena-mcp %s\n\n", meta.Version)

	config, ok := doctorValidateConfig(w, useColor, configPath)
	if !ok {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Fix the issues above and run 'athena-mcp doctor' again.")
		return nil
	}

	if probe {
		fmt.Fprintln(w)
		doctorProbe(ctx, w, useColor, config)
	}

	fmt.Fprintln(w)
	printAgentSnippets(w, useColor, config)
	return nil
}

// doctorValidateConfig loads and validates the config file, printing check
// results. A missing config file is allowed (env-only mode); a malformed
// one is not.
func doctorValidateConfig(w io.Writer, useColor bool, configPath string) (*athenamcp.ServerConfig, bool) {
	allPassed := true

	config := &athenamcp.ServerConfig{}
	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		printCheck(w, useColor, true, fmt.Sprintf("Config file absent (%s) — running from environment variables", configPath))
	case err != nil:
		printCheck(w, useColor, false, fmt.Sprintf("Config file readable (%s)", configPath))
		return nil, false
	default:
		printCheck(w, useColor, true, fmt.Sprintf("Config file readable (%s)", configPath))
		if err := json.Unmarshal(data, config); err != nil {
			printCheck(w, useColor, false, fmt.Sprintf("Config file is valid JSON: %v", err))
			return nil, false
		}
		printCheck(w, useColor, true, "Config file is valid JSON")
	}

	applyEnvOverrides(config)

	// Output location is required before any query can run.
	if reason := s3loc.Check(config.Athena.OutputLocation); reason != s3loc.Valid {
		printCheck(w, useColor, false, fmt.Sprintf("Output location is a valid s3:// URI (current: %q)", config.Athena.OutputLocation))
		allPassed = false
	} else {
		printCheck(w, useColor, true, fmt.Sprintf("Output location is a valid s3:// URI (%s)", config.Athena.OutputLocation))
	}

	switch config.Server.Transport {
	case "", "stdio":
		printCheck(w, useColor, true, "server.transport is stdio")
	case "http":
		if config.Server.Port <= 0 {
			printCheck(w, useColor, false, "server.port is > 0 (required for http transport)")
			allPassed = false
		} else {
			printCheck(w, useColor, true, fmt.Sprintf("server.port is > 0 (%d)", config.Server.Port))
		}
		if config.Server.HealthCheckEnabled && config.Server.HealthCheckPath == "" {
			printCheck(w, useColor, false, "health_check_path is set (required when health_check_enabled)")
			allPassed = false
		}
	default:
		printCheck(w, useColor, false, fmt.Sprintf("server.transport is stdio or http (current: %q)", config.Server.Transport))
		allPassed = false
	}

	regexOK := true
	for i, rule := range config.ErrorPrompts {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			printCheck(w, useColor, false, fmt.Sprintf("error_prompts[%d] regex compiles: %v", i, err))
			regexOK = false
			allPassed = false
		}
	}
	for i, rule := range config.Sanitization {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			printCheck(w, useColor, false, fmt.Sprintf("sanitization[%d] regex compiles: %v", i, err))
			regexOK = false
			allPassed = false
		}
	}
	for i, rule := range config.Query.MaxWaitRules {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			printCheck(w, useColor, false, fmt.Sprintf("max_wait_rules[%d] regex compiles: %v", i, err))
			regexOK = false
			allPassed = false
		}
	}
	if regexOK {
		printCheck(w, useColor, true, "All regex patterns compile")
	}

	return config, allPassed
}

// doctorProbe creates a real client and runs the connectivity test.
func doctorProbe(ctx context.Context, w io.Writer, useColor bool, config *athenamcp.ServerConfig) {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	logger := zerolog.New(io.Discard)
	client, err := athenamcp.NewClient(probeCtx, clientOptions(config), logger)
	if err != nil {
		printCheck(w, useColor, false, fmt.Sprintf("Athena client initialized: %v", err))
		return
	}
	printCheck(w, useColor, true, "Athena client initialized")

	engine, err := athenamcp.New(client, config.Config, logger)
	if err != nil {
		printCheck(w, useColor, false, fmt.Sprintf("Engine configuration valid: %v", err))
		return
	}
	if err := engine.Ping(probeCtx); err != nil {
		printCheck(w, useColor, false, fmt.Sprintf("Athena connectivity (ListDatabases): %v", err))
		return
	}
	printCheck(w, useColor, true, "Athena connectivity (ListDatabases)")
}

// printCheck prints a colored ✓ or ✗ check line.
func printCheck(w io.Writer, useColor bool, pass bool, msg string) {
	if pass {
		if useColor {
			fmt.Fprintf(w, "  \033[32m✓\033[0m %s\n", msg)
		} else {
			fmt.Fprintf(w, "  ✓ %s\n", msg)
		}
	} else {
		if useColor {
			fmt.Fprintf(w, "  \033[31m✗\033[0m %s\n", msg)
		} else {
			fmt.Fprintf(w, "  ✗ %s\n", msg)
		}
	}
}

// printAgentSnippets prints MCP connection config snippets for various AI agents.
func printAgentSnippets(w io.Writer, useColor bool, config *athenamcp.ServerConfig) {
	heading := func(title string) {
		if useColor {
			fmt.Fprintf(w, "\033[1;36m%s\033[0m\n", title)
		} else {
			fmt.Fprintln(w, title)
		}
	}

	subheading := func(title string) {
		if useColor {
			fmt.Fprintf(w, "  \033[1m%s\033[0m\n", title)
		} else {
			fmt.Fprintf(w, "  %s\n", title)
		}
	}

	heading("Agent Connection Snippets")
	fmt.Fprintln(w)

	if config.Server.Transport == "http" {
		url := fmt.Sprintf("http://localhost:%d/mcp", config.Server.Port)

		subheading("Claude Code")
		fmt.Fprintf(w, "  Run this command to add the server:\n\n")
		fmt.Fprintf(w, "    claude mcp add --transport http athena %s\n\n", url)

		subheading("Cursor (.cursor/mcp.json)")
		fmt.Fprintf(w, `  {
    "mcpServers": {
      "athena": {
        "url": "%s"
      }
    }
  }
`, url)
		return
	}

	subheading("Claude Code")
	fmt.Fprintf(w, "  Run this command to add the server:\n\n")
	fmt.Fprintf(w, "    claude mcp add athena -- athena-mcp serve\n\n")

	subheading("Generic MCP client (.mcp.json)")
	fmt.Fprintf(w, `  {
    "mcpServers": {
      "athena": {
        "command": "athena-mcp",
        "args": ["serve"],
        "env": {
          "AWS_S3_OUTPUT_LOCATION": "s3://your-bucket/athena-results/"
        }
      }
    }
  }
`)
}
