package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	athenamcp "github.com/lakequery/athena-mcp"
)

// validServerConfig returns a minimal valid ServerConfig for testing.
func validServerConfig() athenamcp.ServerConfig {
	var cfg athenamcp.ServerConfig
	cfg.Athena.Region = "us-east-1"
	cfg.Athena.OutputLocation = "s3://test-bucket/athena-results/"
	cfg.Athena.DefaultDatabase = "analytics"
	cfg.Server.Transport = "stdio"
	cfg.Query.MaxDisplayRows = 20
	return cfg
}

func writeConfigFile(t *testing.T, dir string, config athenamcp.ServerConfig) string {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal config: %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

// Note: Tests using t.Setenv() cannot use t.Parallel() in Go.

func TestLoadConfigValid(t *testing.T) {
	dir := t.TempDir()
	cfg := validServerConfig()
	path := writeConfigFile(t, dir, cfg)

	t.Setenv("ATHENA_MCP_CONFIG_PATH", path)

	loaded, err := loadServerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Athena.Region != "us-east-1" {
		t.Fatalf("expected region us-east-1, got %q", loaded.Athena.Region)
	}
	if loaded.Athena.OutputLocation != "s3://test-bucket/athena-results/" {
		t.Fatalf("expected output location, got %q", loaded.Athena.OutputLocation)
	}
	if loaded.Query.MaxDisplayRows != 20 {
		t.Fatalf("expected max_display_rows 20, got %d", loaded.Query.MaxDisplayRows)
	}
}

func TestLoadConfigMissingIsNotAnError(t *testing.T) {
	t.Setenv("ATHENA_MCP_CONFIG_PATH", "/nonexistent/path/config.json")

	loaded, err := loadServerConfig()
	if err != nil {
		t.Fatalf("missing config file should fall back to zero config, got error: %v", err)
	}
	if loaded.Athena.OutputLocation != "" {
		t.Fatalf("expected zero config, got output location %q", loaded.Athena.OutputLocation)
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{invalid json}"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	t.Setenv("ATHENA_MCP_CONFIG_PATH", path)

	_, err := loadServerConfig()
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "parse") {
		t.Fatalf("expected parse error, got %q", err.Error())
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("AWS_S3_OUTPUT_LOCATION", "s3://env-bucket/results/")
	t.Setenv("AWS_DEFAULT_REGION", "eu-central-1")
	t.Setenv("AWS_REGION", "ap-southeast-2")
	t.Setenv("AWS_PROFILE", "env-profile")
	t.Setenv("ATHENA_DEFAULT_DATABASE", "env_db")
	t.Setenv("ATHENA_MAX_DISPLAY_ROWS", "42")

	cfg := validServerConfig()
	applyEnvOverrides(&cfg)

	if cfg.Athena.OutputLocation != "s3://env-bucket/results/" {
		t.Errorf("output location = %q, want env value", cfg.Athena.OutputLocation)
	}
	// AWS_DEFAULT_REGION takes priority over AWS_REGION.
	if cfg.Athena.Region != "eu-central-1" {
		t.Errorf("region = %q, want eu-central-1", cfg.Athena.Region)
	}
	if cfg.AWS.Profile != "env-profile" {
		t.Errorf("profile = %q, want env-profile", cfg.AWS.Profile)
	}
	if cfg.Athena.DefaultDatabase != "env_db" {
		t.Errorf("default database = %q, want env_db", cfg.Athena.DefaultDatabase)
	}
	if cfg.Query.MaxDisplayRows != 42 {
		t.Errorf("max_display_rows = %d, want 42", cfg.Query.MaxDisplayRows)
	}
}

func TestApplyEnvOverrides_RegionFallback(t *testing.T) {
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("AWS_REGION", "ap-southeast-2")

	cfg := validServerConfig()
	applyEnvOverrides(&cfg)

	if cfg.Athena.Region != "ap-southeast-2" {
		t.Errorf("region = %q, want AWS_REGION fallback ap-southeast-2", cfg.Athena.Region)
	}
}

func TestApplyEnvOverrides_InvalidMaxDisplayRowsIgnored(t *testing.T) {
	t.Setenv("ATHENA_MAX_DISPLAY_ROWS", "not-a-number")

	cfg := validServerConfig()
	applyEnvOverrides(&cfg)

	if cfg.Query.MaxDisplayRows != 20 {
		t.Errorf("max_display_rows = %d, want unchanged 20", cfg.Query.MaxDisplayRows)
	}
}

func TestApplyEnvOverrides_EmptyEnvKeepsConfig(t *testing.T) {
	t.Setenv("AWS_S3_OUTPUT_LOCATION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("ATHENA_DEFAULT_DATABASE", "")

	cfg := validServerConfig()
	applyEnvOverrides(&cfg)

	if cfg.Athena.OutputLocation != "s3://test-bucket/athena-results/" {
		t.Errorf("output location = %q, want config value preserved", cfg.Athena.OutputLocation)
	}
	if cfg.Athena.Region != "us-east-1" {
		t.Errorf("region = %q, want config value preserved", cfg.Athena.Region)
	}
}

func TestClientOptions(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIAEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_SESSION_TOKEN", "token")

	cfg := validServerConfig()
	cfg.AWS.Profile = "analytics"

	opts := clientOptions(&cfg)
	if opts.AccessKeyID != "AKIAEXAMPLE" {
		t.Errorf("AccessKeyID = %q", opts.AccessKeyID)
	}
	if opts.SecretAccessKey != "secret" {
		t.Errorf("SecretAccessKey = %q", opts.SecretAccessKey)
	}
	if opts.SessionToken != "token" {
		t.Errorf("SessionToken = %q", opts.SessionToken)
	}
	if opts.Profile != "analytics" {
		t.Errorf("Profile = %q", opts.Profile)
	}
	if opts.Region != "us-east-1" {
		t.Errorf("Region = %q", opts.Region)
	}
}
