// Package meta holds build metadata shared by the CLI subcommands.
package meta

// Version is the athena-mcp release version.
const Version = "1.0.0"
