// Package s3loc validates the S3 output location Athena writes query
// results to. Validation runs before every query submission.
package s3loc

import (
	"fmt"
	"strings"
)

const scheme = "s3://"

const example = "Example: s3://your-bucket/athena-results/"

// Reason classifies the outcome of a location check.
type Reason int

const (
	Valid Reason = iota
	Missing
	WrongScheme
	EmptyBucket
)

// Check validates an S3 output location. Rules are applied in order:
// empty → Missing, no s3:// prefix → WrongScheme, nothing between the
// prefix and the first path separator → EmptyBucket.
func Check(location string) Reason {
	if location == "" {
		return Missing
	}
	if !strings.HasPrefix(location, scheme) {
		return WrongScheme
	}
	bucket, _, _ := strings.Cut(location[len(scheme):], "/")
	if bucket == "" {
		return EmptyBucket
	}
	return Valid
}

// ErrorMessage returns the user-facing message for an invalid location,
// including a corrective example. Returns "" for a valid location.
func ErrorMessage(location string) string {
	switch Check(location) {
	case Missing:
		return "Error: AWS_S3_OUTPUT_LOCATION is required to execute queries. " +
			"Please configure it in your MCP settings.\n\n" + example
	case WrongScheme:
		return fmt.Sprintf("Error: AWS_S3_OUTPUT_LOCATION must start with 's3://'. "+
			"Current value: %q\n\n%s", location, example)
	case EmptyBucket:
		return fmt.Sprintf("Error: invalid AWS_S3_OUTPUT_LOCATION format: %q\n\n%s", location, example)
	default:
		return ""
	}
}
