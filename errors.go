package athenamcp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/smithy-go"
)

// ConfigurationError reports a user-correctable configuration problem
// (missing/malformed output location, service not initialized). Message is
// the full user-facing text, including a corrective example where one exists.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// CredentialsError reports that AWS rejected or could not find credentials.
type CredentialsError struct {
	Err error
}

func (e *CredentialsError) Error() string {
	return fmt.Sprintf("AWS credentials not found or incomplete: %v", e.Err)
}

func (e *CredentialsError) Unwrap() error { return e.Err }

// ServiceError reports a failed AWS API call with the provider error code
// and message surfaced verbatim.
type ServiceError struct {
	Op      string
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("AWS error (%s): %s", e.Code, e.Message)
}

// QueryExecutionError reports a query that reached a terminal non-success
// state. Reason is the service-reported state change reason.
type QueryExecutionError struct {
	QueryID string
	State   string
	Reason  string
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("query %s %s: %s", e.QueryID, strings.ToLower(e.State), e.Reason)
}

// QueryTimeoutError reports a query abandoned because its poll ceiling was
// reached before the service resolved it. The query itself keeps running in
// Athena under the given execution id.
type QueryTimeoutError struct {
	QueryID string
	MaxWait time.Duration
}

func (e *QueryTimeoutError) Error() string {
	return fmt.Sprintf("query %s timed out: no terminal state after %s", e.QueryID, e.MaxWait)
}

// ToolNotFoundError reports a dispatch for a tool that does not exist.
type ToolNotFoundError struct {
	Name string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found", e.Name)
}

// ArgumentError reports a missing or invalid tool argument, detected before
// any remote call.
type ArgumentError struct {
	Tool     string
	Argument string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("tool %q: missing required argument %q", e.Tool, e.Argument)
}

// credentialCodes are API error codes that indicate a credential problem
// rather than a generic service failure.
var credentialCodes = map[string]bool{
	"UnrecognizedClientException": true,
	"InvalidSignatureException":   true,
	"ExpiredTokenException":       true,
	"InvalidClientTokenId":        true,
}

// classifyAWSError converts an error from an AWS API call into the taxonomy:
// CredentialsError, ServiceError, or a wrapped unexpected error.
func classifyAWSError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		if credentialCodes[code] {
			return &CredentialsError{Err: err}
		}
		return &ServiceError{Op: op, Code: code, Message: apiErr.ErrorMessage()}
	}
	// Client-side credential resolution failures never reach the wire and
	// carry no API error code.
	msg := err.Error()
	if strings.Contains(msg, "failed to retrieve credentials") ||
		strings.Contains(msg, "no EC2 IMDS role found") ||
		strings.Contains(msg, "static credentials are empty") {
		return &CredentialsError{Err: err}
	}
	return fmt.Errorf("unexpected error in %s: %w", op, err)
}
