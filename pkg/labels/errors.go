package labels

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
)

// ErrorType represents different categories of GitHub API errors
type ErrorType string

const (
	ErrorTypeAuth       ErrorType = "authentication"
	ErrorTypePermission ErrorType = "permission"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeRateLimit  ErrorType = "rate_limit"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// TransportError represents a failed call to the GitHub API
type TransportError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Cause     error     `json:"-"`
	Resource  string    `json:"resource,omitempty"`
	Field     string    `json:"field,omitempty"`
	Code      string    `json:"code,omitempty"`
	Retryable bool      `json:"retryable"`
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s error for %s: %s", e.Type, e.Resource, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether the error is retryable
func (e *TransportError) IsRetryable() bool {
	return e.Retryable
}

// NewTransportError creates a new TransportError with the specified type and message
func NewTransportError(errorType ErrorType, message string, cause error) *TransportError {
	return &TransportError{
		Type:      errorType,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryableErrorType(errorType),
	}
}

// WrapTransportError wraps a GitHub API error into a TransportError
func WrapTransportError(err error, resource string) *TransportError {
	if err == nil {
		return nil
	}

	var tErr *TransportError
	if errors.As(err, &tErr) {
		if tErr.Resource == "" {
			tErr.Resource = resource
		}
		return tErr
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &TransportError{
			Type:      ErrorTypeRateLimit,
			Message:   fmt.Sprintf("Rate limit exceeded. Reset at %v", rateErr.Rate.Reset.Time),
			Cause:     err,
			Resource:  resource,
			Retryable: true,
		}
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &TransportError{
			Type:      ErrorTypeRateLimit,
			Message:   "Secondary rate limit triggered. Please wait before retrying",
			Cause:     err,
			Resource:  resource,
			Retryable: true,
		}
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return parseGitHubAPIError(ghErr, resource)
	}

	if isNetworkError(err) {
		return &TransportError{
			Type:      ErrorTypeNetwork,
			Message:   "Network error occurred. Please check your connection and try again",
			Cause:     err,
			Resource:  resource,
			Retryable: true,
		}
	}

	return &TransportError{
		Type:      ErrorTypeUnknown,
		Message:   err.Error(),
		Cause:     err,
		Resource:  resource,
		Retryable: false,
	}
}

// parseGitHubAPIError parses GitHub API error responses into structured errors
func parseGitHubAPIError(ghErr *github.ErrorResponse, resource string) *TransportError {
	baseErr := &TransportError{
		Resource: resource,
		Cause:    ghErr,
	}

	switch ghErr.Response.StatusCode {
	case http.StatusUnauthorized:
		baseErr.Type = ErrorTypeAuth
		baseErr.Message = "Authentication failed. Please check your GitHub token"

	case http.StatusForbidden:
		if strings.Contains(strings.ToLower(ghErr.Message), "rate limit") {
			baseErr.Type = ErrorTypeRateLimit
			baseErr.Message = "GitHub API rate limit exceeded. Please wait before retrying"
			baseErr.Retryable = true
		} else {
			baseErr.Type = ErrorTypePermission
			baseErr.Message = "Insufficient permissions. The token needs write access to issues (repo or public_repo scope)"
		}

	case http.StatusNotFound:
		baseErr.Type = ErrorTypeNotFound
		switch {
		case strings.HasPrefix(resource, "label"):
			baseErr.Message = "Label not found"
		case strings.HasPrefix(resource, "file"):
			baseErr.Message = "File not found at the requested ref"
		default:
			baseErr.Message = "Repository not found. Check the repository name and your access permissions"
		}

	case http.StatusConflict:
		baseErr.Type = ErrorTypeConflict
		baseErr.Message = "Resource conflict occurred"

	case http.StatusUnprocessableEntity:
		baseErr.Type = ErrorTypeValidation
		baseErr.Message = "Validation failed"

		if len(ghErr.Errors) > 0 {
			var validationErrors []string
			for _, e := range ghErr.Errors {
				if e.Field != "" {
					validationErrors = append(validationErrors, fmt.Sprintf("%s: %s", e.Field, strings.TrimSpace(e.Code+" "+e.Message)))
					if baseErr.Field == "" {
						baseErr.Field = e.Field
						baseErr.Code = e.Code
					}
				} else {
					validationErrors = append(validationErrors, e.Message)
				}
			}
			baseErr.Message = fmt.Sprintf("Validation failed: %s", strings.Join(validationErrors, "; "))
		}
		// An existing label with the same name is reported as a 422 already_exists
		if baseErr.Code == "already_exists" {
			baseErr.Type = ErrorTypeConflict
		}

	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		baseErr.Type = ErrorTypeNetwork
		baseErr.Message = "GitHub API is temporarily unavailable. Please try again later"
		baseErr.Retryable = true

	default:
		baseErr.Type = ErrorTypeUnknown
		baseErr.Message = ghErr.Message
		baseErr.Retryable = ghErr.Response.StatusCode >= 500
	}

	return baseErr
}

// isNetworkError checks if an error is a network-related error
func isNetworkError(err error) bool {
	errStr := strings.ToLower(err.Error())
	networkKeywords := []string{
		"connection refused",
		"connection reset",
		"connection timeout",
		"network is unreachable",
		"no such host",
		"timeout",
		"dial tcp",
		"i/o timeout",
		"eof",
	}

	for _, keyword := range networkKeywords {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

// isRetryableErrorType determines if an error type is generally retryable
func isRetryableErrorType(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeRateLimit, ErrorTypeNetwork:
		return true
	default:
		return false
	}
}

// RetryConfig defines configuration for retry logic
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	// MaxRateLimitWait caps how long a rate limit reset is waited for
	MaxRateLimitWait time.Duration
}

// DefaultRetryConfig returns a default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:       3,
		InitialDelay:     time.Second,
		MaxDelay:         30 * time.Second,
		BackoffFactor:    2.0,
		MaxRateLimitWait: 5 * time.Minute,
	}
}

// RetryableOperation represents an operation that can be retried
type RetryableOperation func() error

// WithRetry executes an operation, retrying retryable TransportErrors with backoff
func WithRetry(ctx context.Context, operation RetryableOperation, config *RetryConfig) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := delay
			if rateWait, ok := rateLimitWait(lastErr, config.MaxRateLimitWait); ok {
				wait = rateWait
			} else {
				delay = time.Duration(float64(delay) * config.BackoffFactor)
				if delay > config.MaxDelay {
					delay = config.MaxDelay
				}
			}
			if err := sleepContext(ctx, wait); err != nil {
				return err
			}
		}

		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		var tErr *TransportError
		if !errors.As(err, &tErr) || !tErr.IsRetryable() {
			return err
		}
	}

	return fmt.Errorf("operation failed after %d retries: %w", config.MaxRetries, lastErr)
}

// rateLimitWait returns the time until a primary rate limit resets
func rateLimitWait(err error, limit time.Duration) (time.Duration, bool) {
	var rateErr *github.RateLimitError
	if err == nil || !errors.As(err, &rateErr) {
		return 0, false
	}
	wait := time.Until(rateErr.Rate.Reset.Time)
	if wait <= 0 || wait > limit {
		return 0, false
	}
	return wait, true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ConfigError represents an invalid label document
type ConfigError struct {
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("config error for field '%s' (value: %s): %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("config error for field '%s': %s", e.Field, e.Message)
}

// ConfigErrors collects every problem found in a label document
type ConfigErrors []ConfigError

// Error implements the error interface
func (e ConfigErrors) Error() string {
	if len(e) == 0 {
		return "invalid label configuration"
	}

	if len(e) == 1 {
		return e[0].Error()
	}

	messages := make([]string, 0, len(e))
	for i := range e {
		messages = append(messages, e[i].Error())
	}
	return fmt.Sprintf("invalid label configuration with %d errors: %s", len(e), strings.Join(messages, "; "))
}

// Add adds a config error to the collection
func (e *ConfigErrors) Add(field, value, message string) {
	*e = append(*e, ConfigError{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

// HasErrors returns true if there are config errors
func (e ConfigErrors) HasErrors() bool {
	return len(e) > 0
}

// IsConfigError reports whether err is, or wraps, a ConfigError or ConfigErrors
func IsConfigError(err error) bool {
	var single *ConfigError
	var multi ConfigErrors
	return errors.As(err, &single) || errors.As(err, &multi)
}

// FailedOperation pairs an operation with the error it produced
type FailedOperation struct {
	Operation Operation `json:"operation"`
	Err       error     `json:"-"`
}

// PartialFailureError reports operations that failed while others succeeded
type PartialFailureError struct {
	Succeeded []Operation       `json:"succeeded"`
	Failed    []FailedOperation `json:"failed"`
	Message   string            `json:"message"`
}

// Error implements the error interface
func (e *PartialFailureError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return fmt.Sprintf("partial failure: %d succeeded, %d failed", len(e.Succeeded), len(e.Failed))
}

// NewPartialFailureError creates a new partial failure error
func NewPartialFailureError(succeeded []Operation, failed []FailedOperation) *PartialFailureError {
	details := make([]string, 0, len(failed))
	for _, f := range failed {
		details = append(details, fmt.Sprintf("%s: %v", f.Operation, f.Err))
	}
	message := fmt.Sprintf("label sync completed with failures: %d operations succeeded, %d failed (%s)",
		len(succeeded), len(failed), strings.Join(details, "; "))

	return &PartialFailureError{
		Succeeded: succeeded,
		Failed:    failed,
		Message:   message,
	}
}

// GetFailedOperations returns descriptions of the failed operations in plan order
func (e *PartialFailureError) GetFailedOperations() []string {
	operations := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		operations = append(operations, f.Operation.String())
	}
	return operations
}

// GetSucceededOperations returns descriptions of the succeeded operations in plan order
func (e *PartialFailureError) GetSucceededOperations() []string {
	operations := make([]string, 0, len(e.Succeeded))
	for _, op := range e.Succeeded {
		operations = append(operations, op.String())
	}
	return operations
}
