package utils

import (
	"fmt"

	"github.com/dl-alexandre/gdm/internal/types"
)

// Exit codes
const (
	ExitSuccess = 0
	// Auth errors (10-19)
	ExitAuthRequired      = 10
	ExitAuthExpired       = 11
	ExitAuthInvalid       = 12
	ExitScopeInsufficient = 13
	// File operation errors (20-29)
	ExitFileNotFound     = 20
	ExitPermissionDenied = 21
	ExitQuotaExceeded    = 22
	// Network errors (30-39)
	ExitNetworkError = 30
	ExitTimeout      = 31
	ExitRateLimited  = 32
	// Validation errors (40-49)
	ExitInvalidArgument = 40
	ExitInvalidPath     = 41
	ExitAmbiguousPath   = 42
	// Policy errors (50-59)
	ExitPolicyViolation = 50
	// Partial failures
	ExitMirrorPartialFailure = 60
	// Unknown
	ExitUnknown = 99
	// Interrupted by the user, following shell convention
	ExitCancelled = 130
)

// Error codes (tool-owned, stable)
const (
	ErrCodeAuthRequired         = "AUTH_REQUIRED"
	ErrCodeAuthExpired          = "AUTH_EXPIRED"
	ErrCodeAuthClientMissing    = "AUTH_CLIENT_MISSING"
	ErrCodeScopeInsufficient    = "SCOPE_INSUFFICIENT"
	ErrCodeFileNotFound         = "FILE_NOT_FOUND"
	ErrCodePermissionDenied     = "PERMISSION_DENIED"
	ErrCodeQuotaExceeded        = "QUOTA_EXCEEDED"
	ErrCodeNetworkError         = "NETWORK_ERROR"
	ErrCodeTimeout              = "TIMEOUT"
	ErrCodeRateLimited          = "RATE_LIMITED"
	ErrCodeInvalidArgument      = "INVALID_ARGUMENT"
	ErrCodeInvalidPath          = "INVALID_PATH"
	ErrCodeAmbiguousPath        = "AMBIGUOUS_PATH"
	ErrCodePolicyViolation      = "POLICY_VIOLATION"
	ErrCodeMirrorPartialFailure = "MIRROR_PARTIAL_FAILURE"
	ErrCodeCancelled            = "CANCELLED"
	ErrCodeUnknown              = "UNKNOWN"
)

// CLIErrorBuilder helps construct CLIError instances
type CLIErrorBuilder struct {
	err types.CLIError
}

// NewCLIError creates a new error builder
func NewCLIError(code, message string) *CLIErrorBuilder {
	return &CLIErrorBuilder{
		err: types.CLIError{
			Code:    code,
			Message: message,
		},
	}
}

func (b *CLIErrorBuilder) WithHTTPStatus(status int) *CLIErrorBuilder {
	b.err.HTTPStatus = status
	return b
}

func (b *CLIErrorBuilder) WithDriveReason(reason string) *CLIErrorBuilder {
	b.err.DriveReason = reason
	return b
}

func (b *CLIErrorBuilder) WithRetryable(retryable bool) *CLIErrorBuilder {
	b.err.Retryable = retryable
	return b
}

func (b *CLIErrorBuilder) WithContext(key string, value interface{}) *CLIErrorBuilder {
	if b.err.Context == nil {
		b.err.Context = make(map[string]interface{})
	}
	b.err.Context[key] = value
	return b
}

func (b *CLIErrorBuilder) Build() types.CLIError {
	return b.err
}

// GetExitCode returns the exit code for an error code
func GetExitCode(errorCode string) int {
	mapping := map[string]int{
		ErrCodeAuthRequired:         ExitAuthRequired,
		ErrCodeAuthExpired:          ExitAuthExpired,
		ErrCodeAuthClientMissing:    ExitAuthRequired,
		ErrCodeScopeInsufficient:    ExitScopeInsufficient,
		ErrCodeFileNotFound:         ExitFileNotFound,
		ErrCodePermissionDenied:     ExitPermissionDenied,
		ErrCodeQuotaExceeded:        ExitQuotaExceeded,
		ErrCodeNetworkError:         ExitNetworkError,
		ErrCodeTimeout:              ExitTimeout,
		ErrCodeRateLimited:          ExitRateLimited,
		ErrCodeInvalidArgument:      ExitInvalidArgument,
		ErrCodeInvalidPath:          ExitInvalidPath,
		ErrCodeAmbiguousPath:        ExitAmbiguousPath,
		ErrCodePolicyViolation:      ExitPolicyViolation,
		ErrCodeMirrorPartialFailure: ExitMirrorPartialFailure,
		ErrCodeCancelled:            ExitCancelled,
	}
	if code, ok := mapping[errorCode]; ok {
		return code
	}
	return ExitUnknown
}

// AppError is a custom error type that carries CLI error info
type AppError struct {
	CLIError types.CLIError
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.CLIError.Code, e.CLIError.Message)
}

// NewAppError creates an AppError from a CLIError
func NewAppError(cliErr types.CLIError) *AppError {
	return &AppError{CLIError: cliErr}
}
