package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeValidation         ErrorCode = "COMMON_008"
	ErrCodeSerialization      ErrorCode = "COMMON_009"
	ErrCodeDatabaseError      ErrorCode = "COMMON_010"
	ErrCodeCacheError         ErrorCode = "COMMON_011"
	ErrCodeExternalService    ErrorCode = "COMMON_012"
	ErrCodeNotImplemented     ErrorCode = "COMMON_013"
)

// Keyword Module Error Codes
const (
	ErrCodeKeywordInvalid        ErrorCode = "KW_001"
	ErrCodeKeywordNotFound       ErrorCode = "KW_002"
	ErrCodeMetricsUnavailable    ErrorCode = "KW_003"
	ErrCodeClusteringFailed      ErrorCode = "KW_004"
	ErrCodeOpportunityIncomplete ErrorCode = "KW_005"
)

// Research Run Error Codes
const (
	ErrCodeRunNotFound          ErrorCode = "RUN_001"
	ErrCodeRunInvalidTransition ErrorCode = "RUN_002"
	ErrCodeRunAlreadyTerminal   ErrorCode = "RUN_003"
	ErrCodeRunTimeout           ErrorCode = "RUN_004"
	ErrCodeRunPipelineFailed    ErrorCode = "RUN_005"
)

// Data Source Error Codes
const (
	ErrCodeDataSourceUnavailable ErrorCode = "SRC_001"
	ErrCodeDataSourceRateLimited ErrorCode = "SRC_002"
	ErrCodeDataSourceParseError  ErrorCode = "SRC_003"
)

// AI/ML Error Codes
const (
	ErrCodeAIModelNotAvailable  ErrorCode = "AI_001"
	ErrCodeAIInferenceFailed    ErrorCode = "AI_002"
	ErrCodeAIResponseUnparsable ErrorCode = "AI_003"
	ErrCodeEmbeddingFailed      ErrorCode = "AI_004"
)

// CodeOK marks the absence of an error for metric labels.
const CodeOK = ErrorCode("OK")

// CodeUnknown is returned when no AppError is found in an error chain.
const CodeUnknown = ErrCodeInternal

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeKeywordInvalid:        http.StatusBadRequest,
	ErrCodeKeywordNotFound:       http.StatusNotFound,
	ErrCodeMetricsUnavailable:    http.StatusInternalServerError,
	ErrCodeClusteringFailed:      http.StatusInternalServerError,
	ErrCodeOpportunityIncomplete: http.StatusUnprocessableEntity,

	ErrCodeRunNotFound:          http.StatusNotFound,
	ErrCodeRunInvalidTransition: http.StatusConflict,
	ErrCodeRunAlreadyTerminal:   http.StatusConflict,
	ErrCodeRunTimeout:           http.StatusGatewayTimeout,
	ErrCodeRunPipelineFailed:    http.StatusInternalServerError,

	ErrCodeDataSourceUnavailable: http.StatusServiceUnavailable,
	ErrCodeDataSourceRateLimited: http.StatusTooManyRequests,
	ErrCodeDataSourceParseError:  http.StatusBadGateway,

	ErrCodeAIModelNotAvailable:  http.StatusServiceUnavailable,
	ErrCodeAIInferenceFailed:    http.StatusInternalServerError,
	ErrCodeAIResponseUnparsable: http.StatusBadGateway,
	ErrCodeEmbeddingFailed:      http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeKeywordInvalid:        "invalid keyword",
	ErrCodeKeywordNotFound:       "keyword not found",
	ErrCodeMetricsUnavailable:    "keyword metrics unavailable",
	ErrCodeClusteringFailed:      "keyword clustering failed",
	ErrCodeOpportunityIncomplete: "opportunity score requires volume and difficulty",

	ErrCodeRunNotFound:          "research run not found",
	ErrCodeRunInvalidTransition: "invalid research run status transition",
	ErrCodeRunAlreadyTerminal:   "research run is in a terminal state",
	ErrCodeRunTimeout:           "research run exceeded its deadline",
	ErrCodeRunPipelineFailed:    "research pipeline failed",

	ErrCodeDataSourceUnavailable: "data source unavailable",
	ErrCodeDataSourceRateLimited: "data source rate limited",
	ErrCodeDataSourceParseError:  "failed to parse data source response",

	ErrCodeAIModelNotAvailable:  "AI model not available",
	ErrCodeAIInferenceFailed:    "AI inference failed",
	ErrCodeAIResponseUnparsable: "AI response could not be parsed",
	ErrCodeEmbeddingFailed:      "embedding generation failed",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
