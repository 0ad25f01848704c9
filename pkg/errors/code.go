package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 13000-13099: AI assistant errors
// 13100-13199: Code execution errors
// 14000-14099: Session errors
// 15000-15099: Format & lint errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	TooManyRequests     ErrorCode = 10006
	ServiceUnavailable  ErrorCode = 10007
	Timeout             ErrorCode = 10008
	RouteNotFound       ErrorCode = 10009

	// Cache errors (10200-10299)
	CacheError     ErrorCode = 10200
	CacheMiss      ErrorCode = 10201
	CacheSetFailed ErrorCode = 10202

	// Storage errors (10400-10499)
	StorageError ErrorCode = 10400

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	InvalidFormat      ErrorCode = 10301
	InvalidValue       ErrorCode = 10302
	RequiredFieldEmpty ErrorCode = 10303

	// ========== AI Assistant Errors (13000-13099) ==========

	AINotConfigured    ErrorCode = 13000
	AIRequestFailed    ErrorCode = 13001
	AIResponseInvalid  ErrorCode = 13002
	AIProviderRejected ErrorCode = 13003

	// ========== Code Execution Errors (13100-13199) ==========

	ExecutionQueueFull   ErrorCode = 13100
	ExecutionSystemError ErrorCode = 13101
	LanguageNotSupported ErrorCode = 13102
	CodeTooLarge         ErrorCode = 13103
	WorkspaceFailed      ErrorCode = 13104

	// ========== Session Errors (14000-14099) ==========

	SessionNotFound     ErrorCode = 14000
	SessionStoreFailed  ErrorCode = 14001
	SessionArchiveError ErrorCode = 14002

	// ========== Format Errors (15000-15099) ==========

	FormatFailed ErrorCode = 15000
	LintFailed   ErrorCode = 15001
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	TooManyRequests:     "Too many requests. Please try again later.",
	ServiceUnavailable:  "Service temporarily unavailable",
	Timeout:             "Request timeout",
	RouteNotFound:       "Route not found",

	// Cache
	CacheError:     "Cache operation failed",
	CacheMiss:      "Cache miss",
	CacheSetFailed: "Failed to set cache",

	// Storage
	StorageError: "Object storage operation failed",

	// Validation
	ValidationFailed:   "Validation failed",
	InvalidFormat:      "Invalid format",
	InvalidValue:       "Invalid value",
	RequiredFieldEmpty: "Required field is empty",

	// AI
	AINotConfigured:    "AI API configuration is missing",
	AIRequestFailed:    "AI API request failed",
	AIResponseInvalid:  "Failed to parse AI response",
	AIProviderRejected: "AI API returned an error status",

	// Execution
	ExecutionQueueFull:   "Execution queue is full, please try again later",
	ExecutionSystemError: "Code execution system error",
	LanguageNotSupported: "Programming language not supported",
	CodeTooLarge:         "Code is too large",
	WorkspaceFailed:      "Failed to prepare execution workspace",

	// Session
	SessionNotFound:     "Session not found",
	SessionStoreFailed:  "Session storage failed",
	SessionArchiveError: "Failed to archive session",

	// Format
	FormatFailed: "Failed to format code",
	LintFailed:   "Failed to lint code",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// String returns the stable string identifier clients see in the
// response envelope.
func (c ErrorCode) String() string {
	switch c {
	case AINotConfigured:
		return "AI_NOT_CONFIGURED"
	case ExecutionQueueFull:
		return "EXECUTION_QUEUE_FULL"
	case SessionNotFound:
		return "SESSION_NOT_FOUND"
	case TooManyRequests:
		return "TOO_MANY_REQUESTS"
	case RouteNotFound:
		return "ROUTE_NOT_FOUND"
	}
	switch c.HTTPStatus() {
	case 400:
		return "VALIDATION_ERROR"
	case 404:
		return "NOT_FOUND"
	case 503:
		return "SERVICE_UNAVAILABLE"
	case 200:
		return "OK"
	}
	return "INTERNAL_ERROR"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c == NotFound, c == RouteNotFound, c == SessionNotFound:
		return 404
	case c == TooManyRequests:
		return 429
	case c == ServiceUnavailable, c == AINotConfigured, c == ExecutionQueueFull:
		return 503
	case c == Timeout:
		return 504
	case c >= 10300 && c < 10400: // Validation errors
		return 400
	case c == InvalidParams, c == LanguageNotSupported, c == CodeTooLarge:
		return 400
	default:
		return 500
	}
}
