package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrUnavailable     ErrorCode = "service_unavailable"

	// Process configuration errors
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrParseFlags      ErrorCode = "parse_flags_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"

	// Settings errors
	ErrInvalidConfig ErrorCode = "invalid_configuration"
	ErrReadConfig    ErrorCode = "read_config_failed"
	ErrWriteConfig   ErrorCode = "settings_write_failed"
	ErrMigrateConfig ErrorCode = "settings_migration_failed"
	ErrUnknownKey    ErrorCode = "settings_unknown_key"
	ErrUnknownAction ErrorCode = "settings_unknown_action"

	// Singleton errors
	ErrAlreadyRunning ErrorCode = "already_running"
	ErrLockFile       ErrorCode = "lock_file_failed"

	// Lifecycle errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"
	ErrSuspendResume  ErrorCode = "suspend_resume_detected"

	// Sampler errors
	ErrSamplerRunning ErrorCode = "sampler_already_running"

	// Presentation errors
	ErrPresentFailed ErrorCode = "present_failed"
	ErrLoadSprites   ErrorCode = "load_sprites_failed"

	// Observability errors
	ErrServeMetrics ErrorCode = "serve_metrics_failed"
)

var errorMessages = map[ErrorCode]string{
	ErrInternal:        "Internal error occurred",
	ErrInvalidArgument: "Invalid argument provided",
	ErrUnavailable:     "Service unavailable",
	ErrBindFlags:       "Failed to bind flags",
	ErrParseFlags:      "Failed to parse flags",
	ErrInvalidInterval: "Invalid interval value",
	ErrInvalidConfig:   "Invalid configuration",
	ErrReadConfig:      "Failed to read configuration",
	ErrWriteConfig:     "Failed to write configuration",
	ErrMigrateConfig:   "Failed to migrate legacy configuration",
	ErrUnknownKey:      "Unknown settings key",
	ErrUnknownAction:   "Unknown settings action",
	ErrAlreadyRunning:  "Another instance is already running",
	ErrLockFile:        "Lock file operation failed",
	ErrInitFailed:      "Initialization failed",
	ErrShutdownFailed:  "Shutdown failed",
	ErrSuspendResume:   "Suspend/resume detected",
	ErrSamplerRunning:  "Sampler already started",
	ErrPresentFailed:   "Failed to present frame",
	ErrLoadSprites:     "Failed to load sprites",
	ErrServeMetrics:    "Failed to serve metrics",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
