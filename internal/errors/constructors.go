package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *PublishError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *PublishError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *PublishError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Content errors

func ContentParseError(path string, cause error) *PublishError {
	return Wrap(cause, CategoryContent, SeverityError, "content file could not be parsed").
		WithContext("path", path)
}

// Build pipeline errors

func BuildFailed(cause error) *PublishError {
	return Wrap(cause, CategoryBuild, SeverityFatal, "site build failed")
}

func HugoExecutionError(cause error) *PublishError {
	return Wrap(cause, CategoryHugo, SeverityFatal, "hugo execution failed")
}

func WorkspaceError(operation string, cause error) *PublishError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "workspace operation failed").
		WithContext("operation", operation)
}

// LocalFileError marks a staging file that could not be read. Retrying a
// transfer cannot fix a missing or unreadable local file.
func LocalFileError(path string, cause error) *PublishError {
	return Wrap(cause, CategoryFileSystem, SeverityError, "local file unavailable").
		WithContext("path", path)
}

// Transport errors

func DialError(host string, cause error) *PublishError {
	return WrapRetryable(cause, CategoryTransport, SeverityError, "ssh connection failed").
		WithContext("host", host)
}

func TransferError(path string, cause error) *PublishError {
	return WrapRetryable(cause, CategoryTransport, SeverityWarning, "file transfer failed").
		WithContext("path", path)
}

// Internal errors

func InternalError(message string, cause error) *PublishError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
