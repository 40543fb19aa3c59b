package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by agents.
const (
	// Playbook errors
	ErrPlaybookNotFound     = "PLAYBOOK_NOT_FOUND"
	ErrPlaybookNotSpecified = "PLAYBOOK_NOT_SPECIFIED"
	ErrConfigInvalid        = "CONFIG_INVALID"

	// Command file errors
	ErrCommandNotFound = "COMMAND_NOT_FOUND"
	ErrCommandInvalid  = "COMMAND_INVALID"

	// File errors
	ErrFileNotFound   = "FILE_NOT_FOUND"
	ErrFileExists     = "FILE_EXISTS"
	ErrFileReadError  = "FILE_READ_ERROR"
	ErrFileWriteError = "FILE_WRITE_ERROR"

	// Validation errors
	ErrValidationFailed = "VALIDATION_FAILED"
	ErrInvalidValue     = "INVALID_VALUE"

	// Git errors
	ErrGitUnavailable = "GIT_UNAVAILABLE"
	ErrGitDirtyTree   = "GIT_DIRTY_TREE"

	// Metadata errors
	ErrMetadataNotFound = "METADATA_NOT_FOUND"
	ErrMetadataInvalid  = "METADATA_INVALID"

	// Evolution errors
	ErrCycleNotFound    = "CYCLE_NOT_FOUND"
	ErrSnapshotNotFound = "SNAPSHOT_NOT_FOUND"

	// Database errors
	ErrDatabaseError = "DATABASE_ERROR"

	// Input errors
	ErrInvalidInput         = "INVALID_INPUT"
	ErrMissingArgument      = "MISSING_ARGUMENT"
	ErrConfirmationRequired = "CONFIRMATION_REQUIRED"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues.
const (
	WarnFileSkipped  = "FILE_SKIPPED"
	WarnGitDegraded  = "GIT_DEGRADED"
	WarnStaleReview  = "STALE_REVIEW"
	WarnMissingField = "MISSING_REQUIRED_FIELD"
)
