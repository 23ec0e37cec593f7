package manifest

import "errors"

// Sentinel errors for the manifest package
var (
	// ErrNoJobs indicates the manifest has no jobs defined
	ErrNoJobs = errors.New("manifest must contain at least one job")

	// ErrUnknownKind indicates a job kind outside Kinds
	ErrUnknownKind = errors.New("unknown job kind")

	// ErrMissingField indicates a job lacks a field its kind requires
	ErrMissingField = errors.New("missing required field")

	// ErrNoBaseURL indicates repository jobs without an installation URL
	ErrNoBaseURL = errors.New("base_url is required for repository jobs")

	// ErrInvalidFormat indicates the manifest file is not valid YAML or JSON
	ErrInvalidFormat = errors.New("manifest must be valid YAML or JSON")

	// ErrFileNotFound indicates the manifest file does not exist
	ErrFileNotFound = errors.New("manifest file not found")

	// ErrUnsupportedExt indicates an unsupported file extension
	ErrUnsupportedExt = errors.New("unsupported file extension (use .yaml, .yml, or .json)")
)
