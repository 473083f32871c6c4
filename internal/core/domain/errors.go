package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFileType indicates no parser handles the format.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrParseFailure indicates a source file is unreadable or corrupt.
	// The document is recorded as failed and excluded; the batch continues.
	ErrParseFailure = errors.New("parse failure")

	// ErrDetectionTimeout indicates an external OCR or LLM capability
	// exceeded its deadline. Recoverable: the pipeline falls back to a
	// heuristic where one exists.
	ErrDetectionTimeout = errors.New("detection timeout")

	// ErrSchemaViolation indicates a pipeline component broke its
	// contract: out-of-enum value or an inapplicable sub-profile.
	// Fatal for the document, never coerced.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrQuotaDeficit indicates sampling could not meet a requested
	// quota after backfill. Reported in the manifest, not raised as a
	// failure; generation proceeds with the shortfall explicit.
	ErrQuotaDeficit = errors.New("quota deficit")

	// ErrOCRUnavailable indicates no OCR capability is configured.
	// Image-table probing degrades to the geometric heuristic.
	ErrOCRUnavailable = errors.New("OCR service unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Layout classification falls back to the geometric strategy.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
