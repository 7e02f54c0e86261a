package store

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound         = errors.New("document not found")
	ErrDocumentTooLarge = errors.New("document exceeds size limit")
	ErrSchemaViolation  = errors.New("document failed schema validation")
)
