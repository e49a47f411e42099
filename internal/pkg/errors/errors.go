package errors

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalid       = errors.New("invalid")
	ErrConflict      = errors.New("conflict")
	ErrTooMany       = errors.New("too many requests")
	ErrInternal      = errors.New("internal")
	ErrEmptyRepo     = errors.New("repository has no ingestable content")
	ErrIngestRunning = errors.New("ingestion already running for repository")
)
