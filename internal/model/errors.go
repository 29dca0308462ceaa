package model

import "errors"

var (
	// ErrRequestBuild: preferences cannot form a request (non-finite or non-positive numbers, unknown profile).
	ErrRequestBuild = errors.New("invalid analysis request")
	// ErrExternalCapability: the provider call itself failed.
	ErrExternalCapability = errors.New("analysis provider failed")
	// ErrSchemaViolation: a response arrived but is not JSON or misses required fields.
	ErrSchemaViolation = errors.New("analysis response violates schema")
	// ErrPersistenceCorruption: the stored history could not be decoded.
	ErrPersistenceCorruption = errors.New("stored history is corrupt")

	ErrAnalysisInProgress    = errors.New("analysis already in progress")
	ErrHistoryNotFound       = errors.New("history entry not found")
	ErrDuplicateHistoryEntry = errors.New("history entry already exists")
)

// AnalysisFailedMessage is the only failure text shown to users; causes are logged.
const AnalysisFailedMessage = "Analysis failed. Please check market connection."
