package heuristics

import "errors"

// Whole-input failures. Per-row anomalies are repaired during
// normalization and never surface as errors.
var (
	// ErrSchemaMissing means a required column could not be resolved
	// after normalization. Raised by the ingestion surface, not by the
	// core itself.
	ErrSchemaMissing = errors.New("required column missing after normalization")

	// ErrDetectorInternal marks an unexpected invariant violation inside
	// a detector. The analysis proceeds with the remaining detectors and
	// the summary records the degraded state.
	ErrDetectorInternal = errors.New("detector internal fault")
)
