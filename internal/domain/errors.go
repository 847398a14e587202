package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. Callers classify
// with errors.Is after unwrapping.

var (
	// Award errors — fatal for a single AwardPoints call, no partial writes.
	ErrInvalidActivityType = errors.New("unknown activity type")
	ErrAccountNotFound     = errors.New("account not found")
	ErrMalformedMetadata   = errors.New("metadata does not match activity type")

	// Account errors
	ErrAccountExists = errors.New("account already exists")

	// Storage errors
	ErrConcurrentUpdate = errors.New("account modified concurrently — retry read-modify-write")

	// Recommendation errors — per-candidate, non-fatal: the failed type is
	// skipped and the call still succeeds.
	ErrContentGeneration = errors.New("content generation failed")
)
