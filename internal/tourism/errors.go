package tourism

import "errors"

// Sentinel errors for the ingestion boundary. Handlers map these onto
// HTTP statuses; everything below the boundary only wraps them.
var (
	// ErrNotReady means no upstream fetch has ever succeeded.
	ErrNotReady = errors.New("dataset not ready")

	// ErrInvalidEnvelope means the upstream payload is structurally
	// unusable: rows is not an array, or nothing survives normalization.
	ErrInvalidEnvelope = errors.New("invalid envelope shape")

	// ErrUpstreamFetch wraps a failed origin fetch.
	ErrUpstreamFetch = errors.New("upstream fetch failed")
)
