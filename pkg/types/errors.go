package types

import "errors"

// Error kinds shared across pipeline stages. Stages wrap these with
// fmt.Errorf("...: %w", ...) so callers can classify failures with errors.Is.
var (
	// ErrAuth means the forum collaborator rejected our credentials.
	// Nothing downstream can proceed, so the driver aborts the run.
	ErrAuth = errors.New("authentication failed")

	// ErrTransient covers network, timeout and rate-limit failures on a
	// single call. Stages recover from it locally with a safe default.
	ErrTransient = errors.New("transient call failure")

	// ErrIntegrity marks records that reference data missing from the
	// current corpus or artifacts missing required fields.
	ErrIntegrity = errors.New("data integrity error")

	// ErrContract marks caller contract violations (bad batch size,
	// out-of-range theme index). Raised before any side effect.
	ErrContract = errors.New("caller contract violation")

	// ErrPersist means an artifact could not be durably written.
	ErrPersist = errors.New("persistence failure")
)
