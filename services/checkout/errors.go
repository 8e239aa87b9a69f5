package checkout

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrDraftNotFound means the draft id is unknown or the draft expired;
	// the client must start over, not retry in place.
	ErrDraftNotFound = errors.New("booking draft not found or expired")
	// ErrInvalidTransition means the requested step does not follow from the
	// draft's current step.
	ErrInvalidTransition = errors.New("invalid draft step transition")
	// ErrHoldExpired means the slot hold lapsed; the draft was pushed back to
	// time selection and the slot must be re-claimed.
	ErrHoldExpired = errors.New("slot hold expired")
	// ErrIntentMismatch means a payment event referenced an intent the draft
	// does not own.
	ErrIntentMismatch = errors.New("payment intent does not match draft")
	// ErrDraftFinalized means the draft already completed and cannot change.
	ErrDraftFinalized = errors.New("draft already finalized")
	// ErrFinalizeFailed means payment was captured but the booking write
	// failed. The case is queued for manual reconciliation; it is never
	// silently dropped.
	ErrFinalizeFailed = errors.New("payment captured but booking conversion failed; queued for reconciliation")
)

// ValidationError carries per-field failure reasons so the caller can
// highlight the offending fields instead of showing one opaque message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
