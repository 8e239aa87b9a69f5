package reservation

import "errors"

// Expected, recoverable conditions. The service never retries these itself;
// the caller decides between retrying with fresh data and offering another slot.
var (
	// ErrSlotUnavailable means the slot is booked or another live hold exists.
	ErrSlotUnavailable = errors.New("slot unavailable")
	// ErrConflict means the version-guarded write lost a race; re-read and retry.
	ErrConflict = errors.New("slot reservation conflict")
	// ErrSlotNotFound means the slot id is unknown; the caller's data is stale.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrNotHolder means the caller asked to extend a hold it does not own.
	ErrNotHolder = errors.New("hold owned by another holder")
)
