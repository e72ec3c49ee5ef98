// Package common defines shared constants and sentinel errors used across
// the Snipee sync agent. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Sync-round errors (one per failure stage, see internal/syncer).
	ErrHandleResolution = errors.New("remote handle resolution failed")
	ErrRemoteRead       = errors.New("remote read failed")
	ErrEncode           = errors.New("local state encoding failed")
	ErrRemoteWrite      = errors.New("remote write failed")

	// ErrRoundInFlight is returned when a sync round is requested while
	// another one is still running.
	ErrRoundInFlight = errors.New("sync round already in flight")

	// Validation errors.
	ErrorInvalidTimestamp = errors.New("invalid timestamp")
)
