package metadata

import "context"

// Keys used by the sync agent.
const (
	KeyDeviceID   = "device_id"
	KeyLastSyncAt = "last_sync_at"
)

// Repository is a small key/value store for per-device bookkeeping such as
// the device identifier and the time of the last successful sync.
type Repository interface {
	// Get returns the stored value, or nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
