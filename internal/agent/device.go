package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tetete478/Snipee-sub000/internal/repositories/metadata"
)

// EnsureDeviceID returns this device's identifier, generating and persisting
// one on first run. The id only ever appears in sync documents as a
// diagnostic stamp.
func EnsureDeviceID(ctx context.Context, meta metadata.Repository) (string, error) {
	v, err := meta.Get(ctx, metadata.KeyDeviceID)
	if err != nil {
		return "", fmt.Errorf("reading device id: %w", err)
	}
	if len(v) > 0 {
		return string(v), nil
	}

	id := uuid.NewString()
	if err := meta.Set(ctx, metadata.KeyDeviceID, []byte(id)); err != nil {
		return "", fmt.Errorf("storing device id: %w", err)
	}
	return id, nil
}
