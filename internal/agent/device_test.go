package agent

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetete478/Snipee-sub000/internal/repositories/metadata"
)

func TestEnsureDeviceID(t *testing.T) {
	ctx := context.Background()
	db, err := InitDatabase(ctx, filepath.Join(t.TempDir(), "replica.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	meta := metadata.NewSQLiteRepository(db)

	id, err := EnsureDeviceID(ctx, meta)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err, "device id must be a uuid")

	again, err := EnsureDeviceID(ctx, meta)
	require.NoError(t, err)
	assert.Equal(t, id, again, "device id is stable across runs")
}
