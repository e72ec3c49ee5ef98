package replica

import (
	"context"
	"time"

	"github.com/tetete478/Snipee-sub000/internal/models"
)

// Repository persists this device's copy of the snippet collection and its
// tombstone ledger. It holds no merge logic; reconciliation happens in
// internal/merge.
type Repository interface {
	// Load returns the full materialized collection and the tombstone
	// ledger, folders and snippets sorted by rank.
	Load(ctx context.Context) ([]models.Folder, []models.Tombstone, error)

	// Save atomically replaces the stored collection and ledger with the
	// given state. On failure the previous state is left intact.
	Save(ctx context.Context, folders []models.Folder, tombstones []models.Tombstone) error

	// UpsertFolder inserts or updates a folder's metadata (not its snippets).
	UpsertFolder(ctx context.Context, f models.Folder) error

	// UpsertSnippet inserts or updates a snippet under the given folder.
	UpsertSnippet(ctx context.Context, folderID string, s models.Snippet) error

	// DeleteFolder removes a folder (and its snippets) from the live view
	// and records a tombstone for the folder id.
	DeleteFolder(ctx context.Context, id string, now time.Time) error

	// DeleteSnippet removes a snippet from the live view and records a
	// tombstone for it.
	DeleteSnippet(ctx context.Context, id string, now time.Time) error

	// MarkDeleted appends a tombstone for id unless one already exists.
	// Repeat deletions never refresh the original deletedAt.
	MarkDeleted(ctx context.Context, id string, now time.Time) error
}
