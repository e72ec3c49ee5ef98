package replica

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tetete478/Snipee-sub000/internal/common"
	"github.com/tetete478/Snipee-sub000/internal/dbx"
	"github.com/tetete478/Snipee-sub000/internal/models"
)

// SQLiteRepository implements Repository over the per-device SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Load reads folders, their snippets and the tombstone ledger, ordered by rank.
func (r *SQLiteRepository) Load(ctx context.Context) ([]models.Folder, []models.Tombstone, error) {
	folders, err := r.loadFolders(ctx)
	if err != nil {
		return nil, nil, err
	}
	tombstones, err := r.loadTombstones(ctx)
	if err != nil {
		return nil, nil, err
	}
	return folders, tombstones, nil
}

func (r *SQLiteRepository) loadFolders(ctx context.Context) ([]models.Folder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, ord, updated_at FROM folders ORDER BY ord, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select folders: %w", err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	index := map[string]int{}
	for rows.Next() {
		var f models.Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.Order, &f.UpdatedAt); err != nil {
			return nil, err
		}
		f.Snippets = []models.Snippet{}
		index[f.ID] = len(folders)
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	srows, err := r.db.QueryContext(ctx,
		`SELECT id, folder_id, title, content, description, folder_name, ord, updated_at
		 FROM snippets ORDER BY ord, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select snippets: %w", err)
	}
	defer srows.Close()

	for srows.Next() {
		var s models.Snippet
		var folderID string
		if err := srows.Scan(&s.ID, &folderID, &s.Title, &s.Content, &s.Description, &s.FolderName, &s.Order, &s.UpdatedAt); err != nil {
			return nil, err
		}
		i, ok := index[folderID]
		if !ok {
			// Orphan row; cascade rules should prevent this.
			continue
		}
		folders[i].Snippets = append(folders[i].Snippets, s)
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}

	return folders, nil
}

func (r *SQLiteRepository) loadTombstones(ctx context.Context) ([]models.Tombstone, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, deleted_at FROM tombstones ORDER BY deleted_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select tombstones: %w", err)
	}
	defer rows.Close()

	tombstones := []models.Tombstone{}
	for rows.Next() {
		var ts models.Tombstone
		if err := rows.Scan(&ts.ID, &ts.DeletedAt); err != nil {
			return nil, err
		}
		tombstones = append(tombstones, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tombstones, nil
}

// Save replaces the stored collection inside one transaction, so a failure
// leaves the previous on-disk state untouched.
func (r *SQLiteRepository) Save(ctx context.Context, folders []models.Folder, tombstones []models.Tombstone) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, table := range []string{"snippets", "folders", "tombstones"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		for _, f := range folders {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO folders (id, name, ord, updated_at) VALUES (?, ?, ?, ?)`,
				f.ID, f.Name, f.Order, f.UpdatedAt); err != nil {
				return fmt.Errorf("failed to insert folder %s: %w", f.ID, err)
			}
			for _, s := range f.Snippets {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO snippets (id, folder_id, title, content, description, folder_name, ord, updated_at)
					 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
					s.ID, f.ID, s.Title, s.Content, s.Description, s.FolderName, s.Order, s.UpdatedAt); err != nil {
					return fmt.Errorf("failed to insert snippet %s: %w", s.ID, err)
				}
			}
		}

		for _, ts := range tombstones {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tombstones (id, deleted_at) VALUES (?, ?)`,
				ts.ID, ts.DeletedAt); err != nil {
				return fmt.Errorf("failed to insert tombstone %s: %w", ts.ID, err)
			}
		}

		return nil
	})
}

// UpsertFolder inserts or updates folder metadata by id.
func (r *SQLiteRepository) UpsertFolder(ctx context.Context, f models.Folder) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO folders (id, name, ord, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name,
			ord = excluded.ord,
			updated_at = excluded.updated_at`,
		f.ID, f.Name, f.Order, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert folder: %w", err)
	}
	return nil
}

// UpsertSnippet inserts or updates a snippet by id under folderID.
func (r *SQLiteRepository) UpsertSnippet(ctx context.Context, folderID string, s models.Snippet) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO snippets (id, folder_id, title, content, description, folder_name, ord, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET folder_id = excluded.folder_id,
			title = excluded.title,
			content = excluded.content,
			description = excluded.description,
			folder_name = excluded.folder_name,
			ord = excluded.ord,
			updated_at = excluded.updated_at`,
		s.ID, folderID, s.Title, s.Content, s.Description, s.FolderName, s.Order, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert snippet: %w", err)
	}
	return nil
}

// DeleteFolder removes the folder row and its snippets, and tombstones the
// folder id, all in one transaction.
func (r *SQLiteRepository) DeleteFolder(ctx context.Context, id string, now time.Time) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		// Snippets are removed explicitly; SQLite only honors the cascade
		// rule when the foreign_keys pragma is on.
		if _, err := tx.ExecContext(ctx, `DELETE FROM snippets WHERE folder_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete folder snippets: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete folder: %w", err)
		}
		if err := requireOneRow(res); err != nil {
			return err
		}
		// Only the folder id is tombstoned; the merge drops the whole
		// folder, snippets included, once that id is in the ledger.
		return markDeleted(ctx, tx, id, now)
	})
}

// DeleteSnippet removes the snippet row and tombstones its id.
func (r *SQLiteRepository) DeleteSnippet(ctx context.Context, id string, now time.Time) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM snippets WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete snippet: %w", err)
		}
		if err := requireOneRow(res); err != nil {
			return err
		}
		return markDeleted(ctx, tx, id, now)
	})
}

// MarkDeleted appends a tombstone unless the id is already in the ledger.
func (r *SQLiteRepository) MarkDeleted(ctx context.Context, id string, now time.Time) error {
	return markDeleted(ctx, r.db, id, now)
}

func markDeleted(ctx context.Context, db dbx.DBTX, id string, now time.Time) error {
	// INSERT OR IGNORE keeps the original deletedAt on repeat deletions.
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO tombstones (id, deleted_at) VALUES (?, ?)`,
		id, models.FormatTime(now))
	if err != nil {
		return fmt.Errorf("failed to mark deleted: %w", err)
	}
	return nil
}

func requireOneRow(res sql.Result) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrorNotFound
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}
