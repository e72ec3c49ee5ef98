package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetete478/Snipee-sub000/internal/common"
	"github.com/tetete478/Snipee-sub000/internal/logging"
	"github.com/tetete478/Snipee-sub000/internal/migrations"
	"github.com/tetete478/Snipee-sub000/internal/models"
	"github.com/tetete478/Snipee-sub000/internal/repositories/replica"

	_ "modernc.org/sqlite"
)

type countingNotifier struct {
	calls int
}

func (n *countingNotifier) NotifyLocalChange() { n.calls++ }

var serviceTestNow = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

func setupService(t *testing.T) (*CollectionService, *countingNotifier) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, "."))

	notifier := &countingNotifier{}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	s := NewCollectionService(replica.NewSQLiteRepository(db), notifier, logger)
	s.now = func() time.Time { return serviceTestNow }

	seq := 0
	s.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return s, notifier
}

func TestCollectionService_CreateFolder(t *testing.T) {
	s, notifier := setupService(t)
	ctx := context.Background()

	f, err := s.CreateFolder(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, "id-1", f.ID)
	assert.Equal(t, 1, f.Order)
	assert.Equal(t, "2024-07-01T12:00:00Z", f.UpdatedAt)
	assert.Equal(t, 1, notifier.calls)

	f2, err := s.CreateFolder(ctx, "sql")
	require.NoError(t, err)
	assert.Equal(t, 2, f2.Order)

	folders, err := s.ListFolders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 2)
}

func TestCollectionService_CreateFolderValidation(t *testing.T) {
	s, notifier := setupService(t)

	_, err := s.CreateFolder(context.Background(), "")
	assert.Error(t, err)
	assert.Zero(t, notifier.calls)
}

func TestCollectionService_RenameFolderUpdatesSnippets(t *testing.T) {
	s, _ := setupService(t)
	ctx := context.Background()

	f, err := s.CreateFolder(ctx, "go")
	require.NoError(t, err)
	_, err = s.CreateSnippet(ctx, f.ID, "hello", "fmt.Println", "")
	require.NoError(t, err)

	_, err = s.RenameFolder(ctx, f.ID, "golang")
	require.NoError(t, err)

	folders, err := s.ListFolders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "golang", folders[0].Name)
	require.Len(t, folders[0].Snippets, 1)
	assert.Equal(t, "golang", folders[0].Snippets[0].FolderName)
}

func TestCollectionService_RenameFolderNotFound(t *testing.T) {
	s, _ := setupService(t)

	_, err := s.RenameFolder(context.Background(), "missing", "x")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCollectionService_Snippets(t *testing.T) {
	s, notifier := setupService(t)
	ctx := context.Background()

	f, err := s.CreateFolder(ctx, "go")
	require.NoError(t, err)

	sn, err := s.CreateSnippet(ctx, f.ID, "hello", "fmt.Println(\"hi\")", "greeting")
	require.NoError(t, err)
	assert.Equal(t, "go", sn.FolderName)
	assert.Equal(t, 1, sn.Order)
	assert.Equal(t, "2024-07-01T12:00:00Z", sn.UpdatedAt)

	sn2, err := s.CreateSnippet(ctx, f.ID, "bye", "os.Exit(0)", "")
	require.NoError(t, err)
	assert.Equal(t, 2, sn2.Order)

	updated, err := s.UpdateSnippet(ctx, sn.ID, "hello2", "fmt.Print(\"hi\")", "")
	require.NoError(t, err)
	assert.Equal(t, "hello2", updated.Title)

	require.NoError(t, s.DeleteSnippet(ctx, sn2.ID))

	folders, err := s.ListFolders(ctx)
	require.NoError(t, err)
	require.Len(t, folders[0].Snippets, 1)
	assert.Equal(t, "hello2", folders[0].Snippets[0].Title)

	// folder create, snippet create x2, update, delete
	assert.Equal(t, 5, notifier.calls)
}

func TestCollectionService_SnippetErrors(t *testing.T) {
	s, _ := setupService(t)
	ctx := context.Background()

	_, err := s.CreateSnippet(ctx, "missing", "t", "c", "")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.UpdateSnippet(ctx, "missing", "t", "c", "")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	f, err := s.CreateFolder(ctx, "go")
	require.NoError(t, err)
	_, err = s.CreateSnippet(ctx, f.ID, "", "c", "")
	assert.Error(t, err)
}

func TestCollectionService_Reorder(t *testing.T) {
	s, _ := setupService(t)
	ctx := context.Background()

	a, err := s.CreateFolder(ctx, "a")
	require.NoError(t, err)
	b, err := s.CreateFolder(ctx, "b")
	require.NoError(t, err)

	// move b in front of a; ranks stay sparse, nothing is renumbered
	_, err = s.ReorderFolder(ctx, b.ID, 0)
	require.NoError(t, err)

	folders, err := s.ListFolders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, b.ID, folders[0].ID)
	assert.Equal(t, 1, folders[1].Order)

	sn1, err := s.CreateSnippet(ctx, a.ID, "one", "1", "")
	require.NoError(t, err)
	_, err = s.CreateSnippet(ctx, a.ID, "two", "2", "")
	require.NoError(t, err)

	_, err = s.ReorderSnippet(ctx, sn1.ID, 9)
	require.NoError(t, err)

	folders, err = s.ListFolders(ctx)
	require.NoError(t, err)
	snippets := folders[1].Snippets
	require.Len(t, snippets, 2)
	assert.Equal(t, "two", snippets[0].Title)
	assert.Equal(t, "one", snippets[1].Title)

	_, err = s.ReorderFolder(ctx, "missing", 1)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = s.ReorderSnippet(ctx, "missing", 1)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCollectionService_DeleteFolderLeavesTombstone(t *testing.T) {
	s, _ := setupService(t)
	ctx := context.Background()

	f, err := s.CreateFolder(ctx, "go")
	require.NoError(t, err)
	require.NoError(t, s.DeleteFolder(ctx, f.ID))

	folders, err := s.ListFolders(ctx)
	require.NoError(t, err)
	assert.Empty(t, folders)

	_, tombstones, err := s.store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, tombstones, 1)
	assert.Equal(t, f.ID, tombstones[0].ID)
	assert.Equal(t, models.FormatTime(serviceTestNow), tombstones[0].DeletedAt)
}
