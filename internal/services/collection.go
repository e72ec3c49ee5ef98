package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tetete478/Snipee-sub000/internal/common"
	"github.com/tetete478/Snipee-sub000/internal/logging"
	"github.com/tetete478/Snipee-sub000/internal/models"
	"github.com/tetete478/Snipee-sub000/internal/repositories/replica"
)

// ChangeNotifier receives a signal after every successful local mutation.
// The sync engine satisfies it.
type ChangeNotifier interface {
	NotifyLocalChange()
}

// CollectionService implements folder and snippet editing on top of the
// local replica. Every mutation stamps updatedAt in UTC and notifies the
// sync engine so the change is pushed after the debounce delay.
type CollectionService struct {
	store    replica.Repository
	notifier ChangeNotifier
	logger   logging.Logger

	now   func() time.Time
	newID func() string
}

func NewCollectionService(store replica.Repository, notifier ChangeNotifier, logger logging.Logger) *CollectionService {
	return &CollectionService{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (s *CollectionService) ListFolders(ctx context.Context) ([]models.Folder, error) {
	folders, _, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading collection: %w", err)
	}
	return folders, nil
}

func (s *CollectionService) CreateFolder(ctx context.Context, name string) (models.Folder, error) {
	if name == "" {
		return models.Folder{}, fmt.Errorf("folder name is required")
	}

	folders, _, err := s.store.Load(ctx)
	if err != nil {
		return models.Folder{}, fmt.Errorf("loading collection: %w", err)
	}

	f := models.Folder{
		ID:        s.newID(),
		Name:      name,
		Order:     nextOrder(folders),
		UpdatedAt: models.FormatTime(s.now()),
		Snippets:  []models.Snippet{},
	}
	if err := s.store.UpsertFolder(ctx, f); err != nil {
		return models.Folder{}, fmt.Errorf("creating folder: %w", err)
	}

	s.logger.Debug(ctx, "folder created", "folder_id", f.ID, "name", f.Name)
	s.notifier.NotifyLocalChange()
	return f, nil
}

func (s *CollectionService) RenameFolder(ctx context.Context, id, name string) (models.Folder, error) {
	if name == "" {
		return models.Folder{}, fmt.Errorf("folder name is required")
	}

	folders, _, err := s.store.Load(ctx)
	if err != nil {
		return models.Folder{}, fmt.Errorf("loading collection: %w", err)
	}

	f, ok := findFolder(folders, id)
	if !ok {
		return models.Folder{}, fmt.Errorf("folder %s: %w", id, common.ErrorNotFound)
	}

	f.Name = name
	f.UpdatedAt = models.FormatTime(s.now())
	if err := s.store.UpsertFolder(ctx, f); err != nil {
		return models.Folder{}, fmt.Errorf("renaming folder: %w", err)
	}

	// snippets carry their folder's name for display; keep them consistent
	for i := range f.Snippets {
		f.Snippets[i].FolderName = name
		if err := s.store.UpsertSnippet(ctx, f.ID, f.Snippets[i]); err != nil {
			return models.Folder{}, fmt.Errorf("renaming folder: %w", err)
		}
	}

	s.notifier.NotifyLocalChange()
	return f, nil
}

func (s *CollectionService) ReorderFolder(ctx context.Context, id string, order int) (models.Folder, error) {
	folders, _, err := s.store.Load(ctx)
	if err != nil {
		return models.Folder{}, fmt.Errorf("loading collection: %w", err)
	}

	f, ok := findFolder(folders, id)
	if !ok {
		return models.Folder{}, fmt.Errorf("folder %s: %w", id, common.ErrorNotFound)
	}

	f.Order = order
	f.UpdatedAt = models.FormatTime(s.now())
	if err := s.store.UpsertFolder(ctx, f); err != nil {
		return models.Folder{}, fmt.Errorf("reordering folder: %w", err)
	}

	s.notifier.NotifyLocalChange()
	return f, nil
}

func (s *CollectionService) ReorderSnippet(ctx context.Context, id string, order int) (models.Snippet, error) {
	folders, _, err := s.store.Load(ctx)
	if err != nil {
		return models.Snippet{}, fmt.Errorf("loading collection: %w", err)
	}

	for _, f := range folders {
		for _, sn := range f.Snippets {
			if sn.ID != id {
				continue
			}
			sn.Order = order
			sn.UpdatedAt = models.FormatTime(s.now())
			if err := s.store.UpsertSnippet(ctx, f.ID, sn); err != nil {
				return models.Snippet{}, fmt.Errorf("reordering snippet: %w", err)
			}
			s.notifier.NotifyLocalChange()
			return sn, nil
		}
	}
	return models.Snippet{}, fmt.Errorf("snippet %s: %w", id, common.ErrorNotFound)
}

func (s *CollectionService) DeleteFolder(ctx context.Context, id string) error {
	if err := s.store.DeleteFolder(ctx, id, s.now()); err != nil {
		return fmt.Errorf("deleting folder: %w", err)
	}
	s.logger.Debug(ctx, "folder deleted", "folder_id", id)
	s.notifier.NotifyLocalChange()
	return nil
}

func (s *CollectionService) CreateSnippet(ctx context.Context, folderID, title, content, description string) (models.Snippet, error) {
	if title == "" {
		return models.Snippet{}, fmt.Errorf("snippet title is required")
	}

	folders, _, err := s.store.Load(ctx)
	if err != nil {
		return models.Snippet{}, fmt.Errorf("loading collection: %w", err)
	}

	f, ok := findFolder(folders, folderID)
	if !ok {
		return models.Snippet{}, fmt.Errorf("folder %s: %w", folderID, common.ErrorNotFound)
	}

	sn := models.Snippet{
		ID:          s.newID(),
		Title:       title,
		Content:     content,
		Description: description,
		FolderName:  f.Name,
		Order:       nextSnippetOrder(f.Snippets),
		UpdatedAt:   models.FormatTime(s.now()),
	}
	if err := s.store.UpsertSnippet(ctx, f.ID, sn); err != nil {
		return models.Snippet{}, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Debug(ctx, "snippet created", "snippet_id", sn.ID, "folder_id", f.ID)
	s.notifier.NotifyLocalChange()
	return sn, nil
}

func (s *CollectionService) UpdateSnippet(ctx context.Context, id, title, content, description string) (models.Snippet, error) {
	folders, _, err := s.store.Load(ctx)
	if err != nil {
		return models.Snippet{}, fmt.Errorf("loading collection: %w", err)
	}

	for _, f := range folders {
		for _, sn := range f.Snippets {
			if sn.ID != id {
				continue
			}
			if title != "" {
				sn.Title = title
			}
			sn.Content = content
			sn.Description = description
			sn.UpdatedAt = models.FormatTime(s.now())
			if err := s.store.UpsertSnippet(ctx, f.ID, sn); err != nil {
				return models.Snippet{}, fmt.Errorf("updating snippet: %w", err)
			}
			s.notifier.NotifyLocalChange()
			return sn, nil
		}
	}
	return models.Snippet{}, fmt.Errorf("snippet %s: %w", id, common.ErrorNotFound)
}

func (s *CollectionService) DeleteSnippet(ctx context.Context, id string) error {
	if err := s.store.DeleteSnippet(ctx, id, s.now()); err != nil {
		return fmt.Errorf("deleting snippet: %w", err)
	}
	s.logger.Debug(ctx, "snippet deleted", "snippet_id", id)
	s.notifier.NotifyLocalChange()
	return nil
}

func findFolder(folders []models.Folder, id string) (models.Folder, bool) {
	for _, f := range folders {
		if f.ID == id {
			return f, true
		}
	}
	return models.Folder{}, false
}

// Orders only need to keep insertion sequence; gaps left by deletions are
// never compacted.
func nextOrder(folders []models.Folder) int {
	max := 0
	for _, f := range folders {
		if f.Order > max {
			max = f.Order
		}
	}
	return max + 1
}

func nextSnippetOrder(snippets []models.Snippet) int {
	max := 0
	for _, sn := range snippets {
		if sn.Order > max {
			max = sn.Order
		}
	}
	return max + 1
}
