// Package models defines the replicated snippet collection types and the
// SyncDocument exchanged through the remote channel.
package models

import (
	"fmt"
	"time"

	"github.com/tetete478/Snipee-sub000/internal/common"
)

// DocumentVersion is the SyncDocument schema version.
const DocumentVersion = 1

// Snippet is a single expandable text snippet.
//
// UpdatedAt is an ISO-8601 UTC timestamp string. An absent value means the
// snippet was never explicitly stamped; it compares as "" and therefore
// always loses a merge conflict against a stamped copy.
type Snippet struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Description string `json:"description,omitempty"`

	// FolderName is a denormalized display label, not a foreign key.
	FolderName string `json:"folder"`

	// Order is a relative sort rank. Ranks are not kept dense or unique.
	Order int `json:"order"`

	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Folder groups an ordered list of snippets.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Order     int       `json:"order"`
	UpdatedAt string    `json:"updatedAt,omitempty"`
	Snippets  []Snippet `json:"snippets"`
}

// Tombstone marks an entity id (folder or snippet) as deleted. DeletedAt is
// always present.
type Tombstone struct {
	ID        string `json:"id"`
	DeletedAt string `json:"deletedAt"`
}

// SyncDocument is the unit of synchronization: one snapshot of the whole
// collection plus the tombstone ledger.
//
// DeviceID marks the writing replica for diagnostics only. It is never an
// input to conflict resolution.
type SyncDocument struct {
	Version      int         `json:"version"`
	LastModified string      `json:"lastModified"`
	DeviceID     string      `json:"deviceId"`
	Folders      []Folder    `json:"folders"`
	Deleted      []Tombstone `json:"deleted"`
}

// FormatTime renders t as the canonical UTC ISO-8601 string used for every
// timestamp in the document.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// NormalizeTimestamp validates s as ISO-8601 and re-renders it in canonical
// UTC form. An empty string is valid and stays empty. A producer emitting
// local-offset timestamps would silently corrupt the string ordering the
// merge relies on, so offsets are converted to UTC here.
func NormalizeTimestamp(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		// Some producers emit fractional seconds.
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return "", fmt.Errorf("%w: %q", common.ErrorInvalidTimestamp, s)
		}
	}
	return FormatTime(t), nil
}

// Normalize validates and canonicalizes every timestamp in the document.
// Tombstones must carry a DeletedAt; folders and snippets may omit UpdatedAt.
func (d *SyncDocument) Normalize() error {
	var err error
	if d.LastModified, err = NormalizeTimestamp(d.LastModified); err != nil {
		return fmt.Errorf("lastModified: %w", err)
	}
	for i := range d.Folders {
		f := &d.Folders[i]
		if f.UpdatedAt, err = NormalizeTimestamp(f.UpdatedAt); err != nil {
			return fmt.Errorf("folder %s: %w", f.ID, err)
		}
		for j := range f.Snippets {
			s := &f.Snippets[j]
			if s.UpdatedAt, err = NormalizeTimestamp(s.UpdatedAt); err != nil {
				return fmt.Errorf("snippet %s: %w", s.ID, err)
			}
		}
	}
	for i := range d.Deleted {
		ts := &d.Deleted[i]
		if ts.DeletedAt == "" {
			return fmt.Errorf("tombstone %s: %w: empty deletedAt", ts.ID, common.ErrorInvalidTimestamp)
		}
		if ts.DeletedAt, err = NormalizeTimestamp(ts.DeletedAt); err != nil {
			return fmt.Errorf("tombstone %s: %w", ts.ID, err)
		}
	}
	return nil
}

// Clone returns a deep copy of the folder, including its snippet list.
func (f Folder) Clone() Folder {
	out := f
	out.Snippets = make([]Snippet, len(f.Snippets))
	copy(out.Snippets, f.Snippets)
	return out
}
