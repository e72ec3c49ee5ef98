// Package merge implements the pure reconciliation function that combines a
// local SyncDocument with a remote one (or with no remote at all) into a
// single merged document.
//
// The merge is last-write-wins over per-entity updatedAt strings, with a
// deterministic tie rule (local wins exact ties) and a tombstone ledger that
// suppresses deleted entities. It is a pairwise merge applied one remote
// round at a time; associativity across three or more concurrently diverging
// replicas is not guaranteed.
package merge

import (
	"sort"
	"time"

	"github.com/tetete478/Snipee-sub000/internal/models"
)

// DefaultTombstoneRetention is how long tombstones are kept before being
// pruned from the merged ledger.
const DefaultTombstoneRetention = 30 * 24 * time.Hour

// Options carries the non-document inputs of a merge.
type Options struct {
	// Now is the wall-clock instant used for tombstone pruning and for the
	// merged document's lastModified stamp.
	Now time.Time

	// DeviceID is stamped on the merged document for diagnostics. It is
	// never an input to conflict resolution.
	DeviceID string

	// Retention overrides DefaultTombstoneRetention when positive.
	Retention time.Duration
}

func (o Options) retention() time.Duration {
	if o.Retention > 0 {
		return o.Retention
	}
	return DefaultTombstoneRetention
}

// Merge reconciles local and remote into one document. A nil remote means
// "no remote data yet" and yields local with pruned tombstones and a fresh
// stamp. Both inputs are treated as immutable.
//
// Every live entity id present in either input appears exactly once in the
// result; no tombstoned id survives as a live entity.
func Merge(local models.SyncDocument, remote *models.SyncDocument, opts Options) models.SyncDocument {
	var remoteDoc models.SyncDocument
	if remote != nil {
		remoteDoc = *remote
	}

	tombstones := unionTombstones(local.Deleted, remoteDoc.Deleted, opts.Now, opts.retention())

	deleted := make(map[string]struct{}, len(tombstones))
	for _, ts := range tombstones {
		deleted[ts.ID] = struct{}{}
	}

	folders := unionByID(local.Folders, remoteDoc.Folders,
		func(f models.Folder) string { return f.ID },
		deleted,
		func(f models.Folder) models.Folder { return filterSnippets(f, deleted) },
		func(l, r models.Folder) models.Folder { return mergeFolder(l, r, deleted) },
	)

	sortFolders(folders)

	return models.SyncDocument{
		Version:      models.DocumentVersion,
		LastModified: models.FormatTime(opts.Now),
		DeviceID:     opts.DeviceID,
		Folders:      folders,
		Deleted:      tombstones,
	}
}

// localWins is the shared tie rule: the local side wins when its stamp is
// greater than or equal to the remote one. Absent stamps compare as "" and
// always lose against a real timestamp.
func localWins(local, remote string) bool {
	return local >= remote
}

// unionTombstones deduplicates the concatenation of both ledgers, keeping
// the first occurrence of each id, then prunes entries older than the
// retention window. Differing deletedAt values for the same id are not
// reconciled; the first side seen (local) wins.
func unionTombstones(local, remote []models.Tombstone, now time.Time, retention time.Duration) []models.Tombstone {
	cutoff := models.FormatTime(now.Add(-retention))

	seen := make(map[string]struct{}, len(local)+len(remote))
	out := make([]models.Tombstone, 0, len(local)+len(remote))
	for _, ts := range append(append([]models.Tombstone{}, local...), remote...) {
		if _, ok := seen[ts.ID]; ok {
			continue
		}
		seen[ts.ID] = struct{}{}
		if ts.DeletedAt < cutoff {
			// Expired. Note a replica that never learned of the deletion
			// may still carry the entity live, re-admitting it below.
			continue
		}
		out = append(out, ts)
	}
	return out
}

// unionByID is the generic keyed merge used for both folders and snippets.
// For every id present in either slice: tombstoned ids are dropped, ids on
// both sides resolve via both, ids on a single side pass through one. Local
// entries keep their relative order, remote-only entries follow.
func unionByID[T any](
	local, remote []T,
	id func(T) string,
	deleted map[string]struct{},
	one func(T) T,
	both func(l, r T) T,
) []T {
	remoteByID := make(map[string]T, len(remote))
	for _, item := range remote {
		remoteByID[id(item)] = item
	}

	out := make([]T, 0, len(local)+len(remote))
	localIDs := make(map[string]struct{}, len(local))

	for _, item := range local {
		key := id(item)
		localIDs[key] = struct{}{}
		if _, gone := deleted[key]; gone {
			continue
		}
		if r, ok := remoteByID[key]; ok {
			out = append(out, both(item, r))
		} else {
			out = append(out, one(item))
		}
	}

	for _, item := range remote {
		key := id(item)
		if _, ok := localIDs[key]; ok {
			continue
		}
		if _, gone := deleted[key]; gone {
			continue
		}
		out = append(out, one(item))
	}

	return out
}

// mergeFolder combines a folder present on both sides: metadata follows the
// winning updatedAt, snippets are merged with the same keyed LWW rule.
func mergeFolder(local, remote models.Folder, deleted map[string]struct{}) models.Folder {
	winner := remote
	if localWins(local.UpdatedAt, remote.UpdatedAt) {
		winner = local
	}

	merged := models.Folder{
		ID:        local.ID,
		Name:      winner.Name,
		Order:     winner.Order,
		UpdatedAt: winner.UpdatedAt,
	}

	merged.Snippets = unionByID(local.Snippets, remote.Snippets,
		func(s models.Snippet) string { return s.ID },
		deleted,
		func(s models.Snippet) models.Snippet { return s },
		func(l, r models.Snippet) models.Snippet {
			if localWins(l.UpdatedAt, r.UpdatedAt) {
				return l
			}
			return r
		},
	)

	return merged
}

// filterSnippets clones a one-sided folder, dropping tombstoned snippets.
// The clone's snippet array is fresh, so filtering in place never touches
// the input document.
func filterSnippets(f models.Folder, deleted map[string]struct{}) models.Folder {
	out := f.Clone()
	kept := out.Snippets[:0]
	for _, s := range out.Snippets {
		if _, gone := deleted[s.ID]; gone {
			continue
		}
		kept = append(kept, s)
	}
	out.Snippets = kept
	return out
}

// sortFolders orders folders and their snippets by rank. Ranks are relative
// sort keys only and are never renumbered, so gaps and duplicates survive;
// the sort is stable to keep duplicates deterministic.
func sortFolders(folders []models.Folder) {
	sort.SliceStable(folders, func(i, j int) bool {
		return folders[i].Order < folders[j].Order
	})
	for i := range folders {
		snippets := folders[i].Snippets
		sort.SliceStable(snippets, func(a, b int) bool {
			return snippets[a].Order < snippets[b].Order
		})
	}
}
