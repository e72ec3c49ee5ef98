package remote

import (
	"context"

	"github.com/tetete478/Snipee-sub000/internal/models"
)

// Handle is a resolved reference to the shared document's backing object.
// Resolving it may create the backing container on first use; the result is
// stable and may be cached for the process lifetime.
type Handle struct {
	Bucket string
	Key    string
}

// Client is the only network-facing interface the sync engine depends on.
type Client interface {
	// ResolveHandle finds or creates the backing container and returns a
	// handle to the shared document. Idempotent.
	ResolveHandle(ctx context.Context) (Handle, error)

	// Download fetches and decodes the shared document. It returns
	// (nil, nil) both when the document does not exist yet and when its
	// bytes fail to decode: corruption degrades to "no remote data yet",
	// it is never fatal.
	Download(ctx context.Context, h Handle) (*models.SyncDocument, error)

	// Encode serializes the document into the wire form Upload writes.
	// Exposed separately so a caller can fail on an unencodable document
	// before committing any other state.
	Encode(doc *models.SyncDocument) ([]byte, error)

	// Upload writes previously encoded bytes, replacing the stored
	// document.
	Upload(ctx context.Context, h Handle, data []byte) error
}
