package remote

import (
	"context"
	"sync"

	"github.com/tetete478/Snipee-sub000/internal/models"
)

// MemoryClient keeps the shared document in process memory. It goes through
// the same codec as the S3 client, so encoding problems surface in tests the
// same way they would over the wire.
type MemoryClient struct {
	mu    sync.Mutex
	codec *Codec
	data  []byte

	ResolveErr  error
	DownloadErr error
	UploadErr   error
}

func NewMemoryClient(codec *Codec) *MemoryClient {
	return &MemoryClient{codec: codec}
}

func (c *MemoryClient) ResolveHandle(ctx context.Context) (Handle, error) {
	if c.ResolveErr != nil {
		return Handle{}, c.ResolveErr
	}
	return Handle{Bucket: "memory", Key: "sync-document"}, nil
}

func (c *MemoryClient) Download(ctx context.Context, h Handle) (*models.SyncDocument, error) {
	if c.DownloadErr != nil {
		return nil, c.DownloadErr
	}
	c.mu.Lock()
	data := c.data
	c.mu.Unlock()
	if data == nil {
		return nil, nil
	}
	doc, err := c.codec.Decode(data)
	if err != nil {
		return nil, nil
	}
	return doc, nil
}

func (c *MemoryClient) Encode(doc *models.SyncDocument) ([]byte, error) {
	return c.codec.Encode(doc)
}

func (c *MemoryClient) Upload(ctx context.Context, h Handle, data []byte) error {
	if c.UploadErr != nil {
		return c.UploadErr
	}
	c.mu.Lock()
	c.data = data
	c.mu.Unlock()
	return nil
}

// SetRaw replaces the stored bytes directly, bypassing the codec.
func (c *MemoryClient) SetRaw(data []byte) {
	c.mu.Lock()
	c.data = data
	c.mu.Unlock()
}
