package storage

import "context"

// BlobStore is the key-value persistence capability backing every entity
// store. Each store owns one key and persists its whole state as a single
// versioned blob.
type BlobStore interface {
	// Get returns the blob for key; found is false when the key has never
	// been written.
	Get(ctx context.Context, key string) (data []byte, found bool, err error)
	// Put writes the blob for key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte) error
	// Delete removes the key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
