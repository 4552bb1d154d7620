package godss

import "context"

// ObjectStore is the destination contract for plaintext exports. Stores are
// keyed flat: export files land under simple string keys. Implementations
// cover the local filesystem, process memory, and S3-compatible object
// storage.
type ObjectStore interface {
	// Read reads an object from storage.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write writes an object to storage.
	Write(ctx context.Context, key string, data []byte) error

	// Delete removes an object from storage.
	Delete(ctx context.Context, key string) error

	// List returns all object keys matching a prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists checks if an object exists.
	Exists(ctx context.Context, key string) (bool, error)

	// Close releases any resources.
	Close() error
}

// Ensure interfaces are implemented
var (
	_ ObjectStore = (*FSStore)(nil)
	_ ObjectStore = (*MemoryStore)(nil)
	_ ObjectStore = (*S3Store)(nil)
)
