package filevault

import (
	"context"
	"io"
	"time"
)

// UserRepo defines user record persistence.
//
// All methods accept a context for cancellation and timeout control.
// Implementations must be safe for concurrent use.
type UserRepo interface {
	// FindUserByEmail returns the user with the given email, or ErrNotFound.
	FindUserByEmail(ctx context.Context, email string) (User, error)

	// FindUserByID returns the user with the given identifier, or ErrNotFound.
	// A malformed identifier string is treated as no match, not an error.
	FindUserByID(ctx context.Context, id string) (User, error)

	// InsertUser creates a user with a store-assigned identifier.
	// Returns ErrBadRequest (wrapped) if the email is already registered.
	InsertUser(ctx context.Context, email, passwordHash string) (User, error)

	// CountUsers returns the number of user records.
	CountUsers(ctx context.Context) (int64, error)
}

// FileRepo defines file node metadata persistence.
//
// Identifier-bearing lookups take caller-supplied strings and coerce them to
// the store's native identifier type; a malformed identifier is no match,
// never an error.
type FileRepo interface {
	// GetFile returns the node matching both id and owner, or ErrNotFound.
	// A node owned by someone else is indistinguishable from an absent one.
	GetFile(ctx context.Context, id, ownerID string) (FileNode, error)

	// GetFileByID returns the node with the given id regardless of owner,
	// or ErrNotFound. Used for parent-folder checks.
	GetFileByID(ctx context.Context, id string) (FileNode, error)

	// InsertFile persists the record and returns it with its assigned id.
	InsertFile(ctx context.Context, node FileNode) (FileNode, error)

	// SetVisibility updates isPublic on the node matching id and owner and
	// returns the post-update record, or ErrNotFound if nothing matched.
	SetVisibility(ctx context.Context, id, ownerID string, isPublic bool) (FileNode, error)

	// ListFiles returns up to limit nodes owned by ownerID beneath parentID,
	// skipping offset rows, in stable insertion order. An out-of-range offset
	// yields an empty slice.
	ListFiles(ctx context.Context, ownerID, parentID string, offset, limit int) ([]FileNode, error)

	// CountFiles returns the number of file node records.
	CountFiles(ctx context.Context) (int64, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) bool
}

// SessionCache defines the expiring token-to-user mapping.
//
// Implementations must tolerate the underlying handle not being established
// and report liveness through Ping rather than panicking.
type SessionCache interface {
	// Get returns the value for key. ok is false when the key is absent or
	// its TTL has elapsed; err reports transport failures only.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// SetWithTTL stores key=value for the given lifetime.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping reports whether the cache is reachable.
	Ping(ctx context.Context) bool
}

// BlobStore defines physical blob persistence beneath a storage root.
type BlobStore interface {
	// EnsureDir creates dir (and parents) if missing. Idempotent; safe for
	// concurrent callers racing on the same directory.
	EnsureDir(dir string) error

	// Write stores content at path, creating it atomically, and returns the
	// bytes written together with a content hash.
	Write(ctx context.Context, path string, content io.Reader) (SaveResult, error)

	// Open retrieves a blob for reading. The caller closes the reader.
	Open(ctx context.Context, path string) (io.ReadSeekCloser, error)
}

// SaveResult reports the outcome of a blob write.
type SaveResult struct {
	BytesWritten int64
	Etag         string
}
