// Package filesystem provides the on-disk blob store. Writes are atomic
// (temp file + rename), hashed with SHA256, and sandboxed beneath an os.Root
// so blob paths cannot escape the storage directory.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ayoubd/filevault"
)

// Store provides blob storage operations beneath a sandboxed root.
type Store struct {
	root *os.Root
}

// NewStore creates a Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewStore(root *os.Root) *Store {
	return &Store{root: root}
}

// EnsureDir creates dir (and parents) beneath the root if missing.
// Idempotent: concurrent uploads into the same new folder may race here.
func (s *Store) EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := s.root.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	return nil
}

// Open opens a blob for reading. Returns filevault.ErrNotFound if the blob
// does not exist.
func (s *Store) Open(ctx context.Context, path string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, filevault.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}

	return f, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Write atomically writes content to the given path using a temp file and
// rename. It creates intermediate directories as needed and returns the
// number of bytes written plus a SHA256-based etag. The operation respects
// context cancellation.
func (s *Store) Write(ctx context.Context, path string, content io.Reader) (filevault.SaveResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return filevault.SaveResult{}, ctxErr
	}

	tmpFile := tmpFileName()
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return filevault.SaveResult{}, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(t.Name()); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	h := sha256.New()
	w := io.MultiWriter(h, t)

	bytesWritten, err := io.Copy(w, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return filevault.SaveResult{}, fmt.Errorf("could not copy blob contents: %w", err)
	}

	err = t.Sync()
	if err != nil {
		return filevault.SaveResult{}, fmt.Errorf("could not sync written blob: %w", err)
	}

	destDir := filepath.Dir(path)
	if destDir != "." {
		if err := s.root.MkdirAll(destDir, 0o755); err != nil {
			return filevault.SaveResult{}, fmt.Errorf("could not create intermediate directories: %w", err)
		}
	}

	if renameErr := s.root.Rename(tmpFile, path); renameErr != nil {
		return filevault.SaveResult{}, fmt.Errorf("failed to rename blob: %w", renameErr)
	}

	etag := hex.EncodeToString(h.Sum(nil))
	success = true

	return filevault.SaveResult{BytesWritten: bytesWritten, Etag: etag}, nil
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}
