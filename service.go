package filevault

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"

	"github.com/google/uuid"
)

// FileService validates and creates folder/file/image records, enforces
// parent-folder invariants, and orchestrates the metadata-write + blob-write
// two-step. Within one CreateNode call the metadata insert strictly precedes
// the blob write; the accepted partial-failure state is
// metadata-committed-but-blob-failed, surfaced as a BlobWriteError carrying
// the committed identifier rather than rolled back.
type FileService struct {
	users UserRepo
	files FileRepo
	blobs BlobStore
	cache SessionCache
}

func NewFileService(users UserRepo, files FileRepo, blobs BlobStore, cache SessionCache) *FileService {
	return &FileService{users: users, files: files, blobs: blobs, cache: cache}
}

// CreateNode validates req and creates a node owned by ownerID. Validation
// short-circuits on the first failure: name, then kind, then data for
// non-folders, then the parent invariant. Folders take the metadata-only
// path; files and images also get a blob written beneath the directory keyed
// by the resolved parent identifier.
func (s *FileService) CreateNode(ctx context.Context, ownerID string, req CreateNodeRequest) (FileNode, error) {
	if err := ctx.Err(); err != nil {
		return FileNode{}, fmt.Errorf("create node: %w", err)
	}

	if req.Name == "" {
		return FileNode{}, fmt.Errorf("create node: %w", &MissingFieldError{Field: "name"})
	}

	kind, err := ParseNodeKind(req.Kind)
	if err != nil {
		return FileNode{}, fmt.Errorf("create node: %w", &MissingFieldError{Field: "type"})
	}

	if kind != KindFolder && req.Data == "" {
		return FileNode{}, fmt.Errorf("create node: %w", &MissingFieldError{Field: "data"})
	}

	parentID := req.ParentID
	if parentID == "" {
		parentID = RootParent
	}

	if parentID != RootParent {
		parent, err := s.files.GetFileByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return FileNode{}, fmt.Errorf("create node: %w", &InvalidParentError{Reason: "parent not found"})
			}
			return FileNode{}, fmt.Errorf("create node: %w: %v", ErrStore, err)
		}
		if parent.Kind != KindFolder {
			return FileNode{}, fmt.Errorf("create node: %w", &InvalidParentError{Reason: "parent is not a folder"})
		}
	}

	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return FileNode{}, fmt.Errorf("create node: %w", ErrUnauthenticated)
	}

	node := FileNode{
		UserID:   owner,
		Name:     req.Name,
		Kind:     kind,
		IsPublic: req.IsPublic,
		ParentID: parentID,
	}

	if kind == KindFolder {
		stored, err := s.files.InsertFile(ctx, node)
		if err != nil {
			return FileNode{}, fmt.Errorf("create node: %w: %v", ErrStore, err)
		}
		return stored, nil
	}

	payload, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return FileNode{}, fmt.Errorf("create node: %w: data is not valid base64", ErrBadRequest)
	}

	// Idempotent so concurrent uploads into a fresh folder may race here.
	if err := s.blobs.EnsureDir(parentID); err != nil {
		return FileNode{}, fmt.Errorf("create node: %w: %v", ErrBlob, err)
	}

	node.LocalPath = path.Join(parentID, uuid.NewString())

	stored, err := s.files.InsertFile(ctx, node)
	if err != nil {
		// Insert failed: abort before any blob write so no orphan blobs exist.
		return FileNode{}, fmt.Errorf("create node: %w: %v", ErrStore, err)
	}

	if _, err := s.blobs.Write(ctx, stored.LocalPath, bytes.NewReader(payload)); err != nil {
		return FileNode{}, fmt.Errorf("create node: %w", &BlobWriteError{NodeID: stored.ID, Err: err})
	}

	return stored, nil
}

// GetNode fetches the node scoped by both identifier and owner. A node that
// exists under a different owner is indistinguishable from one that does not
// exist.
func (s *FileService) GetNode(ctx context.Context, ownerID, nodeID string) (FileNode, error) {
	if err := ctx.Err(); err != nil {
		return FileNode{}, fmt.Errorf("get node: %w", err)
	}

	node, err := s.files.GetFile(ctx, nodeID, ownerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return FileNode{}, fmt.Errorf("get node: %w", ErrNotFound)
		}
		return FileNode{}, fmt.Errorf("get node: %w: %v", ErrStore, err)
	}

	return node, nil
}

// ListNodes returns one fixed-size page of the owner's nodes beneath a
// parent. Pages beyond the collection are empty, not an error.
func (s *FileService) ListNodes(ctx context.Context, ownerID string, q ListQuery) ([]FileNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}

	parentID := q.ParentID
	if parentID == "" {
		parentID = RootParent
	}

	page := q.Page
	if page < 0 {
		page = 0
	}

	nodes, err := s.files.ListFiles(ctx, ownerID, parentID, page*PageSize, PageSize)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w: %v", ErrStore, err)
	}

	return nodes, nil
}

// SetVisibility flips the public flag on the node matched by identifier and
// owner and returns the post-update record.
func (s *FileService) SetVisibility(ctx context.Context, ownerID, nodeID string, isPublic bool) (FileNode, error) {
	if err := ctx.Err(); err != nil {
		return FileNode{}, fmt.Errorf("set visibility: %w", err)
	}

	node, err := s.files.SetVisibility(ctx, nodeID, ownerID, isPublic)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return FileNode{}, fmt.Errorf("set visibility: %w", ErrNotFound)
		}
		return FileNode{}, fmt.Errorf("set visibility: %w: %v", ErrStore, err)
	}

	return node, nil
}

// Stats reports user and file record counts.
func (s *FileService) Stats(ctx context.Context) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}

	users, err := s.users.CountUsers(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w: %v", ErrStore, err)
	}

	files, err := s.files.CountFiles(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w: %v", ErrStore, err)
	}

	return Stats{Users: users, Files: files}, nil
}

// Status reports adapter liveness without failing.
func (s *FileService) Status(ctx context.Context) Status {
	return Status{
		Cache: s.cache.Ping(ctx),
		DB:    s.files.Ping(ctx),
	}
}
