package filevault

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a resource is absent or not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrBadRequest is returned for malformed input, such as an undecodable auth header.
	ErrBadRequest = errors.New("bad request")
	// ErrUnauthenticated is returned for missing/invalid/expired tokens or bad credentials.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidParent is returned when a parent reference is missing or not a folder.
	ErrInvalidParent = errors.New("invalid parent")
	// ErrStore is returned when a metadata or cache operation fails.
	ErrStore = errors.New("store failure")
	// ErrBlob is returned when a blob write fails after metadata was committed.
	ErrBlob = errors.New("blob failure")
)

// MissingFieldError reports a specific required field that was absent.
// It matches ErrBadRequest through errors.Is.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing %s", e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrBadRequest
}

// InvalidParentError reports a parent reference that is missing or not a
// folder. Both cases share a status; only the message differs. It matches
// ErrInvalidParent through errors.Is.
type InvalidParentError struct {
	Reason string
}

func (e *InvalidParentError) Error() string {
	return fmt.Sprintf("invalid parent: %s", e.Reason)
}

func (e *InvalidParentError) Is(target error) bool {
	return target == ErrInvalidParent
}

// BlobWriteError reports a disk write that failed after the metadata record
// was already committed. NodeID is the committed identifier so a caller can
// retry or clean up. It matches ErrBlob through errors.Is.
type BlobWriteError struct {
	NodeID uuid.UUID
	Err    error
}

func (e *BlobWriteError) Error() string {
	return fmt.Sprintf("blob write for node %s: %v", e.NodeID, e.Err)
}

func (e *BlobWriteError) Unwrap() error { return e.Err }

func (e *BlobWriteError) Is(target error) bool {
	return target == ErrBlob
}
