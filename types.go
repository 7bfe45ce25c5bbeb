package filevault

import (
	"fmt"

	"github.com/google/uuid"
)

// RootParent is the reserved parentId value meaning "top level, no parent".
const RootParent = "0"

// PageSize is the fixed number of file nodes returned per list page.
const PageSize = 20

type NodeKind string

const (
	KindFolder NodeKind = "folder"
	KindFile   NodeKind = "file"
	KindImage  NodeKind = "image"
)

func (k NodeKind) IsValid() bool {
	switch k {
	case KindFolder, KindFile, KindImage:
		return true
	default:
		return false
	}
}

func ParseNodeKind(s string) (NodeKind, error) {
	kind := NodeKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid node kind: %s (valid kinds: folder, file, image)", s)
	}
	return kind, nil
}

// User is a registered account. PasswordHash holds the salted PBKDF2 digest
// in the form hex(salt)$hex(key) and is never serialized.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
}

// FileNode is the metadata record for a folder, file, or image - not its
// bytes. LocalPath is the blob location relative to the storage root; it is
// empty for folders and never exposed on the wire.
type FileNode struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	Kind      NodeKind  `json:"type"`
	IsPublic  bool      `json:"isPublic"`
	ParentID  string    `json:"parentId"`
	LocalPath string    `json:"-"`
}

// CreateNodeRequest carries the caller-supplied fields for node creation.
// Data is the base64-encoded payload, required for non-folder kinds.
type CreateNodeRequest struct {
	Name     string `json:"name"`
	Kind     string `json:"type"`
	ParentID string `json:"parentId"`
	IsPublic bool   `json:"isPublic"`
	Data     string `json:"data"`
}

// ListQuery selects one page of a user's files beneath a parent.
type ListQuery struct {
	ParentID string
	Page     int
}

// Stats reports collection sizes for the stats endpoint.
type Stats struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

// Status reports adapter liveness for the status endpoint.
type Status struct {
	Cache bool `json:"cache"`
	DB    bool `json:"db"`
}
