package filevault_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ayoubd/filevault"
)

func TestParseNodeKind(t *testing.T) {
	tt := []struct {
		Name    string
		Input   string
		Want    filevault.NodeKind
		WantErr bool
	}{
		{Name: "folder", Input: "folder", Want: filevault.KindFolder},
		{Name: "file", Input: "file", Want: filevault.KindFile},
		{Name: "image", Input: "image", Want: filevault.KindImage},
		{Name: "empty", Input: "", WantErr: true},
		{Name: "unknown", Input: "video", WantErr: true},
		{Name: "case sensitive", Input: "Folder", WantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			got, err := filevault.ParseNodeKind(tc.Input)
			if tc.WantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.Want, got)
		})
	}
}

func TestFileNodeJSON(t *testing.T) {
	node := filevault.FileNode{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Name:      "report.pdf",
		Kind:      filevault.KindFile,
		IsPublic:  true,
		ParentID:  filevault.RootParent,
		LocalPath: "0/secret-location",
	}

	data, err := json.Marshal(node)
	assert.NoError(t, err)

	var decoded map[string]any
	assert.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, node.ID.String(), decoded["id"])
	assert.Equal(t, node.UserID.String(), decoded["userId"])
	assert.Equal(t, "report.pdf", decoded["name"])
	assert.Equal(t, "file", decoded["type"])
	assert.Equal(t, true, decoded["isPublic"])
	assert.Equal(t, "0", decoded["parentId"])

	// The blob location must never leak onto the wire.
	assert.NotContains(t, string(data), "secret-location")
}

func TestUserJSON(t *testing.T) {
	user := filevault.User{
		ID:           uuid.New(),
		Email:        "bob@dylan.com",
		PasswordHash: "deadbeef$cafebabe",
	}

	data, err := json.Marshal(user)
	assert.NoError(t, err)
	assert.NotContains(t, string(data), "deadbeef")
	assert.Contains(t, string(data), "bob@dylan.com")
}
