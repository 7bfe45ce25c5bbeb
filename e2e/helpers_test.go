package e2e_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ayoubd/filevault"
	"github.com/ayoubd/filevault/database"
	"github.com/ayoubd/filevault/filesystem"
	filevaulthttp "github.com/ayoubd/filevault/http"
	"github.com/ayoubd/filevault/sessioncache"
)

// stack is a fully wired service instance running against a temp-file sqlite
// database, an in-memory session cache, and a temp-dir blob store.
type stack struct {
	BaseURL     string
	StoragePath string
	Client      *http.Client
}

// setupStack wires the whole service the way the serve command does and
// exposes it through an httptest server.
func setupStack(t *testing.T) *stack {
	t.Helper()
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "e2e.db")
	repos, dbCleanup, err := database.Connect(ctx, database.Config{
		Type: "sqlite",
		DSN:  dbPath,
		Tables: database.Tables{
			Users: "filevault_users",
			Files: "filevault_files",
		},
	})
	require.NoError(t, err, "connect database")
	t.Cleanup(dbCleanup)

	cache, err := sessioncache.Open(sessioncache.Options{InMemory: true})
	require.NoError(t, err, "open session cache")
	t.Cleanup(func() { _ = cache.Close() })

	storagePath := t.TempDir()
	root, err := os.OpenRoot(storagePath)
	require.NoError(t, err, "open storage root")
	t.Cleanup(func() { _ = root.Close() })

	sessions := filevault.NewSessionManager(repos.Users, cache, filevault.SessionConfig{})
	files := filevault.NewFileService(repos.Users, repos.Files, filesystem.NewStore(root), cache)

	handler := filevaulthttp.NewHandler(&filevaulthttp.HandlerConfig{}, sessions, files)
	server := httptest.NewServer(handler.Router())
	t.Cleanup(server.Close)

	return &stack{
		BaseURL:     server.URL,
		StoragePath: storagePath,
		Client:      server.Client(),
	}
}

// do sends a request and decodes the JSON response body into a generic map.
// An empty body decodes to nil.
func (s *stack) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err, "marshal request body")
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.BaseURL+path, reqBody)
	require.NoError(t, err, "build request")
	if token != "" {
		req.Header.Set(filevaulthttp.TokenHeader, token)
	}

	resp, err := s.Client.Do(req)
	require.NoError(t, err, "send request")
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "read response body")

	if len(data) == 0 {
		return resp.StatusCode, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		// List responses are arrays; callers use doList for those.
		return resp.StatusCode, nil
	}
	return resp.StatusCode, decoded
}

// doList sends a GET and decodes a JSON array response.
func (s *stack) doList(t *testing.T, path, token string) (int, []map[string]any) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, s.BaseURL+path, nil)
	require.NoError(t, err, "build request")
	if token != "" {
		req.Header.Set(filevaulthttp.TokenHeader, token)
	}

	resp, err := s.Client.Do(req)
	require.NoError(t, err, "send request")
	defer func() { _ = resp.Body.Close() }()

	var decoded []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded), "decode list response")
	return resp.StatusCode, decoded
}

// register creates a user account through the API.
func (s *stack) register(t *testing.T, email, password string) string {
	t.Helper()

	status, body := s.do(t, http.MethodPost, "/users", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, status, "register %s", email)
	return body["id"].(string)
}

// connect exchanges credentials for a session token through the API.
func (s *stack) connect(t *testing.T, email, password string) string {
	t.Helper()

	encoded := base64.StdEncoding.EncodeToString([]byte(email + ":" + password))
	req, err := http.NewRequest(http.MethodGet, s.BaseURL+"/connect", nil)
	require.NoError(t, err, "build connect request")
	req.Header.Set("Authorization", "Basic "+encoded)

	resp, err := s.Client.Do(req)
	require.NoError(t, err, "send connect request")
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode, "connect %s", email)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body), "decode connect response")
	require.NotEmpty(t, body["token"], "token")
	return body["token"]
}
