package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/ayoubd/filevault"
)

// SessionService covers registration and the session lifecycle.
type SessionService interface {
	Register(ctx context.Context, email, password string) (filevault.User, error)
	Issue(ctx context.Context, authorization string) (string, error)
	Resolve(ctx context.Context, token string) (userID string, ok bool, err error)
	End(ctx context.Context, token string) error
	Me(ctx context.Context, token string) (filevault.User, error)
}

// FileService covers the node hierarchy plus the unauthenticated
// status/stats probes.
type FileService interface {
	CreateNode(ctx context.Context, ownerID string, req filevault.CreateNodeRequest) (filevault.FileNode, error)
	GetNode(ctx context.Context, ownerID, nodeID string) (filevault.FileNode, error)
	ListNodes(ctx context.Context, ownerID string, q filevault.ListQuery) ([]filevault.FileNode, error)
	SetVisibility(ctx context.Context, ownerID, nodeID string, isPublic bool) (filevault.FileNode, error)
	Stats(ctx context.Context) (filevault.Stats, error)
	Status(ctx context.Context) filevault.Status
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	CORS CORSConfig
}

// Handler provides the HTTP surface over the session and file services.
type Handler struct {
	config   HandlerConfig
	sessions SessionService
	files    FileService
}

// NewHandler creates a new Handler with the given configuration and services.
func NewHandler(config *HandlerConfig, sessions SessionService, files FileService) *Handler {
	return &Handler{
		config:   *config,
		sessions: sessions,
		files:    files,
	}
}

// Router returns an http.Handler with all routes configured. Status, stats,
// registration, and connect are open; everything else sits behind the session
// middleware.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/status", h.handleStatus)
	r.Get("/stats", h.handleStats)
	r.Post("/users", h.handleRegister)
	r.Get("/connect", h.handleConnect)

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(h.sessions))
		r.Get("/disconnect", h.handleDisconnect)
		r.Get("/users/me", h.handleMe)
		r.Post("/files", h.handleCreateFile)
		r.Get("/files", h.handleListFiles)
		r.Get("/files/{id}", h.handleGetFile)
		r.Put("/files/{id}/publish", h.handlePublish)
		r.Put("/files/{id}/unpublish", h.handleUnpublish)
	})

	return r
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, h.files.Status(r.Context()))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.files.Stats(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, stats)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_request", "Invalid JSON body")
		return
	}

	user, err := h.sessions.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleConnect(w http.ResponseWriter, r *http.Request) {
	token, err := h.sessions.Issue(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	token, _ := TokenFromContext(r.Context())

	if err := h.sessions.End(r.Context(), token); err != nil {
		HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	token, _ := TokenFromContext(r.Context())

	user, err := h.sessions.Me(r.Context(), token)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleCreateFile(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := UserIDFromContext(r.Context())

	var req filevault.CreateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_request", "Invalid JSON body")
		return
	}

	node, err := h.files.CreateNode(r.Context(), ownerID, req)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, node)
}

func (h *Handler) handleGetFile(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := UserIDFromContext(r.Context())

	node, err := h.files.GetNode(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, node)
}

func (h *Handler) handleListFiles(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := UserIDFromContext(r.Context())

	// A page value that does not parse falls back to the first page.
	page := 0
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if parsed, err := strconv.Atoi(pageStr); err == nil {
			page = parsed
		}
	}

	query := filevault.ListQuery{
		ParentID: r.URL.Query().Get("parentId"),
		Page:     page,
	}

	nodes, err := h.files.ListNodes(r.Context(), ownerID, query)
	if err != nil {
		HandleError(w, err)
		return
	}

	if nodes == nil {
		nodes = []filevault.FileNode{}
	}

	_ = WriteJSON(w, http.StatusOK, nodes)
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, true)
}

func (h *Handler) handleUnpublish(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, false)
}

func (h *Handler) setVisibility(w http.ResponseWriter, r *http.Request, isPublic bool) {
	ownerID, _ := UserIDFromContext(r.Context())

	node, err := h.files.SetVisibility(r.Context(), ownerID, chi.URLParam(r, "id"), isPublic)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, node)
}
