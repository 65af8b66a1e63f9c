package server

import (
	"encoding/json"
	"net/http"
	"time"

	"filebox/internal/storage"
	"filebox/internal/sync"

	"go.uber.org/zap"
)

// Handlers manages the HTTP endpoints translating REST calls into store
// operations and presigned-URL issuance.
type Handlers struct {
	store  storage.Client
	urlTTL time.Duration
	logger *zap.Logger
}

// NewHandlers creates handlers bound to a store client
func NewHandlers(store storage.Client, urlTTL time.Duration, logger *zap.Logger) *Handlers {
	return &Handlers{
		store:  store,
		urlTTL: urlTTL,
		logger: logger,
	}
}

type keyRequest struct {
	Key         string `json:"key"`
	ContentType string `json:"contentType,omitempty"`
}

type urlResponse struct {
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expiresAt"`
	ContentType string    `json:"contentType,omitempty"`
}

// HandleFiles routes /api/files by method: GET lists objects, DELETE removes one.
func (h *Handlers) HandleFiles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listFiles(w, r)
	case http.MethodDelete:
		h.deleteFile(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handlers) listFiles(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")

	objects, err := h.store.List(r.Context(), prefix)
	if err != nil {
		h.logger.Error("Failed to list objects", zap.String("prefix", prefix), zap.Error(err))
		http.Error(w, "Failed to list files", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, objects)
}

func (h *Handlers) deleteFile(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		http.Error(w, "Object key is required", http.StatusBadRequest)
		return
	}

	if err := h.store.Delete(r.Context(), req.Key); err != nil {
		h.logger.Error("Failed to delete object", zap.String("key", req.Key), zap.Error(err))
		http.Error(w, "Failed to delete file", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Deleted object", zap.String("key", req.Key))
	w.WriteHeader(http.StatusNoContent)
}

// HandleUploadURL issues a short-lived signed PUT URL for one key
func (h *Handlers) HandleUploadURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req keyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		http.Error(w, "Object key is required", http.StatusBadRequest)
		return
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = sync.TypeByName(req.Key)
	}

	url, err := h.store.PresignPut(r.Context(), req.Key, h.urlTTL)
	if err != nil {
		h.logger.Error("Failed to presign upload", zap.String("key", req.Key), zap.Error(err))
		http.Error(w, "Failed to create upload URL", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, urlResponse{
		URL:         url,
		ExpiresAt:   time.Now().Add(h.urlTTL),
		ContentType: contentType,
	})
}

// HandleDownloadURL issues a short-lived signed GET URL for one key
func (h *Handlers) HandleDownloadURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Object key is required", http.StatusBadRequest)
		return
	}

	url, err := h.store.PresignGet(r.Context(), key, h.urlTTL)
	if err != nil {
		h.logger.Error("Failed to presign download", zap.String("key", key), zap.Error(err))
		http.Error(w, "Failed to create download URL", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, urlResponse{
		URL:       url,
		ExpiresAt: time.Now().Add(h.urlTTL),
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
