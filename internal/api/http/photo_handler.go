package http

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gearbook-backend/internal/domain"
)

var photoContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type uploadURLRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// handlePhotoUploadURL hands out a presigned URL for a condition photo. The
// returned key goes into the photos array of the return or movement request.
func (s *Server) handlePhotoUploadURL(w http.ResponseWriter, r *http.Request) {
	if s.blobs == nil {
		respondError(w, domain.ValidationError("photo storage is not configured"))
		return
	}
	var req uploadURLRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	ext, ok := photoContentTypes[req.ContentType]
	if !ok {
		respondError(w, domain.ValidationError("unsupported content type %q", req.ContentType))
		return
	}

	key := fmt.Sprintf("movements/%s/%s%s", time.Now().UTC().Format("2006/01"), uuid.New().String(), ext)
	url, err := s.blobs.GeneratePresignedUploadURL(r.Context(), key, req.ContentType, 15*time.Minute)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{
		"key":        key,
		"upload_url": url,
	})
}

// handlePhotoUpload receives the PUT against a locally issued presigned URL.
// The route is unauthenticated like a cloud presigned URL would be, so the
// token in the path must prove the key was issued by us.
func (s *Server) handlePhotoUpload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}
	if !s.blobs.VerifyUploadToken(mux.Vars(r)["token"], key) {
		http.Error(w, "Invalid upload token", http.StatusForbidden)
		return
	}
	if _, ok := photoContentTypes[r.Header.Get("Content-Type")]; !ok {
		http.Error(w, "Invalid content type", http.StatusBadRequest)
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	if err := s.blobs.SaveFile(key, body); err != nil {
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", `"local-etag-success"`)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handlePhotoDownload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}

	file, err := s.blobs.ReadFile(key)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".webp":
		contentType = "image/webp"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	io.Copy(w, file)
}
