package handler

import (
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// maxUploadSize caps product image uploads at 10 MiB.
const maxUploadSize = 10 << 20

// UploadHandler stores admin-uploaded product images on disk and hands back
// a reference URI. The payload is stored as-is; no inspection or transcoding.
type UploadHandler struct {
	dir string
}

// NewUploadHandler creates an UploadHandler writing into dir.
func NewUploadHandler(dir string) *UploadHandler {
	return &UploadHandler{dir: dir}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload handles POST /api/upload (admin, multipart field "image").
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart body"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no file"})
		return
	}
	defer file.Close()

	name := uuid.NewString() + safeExt(header.Filename)

	dst, err := os.Create(filepath.Join(h.dir, name))
	if err != nil {
		log.Printf("ERROR: create upload file: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		log.Printf("ERROR: write upload file: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{URL: "/uploads/" + name})
}

// safeExt keeps a short, lower-case alphanumeric extension from the client
// filename and falls back to .jpg. The generated UUID carries the uniqueness;
// the extension only helps browsers pick a content type.
func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 6 {
		return ".jpg"
	}
	for _, c := range ext[1:] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ".jpg"
		}
	}
	return ext
}
