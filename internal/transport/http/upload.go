package http

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mazungumzo/chat-service/pkg/httputil"
)

// Разрешённые вложения. Содержимое не инспектируется: движок хранит только URL.
var allowedExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {},
	".webp": {}, ".mp4": {}, ".pdf": {}, ".webm": {},
}

const maxUploadSize = 32 << 20

// POST /upload — принимает файл, отдаёт URL для attachment_ref.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	// ParseMultipartForm ограничивает только буфер в памяти, не тело запроса
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httputil.Error(w, http.StatusBadRequest, "no file")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "no file")
		return
	}
	defer file.Close()

	name := secureFilename(header.Filename)
	if name == "" {
		httputil.Error(w, http.StatusBadRequest, "no file selected")
		return
	}
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := allowedExtensions[ext]; !ok {
		httputil.Error(w, http.StatusBadRequest, "file type not allowed")
		return
	}

	if err := os.MkdirAll(h.uploadsDir, 0o755); err != nil {
		slog.Error("handler.Upload.MkdirAll:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "upload failed")
		return
	}

	dst, err := os.Create(filepath.Join(h.uploadsDir, name))
	if err != nil {
		slog.Error("handler.Upload.Create:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "upload failed")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		slog.Error("handler.Upload.Copy:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "upload failed")
		return
	}

	httputil.OK(w, UploadResponse{URL: "/static/uploads/" + name})
}

// secureFilename срезает путь и всё, что не [a-zA-Z0-9._-].
func secureFilename(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" || filepath.Ext(out) == "" {
		return ""
	}
	return out
}
