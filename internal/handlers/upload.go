package handlers

import (
	"DonationHub/internal/middleware"
	"DonationHub/internal/storage"
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UploadHandler раздаёт изображения из локальной папки загрузок.
type UploadHandler struct {
	Files  *storage.FileStore
	Logger *zap.SugaredLogger
}

func NewUploadHandler(files *storage.FileStore, logger *zap.SugaredLogger) *UploadHandler {
	return &UploadHandler{Files: files, Logger: logger}
}

// Serve GET /api/uploads/{filename}
func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetEmailFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	path, err := h.Files.Resolve(chi.URLParam(r, "filename"))
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		h.Logger.Errorw("upload stat failed", "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	http.ServeFile(w, r, path)
}
