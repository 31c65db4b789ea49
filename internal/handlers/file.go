package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/uploadimagens/apiserver/internal/auth"
	"github.com/uploadimagens/apiserver/internal/events"
	"github.com/uploadimagens/apiserver/internal/storage"
	"github.com/uploadimagens/apiserver/internal/upload"
	"github.com/uploadimagens/apiserver/types"
)

const (
	// formFieldFiles is the multipart field carrying the image batch.
	formFieldFiles = "meusArquivos"

	maxMultipartMemory = 32 << 20
)

// FileHandler provides upload, listing, serving and deletion of images.
type FileHandler struct {
	store     storage.ImageStore
	validator *upload.Validator
	publisher *events.Publisher
}

// NewFileHandler constructs a handler with the provided dependencies.
func NewFileHandler(store storage.ImageStore, validator *upload.Validator, publisher *events.Publisher) *FileHandler {
	return &FileHandler{
		store:     store,
		validator: validator,
		publisher: publisher,
	}
}

// FileRouter registers file routes on the given router. Upload requires a
// valid session of any role; delete additionally requires the admin role.
func FileRouter(
	r chi.Router,
	handler *FileHandler,
	authMiddleware func(http.Handler) http.Handler,
	adminMiddleware func(http.Handler) http.Handler,
) {
	r.With(authMiddleware).Post("/upload", handler.Upload)
	r.Get("/images", handler.Images)
	r.With(authMiddleware, adminMiddleware).Delete("/delete/{filename}", handler.Delete)
}

// Upload accepts a multipart batch of images. The whole batch is validated
// before any file is written; a rejected batch persists nothing.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	fileHeaders := r.MultipartForm.File[formFieldFiles]
	if len(fileHeaders) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	infos := make([]upload.FileInfo, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		infos = append(infos, upload.FileInfo{
			OriginalName: header.Filename,
			MimeType:     header.Header.Get("Content-Type"),
			Size:         header.Size,
		})
	}

	if err := h.validator.ValidateBatch(infos); err != nil {
		writeError(w, http.StatusBadRequest, uploadErrorMessage(err, h.validator))
		return
	}

	saved := make([]types.UploadedFile, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		file, err := header.Open()
		if err != nil {
			log.Printf("upload: open %q: %v", header.Filename, err)
			writeError(w, http.StatusInternalServerError, "failed to save files")
			return
		}

		contentType := header.Header.Get("Content-Type")
		storedName, err := h.store.Save(r.Context(), file, header.Size, contentType, header.Filename)
		_ = file.Close()
		if err != nil {
			log.Printf("upload: save %q: %v", header.Filename, err)
			writeError(w, http.StatusInternalServerError, "failed to save files")
			return
		}

		saved = append(saved, types.UploadedFile{
			Filename:     storedName,
			OriginalName: header.Filename,
			Size:         header.Size,
			MimeType:     contentType,
		})
	}

	h.publishImageEvents(r, saved)

	writeJSON(w, http.StatusOK, UploadResponse{
		Message: "files uploaded successfully",
		Files:   saved,
	})
}

// Images lists stored images with their public URLs.
func (h *FileHandler) Images(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.List(r.Context())
	if err != nil {
		log.Printf("images: list: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list images")
		return
	}

	images := make([]types.ImageFile, 0, len(entries))
	for _, entry := range entries {
		images = append(images, types.ImageFile{Filename: entry.Filename, URL: entry.URL})
	}

	writeJSON(w, http.StatusOK, ImagesResponse{Success: true, Images: images})
}

// Delete removes a stored image by name.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	if err := h.store.Delete(r.Context(), filename); err != nil {
		switch {
		case errors.Is(err, storage.ErrForbiddenPath):
			writeError(w, http.StatusForbidden, "invalid file path")
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "file not found")
		default:
			log.Printf("delete %q: %v", filename, err)
			writeError(w, http.StatusInternalServerError, "failed to delete file")
		}
		return
	}

	if identity, ok := auth.FromContext(r.Context()); ok {
		event := events.ImageEvent{Filename: filename, UserID: identity.UserID, OccurredAt: time.Now()}
		if _, err := h.publisher.PublishImageEvent(r.Context(), events.ChannelImageDeleted, event); err != nil {
			log.Printf("publish %s: %v", events.ChannelImageDeleted, err)
		}
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "file deleted successfully"})
}

// ServeUpload streams a stored image. The store enforces the containment
// check, so only direct children of the storage root are readable.
func (h *FileHandler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	file, err := h.store.Open(r.Context(), filename)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrForbiddenPath):
			writeError(w, http.StatusForbidden, "invalid file path")
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "file not found")
		default:
			log.Printf("serve %q: %v", filename, err)
			writeError(w, http.StatusInternalServerError, "failed to read file")
		}
		return
	}
	defer file.Close()

	if contentType := mime.TypeByExtension(filepath.Ext(filename)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if _, err := io.Copy(w, file); err != nil {
		log.Printf("serve %q: %v", filename, err)
	}
}

func (h *FileHandler) publishImageEvents(r *http.Request, files []types.UploadedFile) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		return
	}
	for _, f := range files {
		event := events.ImageEvent{
			Filename:     f.Filename,
			OriginalName: f.OriginalName,
			Size:         f.Size,
			MimeType:     f.MimeType,
			UserID:       identity.UserID,
			OccurredAt:   time.Now(),
		}
		if _, err := h.publisher.PublishImageEvent(r.Context(), events.ChannelImageUploaded, event); err != nil {
			log.Printf("publish %s: %v", events.ChannelImageUploaded, err)
		}
	}
}

func uploadErrorMessage(err error, v *upload.Validator) string {
	var tooLarge *upload.FileTooLargeError
	var badType *upload.UnsupportedFileTypeError
	switch {
	case errors.Is(err, upload.ErrTooManyFiles):
		return fmt.Sprintf("too many files, send at most %d images per request", v.MaxFiles)
	case errors.As(err, &tooLarge):
		return fmt.Sprintf("file %q is too large, maximum size is %d bytes", tooLarge.Name, v.MaxFileSize)
	case errors.As(err, &badType):
		return fmt.Sprintf("file %q has unsupported type %q, only images are accepted", badType.Name, badType.Mime)
	default:
		return "invalid upload"
	}
}

type UploadResponse struct {
	Message string               `json:"message"`
	Files   []types.UploadedFile `json:"files"`
}

type ImagesResponse struct {
	Success bool              `json:"success"`
	Images  []types.ImageFile `json:"images"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
