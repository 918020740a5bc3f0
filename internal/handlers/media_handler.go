package handlers

import (
	"encoding/json"
	"errors"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"sitesync-media/internal/apperr"
	"sitesync-media/internal/middleware"
	service "sitesync-media/internal/services"
	"sitesync-media/internal/storage"
	"sitesync-media/internal/utils"
)

const (
	maxFileSize      = 100 * 1024 * 1024
	maxFilesPerField = 5
)

const invalidTypeMessage = "Invalid file type. Only images (JPEG, PNG, GIF, WEBP) and videos (MP4, MOV, AVI, WMV) are allowed."

type MediaHandler struct {
	uploader  *service.Uploader
	catalog   *service.CatalogService
	uploadDir string
	log       *zap.SugaredLogger
}

func NewMediaHandler(uploader *service.Uploader, catalog *service.CatalogService, uploadDir string, log *zap.SugaredLogger) *MediaHandler {
	return &MediaHandler{uploader: uploader, catalog: catalog, uploadDir: uploadDir, log: log}
}

// GET /
func (h *MediaHandler) Health(c *fiber.Ctx) error {
	return utils.JSONMessage(c, fiber.StatusOK, "API is working")
}

// POST /upload (multipart: images[], videos[], imageData)
func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	raw := c.FormValue("imageData")
	if raw == "" {
		return apperr.BadRequest("Media data is required")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return apperr.BadRequest("No files uploaded")
	}
	images := form.File["images"]
	videos := form.File["videos"]
	if len(images) == 0 && len(videos) == 0 {
		return apperr.BadRequest("No files uploaded")
	}
	if len(images) > maxFilesPerField || len(videos) > maxFilesPerField {
		return apperr.BadRequest("Too many files. Maximum is 5 files per upload")
	}

	// Every header is checked before a single byte hits the upload dir, so a
	// rejected request leaves no temp files behind.
	all := make([]*multipart.FileHeader, 0, len(images)+len(videos))
	all = append(all, images...)
	all = append(all, videos...)
	for _, fh := range all {
		if fh.Size > maxFileSize {
			return apperr.BadRequest("File is too large. Maximum size is 100MB")
		}
		if !storage.AllowedType(fh.Header.Get("Content-Type")) {
			return apperr.BadRequest(invalidTypeMessage)
		}
	}

	var meta service.Metadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return apperr.BadRequest("Invalid media data format. Must be valid JSON")
	}

	files := make([]service.LocalFile, 0, len(all))
	for _, fh := range all {
		path := filepath.Join(h.uploadDir, utils.NewID()+filepath.Ext(fh.Filename))
		if err := c.SaveFile(fh, path); err != nil {
			h.discard(files)
			return apperr.Wrap(apperr.KindInternal, "Failed to store uploaded file", err)
		}
		files = append(files, service.LocalFile{Path: path, MimeType: fh.Header.Get("Content-Type")})
	}

	owner := "admin"
	if id, ok := middleware.IdentityFrom(c); ok {
		owner = id.Email
	}

	collection, err := h.uploader.Submit(c.Context(), owner, meta, files)
	if err != nil {
		h.discard(files)
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Media files uploaded successfully",
		"data":    collection,
	})
}

// GET /verticals
func (h *MediaHandler) Verticals(c *fiber.Ctx) error {
	data, err := h.catalog.Verticals(c.Context())
	if err != nil {
		h.log.Errorf("fetching verticals: %v", err)
		return utils.JSONError(c, fiber.StatusInternalServerError, "Failed to fetch verticals")
	}
	return utils.JSONData(c, fiber.StatusOK, data)
}

// GET /media/:vertical
func (h *MediaHandler) ByVertical(c *fiber.Ctx) error {
	data, err := h.catalog.ByVertical(c.Context(), c.Params("vertical"))
	if err != nil {
		h.log.Errorf("fetching media for vertical %s: %v", c.Params("vertical"), err)
		return utils.JSONError(c, fiber.StatusInternalServerError, "Failed to fetch media items")
	}
	return utils.JSONData(c, fiber.StatusOK, data)
}

// GET /media
func (h *MediaHandler) AllMedia(c *fiber.Ctx) error {
	data, err := h.catalog.AllPreviews(c.Context())
	if err != nil {
		h.log.Errorf("fetching media feed: %v", err)
		return utils.JSONError(c, fiber.StatusInternalServerError, "Failed to fetch media items")
	}
	return utils.JSONData(c, fiber.StatusOK, data)
}

// discard drops temp files after a failed submission; the pipeline removes
// its own, so already-gone entries are expected.
func (h *MediaHandler) discard(files []service.LocalFile) {
	for _, f := range files {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			h.log.Errorf("failed to delete temp file %s: %v", f.Path, err)
		}
	}
}
