package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v3"

	"github.com/Slok9931/WriteStream/internal/middleware"
	"github.com/Slok9931/WriteStream/internal/model"
	"github.com/Slok9931/WriteStream/internal/service"
)

// ContentHandler serves article body upload and retrieval. The ledger
// only ever sees the returned hash.
type ContentHandler struct {
	svc      *service.ContentService
	maxBytes int
}

func NewContentHandler(svc *service.ContentService, maxBytes int) *ContentHandler {
	return &ContentHandler{svc: svc, maxBytes: maxBytes}
}

// Upload handles POST /api/content (multipart form, field "file").
func (h *ContentHandler) Upload(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "MISSING_FILE", "Multipart field 'file' is required")
	}
	if fileHeader.Size > int64(h.maxBytes) {
		return middleware.ErrorResponse(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Uploaded file exceeds the size limit")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read upload")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(h.maxBytes)+1))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read upload")
	}
	if len(data) > h.maxBytes {
		return middleware.ErrorResponse(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Uploaded file exceeds the size limit")
	}

	contentHash, err := h.svc.Pin(c.Context(), fileHeader.Filename, data)
	if err != nil {
		middleware.Logger.Error().Err(err).Msg("content: pin failed")
		return middleware.ErrorResponse(c, fiber.StatusBadGateway, "PIN_FAILED", "Failed to store content")
	}

	return c.Status(fiber.StatusCreated).JSON(model.ContentPinResponse{
		Hash: contentHash,
		Size: len(data),
	})
}

// Fetch handles GET /api/content/:hash
func (h *ContentHandler) Fetch(c fiber.Ctx) error {
	contentHash, errMsg := middleware.ValidateContentHash(c.Params("hash"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	data, err := h.svc.Fetch(c.Context(), contentHash)
	if err != nil {
		if errors.Is(err, service.ErrContentNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "No content stored under this hash")
		}
		middleware.Logger.Error().Err(err).Msg("content: fetch failed")
		return middleware.ErrorResponse(c, fiber.StatusBadGateway, "FETCH_FAILED", "Failed to fetch content")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	return c.Send(data)
}
