package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"i4e-backend/internal/delivery/http/middleware"
	"i4e-backend/internal/pipeline"
	"i4e-backend/internal/pkg/response"
	"i4e-backend/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

const maxUploadBytes = 20 << 20

func currentUser(c fiber.Ctx) (int64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	return id, nil
}

func badRequest(msg string, cause error) error {
	if msg == "" {
		msg = "Bad request"
	}
	return middleware.NewAppError(fiber.StatusBadRequest, msg, nil, cause)
}

// mapUsecaseError turns usecase and pipeline errors into HTTP errors.
func mapUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	var malformed *pipeline.MalformedInputError
	if errors.As(err, &malformed) {
		return middleware.NewAppError(fiber.StatusBadRequest, malformed.Error(), nil, err)
	}
	var rowErr *pipeline.RowError
	if errors.As(err, &rowErr) {
		return middleware.NewAppError(fiber.StatusInternalServerError, fmt.Sprintf("Failed to save row %d", rowErr.Row), nil, err)
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Not found", nil, err)
	case errors.Is(err, usecase.ErrConflict):
		return middleware.NewAppError(fiber.StatusConflict, "Conflict", nil, err)
	case errors.Is(err, usecase.ErrUploadInProgress):
		return middleware.NewAppError(fiber.StatusConflict, "A bulk upload is already running for this user", nil, err)
	case errors.Is(err, usecase.ErrStorageUnavailable):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "File storage is not available", nil, err)
	case errors.Is(err, usecase.ErrServiceUnavailable):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

func parseInt64(raw string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v <= 0 {
		return 0, badRequest("Invalid id", err)
	}
	return v, nil
}

func queryBool(c fiber.Ctx, key string, def bool) (bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, badRequest("Invalid "+key, err)
	}
	return v, nil
}

func queryInt(c fiber.Ctx, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("Invalid "+key, err)
	}
	return v, nil
}

func isMultipart(c fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// formFile reads the first present field of fields. It returns nil when none
// was sent.
func formFile(c fiber.Ctx, fields ...string) (*usecase.FileUpload, error) {
	for _, f := range fields {
		fh, err := c.FormFile(f)
		if err != nil || fh == nil {
			continue
		}
		return readFileHeader(fh)
	}
	return nil, nil
}

func readFileHeader(fh *multipart.FileHeader) (*usecase.FileUpload, error) {
	if fh.Size > maxUploadBytes {
		return nil, middleware.NewAppError(fiber.StatusRequestEntityTooLarge, "File too large", nil, nil)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, badRequest("Unreadable file", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, badRequest("Unreadable file", err)
	}
	return &usecase.FileUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}
