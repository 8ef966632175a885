package usecase

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInternal            = errors.New("internal error")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrUploadInProgress    = errors.New("a bulk upload is already running for this user")
	ErrStorageUnavailable  = errors.New("object storage unavailable")
	ErrServiceUnavailable  = errors.New("service unavailable")
)
