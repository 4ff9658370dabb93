package autherrors

import (
	"go-employee-mgmt/internal/shared/apperror"
	"net/http"
)

var (
	ErrInvalidCredentials = apperror.New(
		apperror.CodeUnauthorized,
		"Invalid email or password",
		http.StatusUnauthorized,
	)
	ErrEmailAlreadyRegistered = apperror.New(
		apperror.CodeConflict,
		"Email is already registered",
		http.StatusConflict,
	)
	ErrPasswordTooLong = apperror.New(
		apperror.CodeValidation,
		"Password must be at most 72 bytes",
		http.StatusBadRequest,
	)
	ErrTokenMissing = apperror.New(
		apperror.CodeUnauthorized,
		"Token not found",
		http.StatusUnauthorized,
	)
	ErrInvalidToken = apperror.New(
		apperror.CodeUnauthorized,
		"Invalid token",
		http.StatusUnauthorized,
	)
	ErrTokenExpired = apperror.New(
		apperror.CodeUnauthorized,
		"Token has expired",
		http.StatusUnauthorized,
	)
	ErrTokenRevoked = apperror.New(
		apperror.CodeUnauthorized,
		"Token has been revoked",
		http.StatusUnauthorized,
	)
	ErrTokenCheckUnavailable = apperror.New(
		apperror.CodeServiceUnavailable,
		"Unable to verify token right now",
		http.StatusServiceUnavailable,
	)
	ErrTokenGenerationFailed = apperror.New(
		apperror.CodeInternalError,
		"Failed to generate token",
		http.StatusInternalServerError,
	)
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"User not found",
		http.StatusNotFound,
	)
)
