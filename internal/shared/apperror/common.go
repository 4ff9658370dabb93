package apperror

import (
	"fmt"
	"net/http"
)

var (
	ErrForbidden = New(
		CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)

	ErrInternal = New(
		CodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)

	ErrUnauthorized = New(
		CodeUnauthorized,
		"Authentication is required",
		http.StatusUnauthorized,
	)
)

func RequiredField(field string) *AppError {
	return New(CodeValidation, fmt.Sprintf("%s is required", field), http.StatusBadRequest)
}

func InvalidField(field string) *AppError {
	return New(CodeValidation, fmt.Sprintf("%s is invalid", field), http.StatusBadRequest)
}
