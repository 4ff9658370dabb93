package usererrors

import (
	"net/http"

	"go-employee-mgmt/internal/shared/apperror"
)

var (
	ErrConfirmationRequired = apperror.New(
		apperror.CodeInvalidInput,
		"Bulk reset deletes every user and must be confirmed",
		http.StatusBadRequest,
	)

	ErrInvalidAdminEmail = apperror.New(
		apperror.CodeConflict,
		"Admin email could not be stored",
		http.StatusConflict,
	)
)
