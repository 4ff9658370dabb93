package employeeerrors

import (
	"go-employee-mgmt/internal/shared/apperror"
	"net/http"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrProfileNotCompleted = apperror.New(
		apperror.CodeNotFound,
		"Profile not completed",
		http.StatusNotFound,
	)
	ErrProfileAlreadyCompleted = apperror.New(
		apperror.CodeAlreadyCompleted,
		"Profile already completed",
		http.StatusBadRequest,
	)
	ErrJobNotFound = apperror.New(
		apperror.CodeValidation,
		"Job does not exist",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeValidation,
		"Dates must use the YYYY-MM-DD format",
		http.StatusBadRequest,
	)
)
