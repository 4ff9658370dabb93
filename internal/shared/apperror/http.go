package apperror

import (
	"errors"
	"net/http"
)

// HTTPError is the transport view of an error: what the client is allowed to see.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

// ToHTTP resolves err to the first AppError in its chain. Anything else is
// reported as an internal error without leaking its text.
func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return HTTPError{
			Status:  appErr.HTTPStatus,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}

	return HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: ErrInternal.Message,
	}
}

// IsInternal reports whether err would surface as a 5xx.
func IsInternal(err error) bool {
	return ToHTTP(err).Status >= http.StatusInternalServerError
}
