package response

import (
	"github.com/gin-gonic/gin"
)

// ErrorBody is the shape of every non-2xx JSON response.
type ErrorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// MessageBody is used for confirmations that carry no resource.
type MessageBody struct {
	Message string `json:"message"`
}

// Success writes data as the bare response body.
func Success(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

func Message(c *gin.Context, status int, message string) {
	c.JSON(status, MessageBody{Message: message})
}

func Error(c *gin.Context, status int, errorCode string, message string, details any) {
	c.JSON(status, ErrorBody{
		Error:   message,
		Code:    errorCode,
		Details: details,
	})
}

// Abort writes the error and stops the handler chain. Used by middleware.
func Abort(c *gin.Context, status int, errorCode string, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{
		Error: message,
		Code:  errorCode,
	})
}
