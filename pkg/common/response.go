package common

import (
	"github.com/gin-gonic/gin"
)

// ErrorBody is the error part of a failed response
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Response is the envelope for failed API responses
type Response struct {
	Success bool       `json:"success"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorResponse sends an error response
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Error: &ErrorBody{
			Code:    statusCode,
			Message: message,
		},
	})
}

// AppErrorResponse sends an error response from AppError.
// Only the message is exposed; the wrapped cause stays server side.
func AppErrorResponse(c *gin.Context, err *AppError) {
	ErrorResponse(c, err.Code, err.Message)
}
