package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/truthlens/truthlens-api/pkg/common"
	"github.com/truthlens/truthlens-api/pkg/validation"
)

// ValidateJSON binds the JSON body into req and validates it
func ValidateJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return err
	}
	return validation.ValidateStruct(req)
}

// RespondWithValidationError sends a 400 in the common error envelope.
// Field failures are listed under "fields"; bind errors under "details".
func RespondWithValidationError(c *gin.Context, err error) {
	body := gin.H{
		"success": false,
		"error": common.ErrorBody{
			Code:    http.StatusBadRequest,
			Message: "Validation failed",
		},
	}

	var valErr *validation.ValidationError
	if errors.As(err, &valErr) {
		body["fields"] = valErr.Errors
	} else {
		body["details"] = err.Error()
	}

	c.JSON(http.StatusBadRequest, body)
}

// ValidateAndBind validates and binds request to the provided struct.
// Returns false after writing the error response when validation fails.
func ValidateAndBind(c *gin.Context, req interface{}) bool {
	if err := ValidateJSON(c, req); err != nil {
		RespondWithValidationError(c, err)
		return false
	}
	return true
}

// MaxBodySize rejects request bodies larger than maxSize with 413
func MaxBodySize(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				common.ErrorResponse(c, http.StatusRequestEntityTooLarge, "request body too large")
				c.Abort()
				return
			}
			common.ErrorResponse(c, http.StatusBadRequest, "failed to read request body")
			c.Abort()
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		c.Next()
	}
}
