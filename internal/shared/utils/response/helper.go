package response

import (
	"net/http"

	"parkwise/internal/shared/apperrors"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// Success writes a success envelope with the given payload.
func Success(c *gin.Context, code int, message string, data interface{}) {
	RespondJSON(c, "success", code, message, data, nil)
}

// Error writes an error envelope with a status code derived from the error.
func Error(c *gin.Context, err error) {
	RespondJSON(c, "error", apperrors.HTTPStatus(err), err.Error(), nil, nil)
}

// BadRequest writes a 400 envelope with validation details.
func BadRequest(c *gin.Context, message string, errors interface{}) {
	RespondJSON(c, "error", http.StatusBadRequest, message, nil, errors)
}
