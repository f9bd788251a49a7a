package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"training_tracker/internal/logger"
	"training_tracker/internal/models"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func Success(c *gin.Context, statusCode int, data interface{}, message string) {
	c.JSON(statusCode, APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

func Fail(c *gin.Context, statusCode int, err error, message string) {
	resp := APIResponse{
		Status:  "error",
		Message: message,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(statusCode, resp)
}

// Abort is Fail for middlewares: the handler chain stops after the response.
func Abort(c *gin.Context, statusCode int, err error, message string) {
	Fail(c, statusCode, err, message)
	c.Abort()
}

// StatusFor maps the shared sentinel errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error writes a failure for err. Unexpected errors are logged and their
// details kept out of the response.
func Error(c *gin.Context, err error, message string) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(c).Error(message, zap.Error(err))
		_ = c.Error(err)
		Fail(c, status, errors.New("internal server error"), message)
		return
	}
	Fail(c, status, err, message)
}
