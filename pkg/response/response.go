package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noznum/tracklab/internal/models"
)

// Response represents a standard API response
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success sends a successful response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error sends an error response
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithData sends an error response that still carries state, such as
// the selection after a rejected click
func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// NotFound sends a 404 not found response
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError sends a 500 internal server error response
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// StatusOf maps a domain error to an HTTP status. Read and write failures
// are server errors.
func StatusOf(err error) int {
	var (
		malformed  *models.MalformedTrackError
		empty      *models.EmptyTrackError
		degenerate *models.DegenerateSegmentError
	)

	switch {
	case errors.As(err, &malformed), errors.As(err, &empty), errors.As(err, &degenerate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrEmptyLabel), errors.Is(err, models.ErrInvalidLabel), errors.Is(err, models.ErrRowOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNoTrack), errors.Is(err, models.ErrUnknownSeries), errors.Is(err, models.ErrSegmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrSegmentExists), errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromError sends the error response matching err
func FromError(c *gin.Context, err error) {
	Error(c, StatusOf(err), err.Error())
}
