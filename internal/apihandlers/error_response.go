package apihandlers

import (
	"errors"
	"fmt"
	"net/http"

	"postsorter/internal/models"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Error codes carried in the "code" field of an error body.
const (
	CodeBadRequest = "bad_request"
	CodeValidation = "validation_error"
	CodeNotFound   = "not_found"
	CodeConflict   = "conflict"
	CodeInternal   = "internal_error"
)

// APIError is the body of every error response.
// Example: { "error": { "code": "conflict", "message": "post 7 is still being categorized" } }
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

// JSONError sends a structured error response
func JSONError(ctx *gin.Context, status int, code, msg string) {
	ctx.JSON(status, errorResponse{Error: APIError{Code: code, Message: msg}})
}

func BadRequest(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusBadRequest, CodeBadRequest, msg)
}

func NotFound(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusNotFound, CodeNotFound, msg)
}

func Internal(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusInternalServerError, CodeInternal, msg)
}

// errorStatus maps a service error onto an HTTP status and error code.
// Anything that is not a known sentinel is an internal error.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict, CodeConflict
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// respondWithError writes err as a structured error body. Internal errors are
// logged with where and prefixed by it in the message.
func respondWithError(c *gin.Context, where string, err error) {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Errorf("%s: %v", where, err)
		msg = fmt.Sprintf("%s: %v", where, err)
	}
	JSONError(c, status, code, msg)
}
