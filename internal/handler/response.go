// Package handler exposes projects, tasks and authentication over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gurkanbulca/projecttracker/internal/middleware"
	"github.com/gurkanbulca/projecttracker/internal/models"
	"github.com/gurkanbulca/projecttracker/internal/repository"
	"github.com/gurkanbulca/projecttracker/internal/service"
	"github.com/gurkanbulca/projecttracker/internal/validation"
)

// Response is the envelope of every JSON response.
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Stats   *models.TaskStats `json:"stats,omitempty"`
	Errors  validation.Errors `json:"errors,omitempty"`
	Error   string            `json:"error,omitempty"`
}

func ok(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

func okWithStats(c *gin.Context, message string, data any, stats models.TaskStats) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data, Stats: &stats})
}

// fail maps err onto the envelope. Validation and not-found errors are
// expected outcomes; anything else is logged and reported as a 500 with
// message as the summary.
func fail(c *gin.Context, log zerolog.Logger, err error, message string) {
	if verrs, isValidation := validation.As(err); isValidation {
		c.JSON(http.StatusUnprocessableEntity, Response{
			Message: "Validation error",
			Errors:  verrs,
		})
		return
	}

	switch {
	case errors.Is(err, repository.ErrProjectNotFound):
		notFound(c, "Project not found")
	case errors.Is(err, repository.ErrTaskNotFound):
		notFound(c, "Task not found")
	case errors.Is(err, repository.ErrNotFound):
		notFound(c, "Not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, Response{Message: "Invalid credentials"})
	case errors.Is(err, service.ErrInvalidRefreshToken):
		c.JSON(http.StatusUnauthorized, Response{Message: "Invalid refresh token"})
	default:
		_ = c.Error(err)
		log.Error().
			Err(err).
			Str("request_id", middleware.GetRequestIDFromContext(c.Request.Context())).
			Str("path", c.FullPath()).
			Msg(message)
		c.JSON(http.StatusInternalServerError, Response{Message: message, Error: err.Error()})
	}
}

func notFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{Message: message})
}

// bindJSON decodes the request body into dst. Malformed JSON and values of
// the wrong type become field-level validation errors. An empty body leaves
// dst untouched when allowEmpty is set.
func bindJSON(c *gin.Context, dst any, allowEmpty bool) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return validation.Errors{typeErr.Field: "The " + typeErr.Field + " field must be " + expected(typeErr.Type) + "."}
	}
	if errors.Is(err, io.EOF) {
		return validation.Errors{"body": "The request body must not be empty."}
	}
	return validation.Errors{"body": "The request body must be valid JSON."}
}

func expected(t reflect.Type) string {
	if t == nil {
		return "of a different type"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "true or false"
	}
	return "of a different type"
}

// pathID parses a path parameter. Anything that is not a UUID cannot name
// an existing entity, so the caller reports it as not found.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	return id, err == nil
}

func callerID(c *gin.Context) uuid.UUID {
	id, _ := middleware.GetUserID(c)
	return id
}
