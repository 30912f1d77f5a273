package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/internal/model"
	"backend/pkg/response"
)

// abortWithError maps engine error kinds onto HTTP status codes and writes
// the standard error envelope.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrRequestNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrInvalidDefinition):
		status = http.StatusBadRequest
	}
	c.JSON(status, response.Error(status, err.Error()))
}
