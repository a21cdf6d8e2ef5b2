package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resto-pos/services"
)

// respondServiceError maps the services error taxonomy onto HTTP statuses.
// Anything unrecognized is a rolled-back transaction failure: the client may
// retry the whole request because no partial state survives.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyPosted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInsufficientPayment),
		errors.Is(err, services.ErrInsufficientStock):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "retryable": true})
	}
}
