package api

import (
	"errors"
	"net/http"

	"pharmacy-storefront/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes the error envelope: a message, an optional page to go
// back to, and structured details for validation and stock failures.
func (h *Handler) respondError(c *gin.Context, err error, redirect string) {
	var (
		validation   *service.ValidationError
		insufficient *service.InsufficientStockError
		conflict     *service.StockConflictError
		outOfStock   *service.OutOfStockError
	)

	status := http.StatusInternalServerError
	body := gin.H{"error": err.Error()}

	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
		body["error"] = "Please correct the errors below."
		body["fields"] = validation.Fields
	case errors.As(err, &insufficient):
		status = http.StatusConflict
		body["lines"] = insufficient.Lines
	case errors.As(err, &conflict):
		status = http.StatusConflict
		body["lines"] = []service.StockShortfall{conflict.StockShortfall}
	case errors.As(err, &outOfStock):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		body["error"] = "Invalid username or password."
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
		body["error"] = "Please log in to continue."
		redirect = h.path("/auth/login")
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
		body["error"] = "You do not have permission to access this page."
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
		body["error"] = "Not found."
	case errors.Is(err, service.ErrEmptyCart):
		status = http.StatusBadRequest
		body["error"] = "Your cart is empty."
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrInUse):
		status = http.StatusConflict
	default:
		h.logger.Error("Request failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path))
		body["error"] = "Something went wrong. Please try again."
	}

	if redirect != "" {
		body["redirect"] = redirect
	}
	c.AbortWithStatusJSON(status, body)
}

// bindJSON decodes the request body into dst or writes a 400
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return false
	}
	return true
}
