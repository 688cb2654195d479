package http

import (
	"errors"
	"net/http"

	"blop-post/pkg/logger"
	"blop-post/services/post/internal/entity"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message" example:"Post not found"`
}

// respondError maps domain errors to their status. Anything else is logged
// and reported as fallback with a 500.
func respondError(c *gin.Context, log *logger.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, entity.ErrPostNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Post not found"})
	case errors.Is(err, entity.ErrInvalidLikeDelta):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid like change value"})
	case errors.Is(err, entity.ErrNoUploadFile):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "No image file uploaded"})
	case errors.Is(err, entity.ErrUploadTooLarge):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Image file too large"})
	case errors.Is(err, entity.ErrUnknownMediaCategory):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Unknown upload category"})
	default:
		log.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: fallback})
	}
}
