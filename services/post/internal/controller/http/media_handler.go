package http

import (
	"errors"
	"net/http"

	"blop-post/pkg/logger"
	"blop-post/services/post/internal/entity"
	"blop-post/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
)

// multipartOverhead is allowed on top of the file limit for form framing.
const multipartOverhead = 1 << 20

type MediaHandler struct {
	mediaUseCase usecase.MediaUseCase
	maxBytes     int64
	logger       *logger.Logger
}

func NewMediaHandler(mediaUseCase usecase.MediaUseCase, maxBytes int64, logger *logger.Logger) *MediaHandler {
	return &MediaHandler{
		mediaUseCase: mediaUseCase,
		maxBytes:     maxBytes,
		logger:       logger,
	}
}

type UploadResponse struct {
	Message string `json:"message" example:"Post image uploaded"`
	URL     string `json:"url" example:"http://localhost:5000/uploads/post/1700000000000-123456789.png"`
}

var uploadMessages = map[entity.MediaCategory]string{
	entity.MediaCategoryUser: "User image uploaded",
	entity.MediaCategoryPost: "Post image uploaded",
}

// Upload godoc
// @Summary      Upload an image
// @Description  Stores a user or post image and returns its public URL
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        category  path      string  true  "Image category"  Enums(user, post)
// @Param        image     formData  file    true  "Image file"
// @Success      200       {object}  UploadResponse
// @Failure      400       {object}  ErrorResponse
// @Failure      404       {object}  ErrorResponse
// @Failure      500       {object}  ErrorResponse
// @Router       /upload/{category} [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	category, err := entity.ParseMediaCategory(c.Param("category"))
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}

	// A missing file is reported by the use case.
	file, err := c.FormFile("image")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(c, h.logger, entity.ErrUploadTooLarge, "")
		return
	}

	url, err := h.mediaUseCase.Upload(c.Request.Context(), string(category), file)
	if err != nil {
		respondError(c, h.logger, err, "Error uploading image")
		return
	}

	c.JSON(http.StatusOK, UploadResponse{Message: uploadMessages[category], URL: url})
}
