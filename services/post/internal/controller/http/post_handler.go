package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"blop-post/pkg/logger"
	"blop-post/pkg/middleware"
	"blop-post/services/post/internal/entity"
	"blop-post/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postUseCase usecase.PostUseCase
	logger      *logger.Logger
}

func NewPostHandler(postUseCase usecase.PostUseCase, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
		logger:      logger,
	}
}

type CreatePostsResponse struct {
	Message string         `json:"message" example:"Posts created"`
	Posts   []*entity.Post `json:"posts"`
}

type PostResponse struct {
	Message string       `json:"message" example:"Post updated"`
	Post    *entity.Post `json:"post"`
}

type DeleteAllResponse struct {
	Message      string `json:"message" example:"All posts deleted successfully (3 deleted)"`
	DeletedCount int64  `json:"deletedCount" example:"3"`
}

// LikeChangeRequest carries a JSON number; only 1 and -1 are accepted.
type LikeChangeRequest struct {
	Inc *float64 `json:"inc" example:"1"`
}

// CreatePosts godoc
// @Summary      Create one or many posts
// @Description  Accepts a single post object or an array of them. Missing image, date, like and readTime are defaulted.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        posts body entity.PostInput true "Post or array of posts"
// @Success      201  {object}  CreatePostsResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /posts [post]
func (h *PostHandler) CreatePosts(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
		return
	}

	inputs, err := decodePostInputs(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
		return
	}

	posts, err := h.postUseCase.CreatePosts(c.Request.Context(), inputs, identityAuthor(c))
	if err != nil {
		respondError(c, h.logger, err, "Error creating post(s)")
		return
	}

	c.JSON(http.StatusCreated, CreatePostsResponse{Message: "Posts created", Posts: posts})
}

// ListPosts godoc
// @Summary      List posts
// @Description  Returns every post in insertion order
// @Tags         posts
// @Produce      json
// @Success      200  {array}   entity.Post
// @Failure      500  {object}  ErrorResponse
// @Router       /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	posts, err := h.postUseCase.ListPosts(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Error fetching posts")
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost godoc
// @Summary      Get post by ID
// @Tags         posts
// @Produce      json
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  entity.Post
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postUseCase.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Error fetching post")
		return
	}
	c.JSON(http.StatusOK, post)
}

// UpdatePost godoc
// @Summary      Update a post
// @Description  Merge patch over top level fields. A supplied author or like object replaces the stored one.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Post ID"
// @Param        post  body      entity.PostPatch  true  "Fields to change"
// @Success      200   {object}  PostResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /posts/{id} [put]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	var patch entity.PostPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
		return
	}

	post, err := h.postUseCase.UpdatePost(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, h.logger, err, "Error updating post")
		return
	}

	c.JSON(http.StatusOK, PostResponse{Message: "Post updated", Post: post})
}

// ChangeLikeCount godoc
// @Summary      Change like count
// @Description  Adds inc (1 or -1) to like.count. like.isliked is not changed.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Post ID"
// @Param        body  body      LikeChangeRequest  true  "Like delta"
// @Success      200   {object}  entity.Post
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /posts/{id} [patch]
func (h *PostHandler) ChangeLikeCount(c *gin.Context) {
	var req LikeChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Inc == nil || (*req.Inc != 1 && *req.Inc != -1) {
		respondError(c, h.logger, entity.ErrInvalidLikeDelta, "")
		return
	}

	post, err := h.postUseCase.ChangeLikeCount(c.Request.Context(), c.Param("id"), int(*req.Inc))
	if err != nil {
		respondError(c, h.logger, err, "Failed to update like")
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost godoc
// @Summary      Delete a post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  PostResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	post, err := h.postUseCase.DeletePost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Error deleting post")
		return
	}

	c.JSON(http.StatusOK, PostResponse{Message: "Post deleted", Post: post})
}

// DeleteAllPosts godoc
// @Summary      Delete all posts
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  DeleteAllResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /posts [delete]
func (h *PostHandler) DeleteAllPosts(c *gin.Context) {
	count, err := h.postUseCase.DeleteAllPosts(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Error deleting all posts")
		return
	}

	c.JSON(http.StatusOK, DeleteAllResponse{
		Message:      fmt.Sprintf("All posts deleted successfully (%d deleted)", count),
		DeletedCount: count,
	})
}

// decodePostInputs accepts either one post object or an array of them.
func decodePostInputs(raw []byte) ([]entity.PostInput, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty body")
	}

	if trimmed[0] == '[' {
		var inputs []entity.PostInput
		if err := json.Unmarshal(trimmed, &inputs); err != nil {
			return nil, err
		}
		return inputs, nil
	}

	if trimmed[0] != '{' {
		return nil, fmt.Errorf("body must be an object or an array")
	}
	var input entity.PostInput
	if err := json.Unmarshal(trimmed, &input); err != nil {
		return nil, err
	}
	return []entity.PostInput{input}, nil
}

// identityAuthor returns the authenticated user as an author snapshot, or
// nil for anonymous requests.
func identityAuthor(c *gin.Context) *entity.Author {
	if c.GetString(middleware.ContextUserID) == "" {
		return nil
	}
	return &entity.Author{
		Name: c.GetString(middleware.ContextUserName),
		Img:  c.GetString(middleware.ContextUserImage),
	}
}
