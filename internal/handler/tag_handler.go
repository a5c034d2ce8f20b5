package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"issuetracker/internal/model"
	"issuetracker/internal/repository"
	"issuetracker/internal/validate"
)

type TagHandler struct {
	tagRepo *repository.TagRepository
}

func NewTagHandler(tagRepo *repository.TagRepository) *TagHandler {
	return &TagHandler{tagRepo: tagRepo}
}

// List returns all tags ordered by name
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tagRepo.List(c.Request.Context())
	if err != nil {
		log.Printf("failed to list tags: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tags"})
		return
	}

	responses := make([]TagResponse, len(tags))
	for i, tag := range tags {
		responses[i] = TagResponse{ID: tag.ID, Name: tag.Name, Color: tag.Color}
	}
	c.JSON(http.StatusOK, responses)
}

// Create creates a new tag; the name must be free in any casing
func (h *TagHandler) Create(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var payload validate.TagPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := payload.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag := &model.Tag{
		Name:  payload.Name.Value,
		Color: payload.Color.Value,
	}

	if err := h.tagRepo.Create(c.Request.Context(), tag); err != nil {
		switch {
		case errors.Is(err, repository.ErrTagNameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "Tag with this name already exists"})
		case errors.Is(err, repository.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "Resource already exists"})
		default:
			log.Printf("failed to create tag: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tag"})
		}
		return
	}

	c.JSON(http.StatusCreated, TagResponse{ID: tag.ID, Name: tag.Name, Color: tag.Color})
}

// Delete removes a tag unless it is still assigned to issues
func (h *TagHandler) Delete(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tag ID"})
		return
	}

	if err := h.tagRepo.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrTagNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		case errors.Is(err, repository.ErrTagInUse):
			c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete tag that is assigned to issues"})
		default:
			log.Printf("failed to delete tag %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tag"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted successfully"})
}
