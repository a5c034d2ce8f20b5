package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"issuetracker/internal/middleware"
	"issuetracker/internal/model"
	"issuetracker/internal/repository"
	"issuetracker/internal/validate"
)

type IssueHandler struct {
	issueRepo *repository.IssueRepository
}

func NewIssueHandler(issueRepo *repository.IssueRepository) *IssueHandler {
	return &IssueHandler{issueRepo: issueRepo}
}

// UserResponse is the identity triple embedded in issue and user listings
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TagResponse represents a tag in API responses
type TagResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// IssueResponse is the projected issue shape: the row joined with its
// creator, assignee and tag list
type IssueResponse struct {
	ID              int64         `json:"id"`
	Title           string        `json:"title"`
	Description     *string       `json:"description"`
	Status          string        `json:"status"`
	Priority        string        `json:"priority"`
	AssignedUserID  *string       `json:"assigned_user_id"`
	CreatedByUserID string        `json:"created_by_user_id"`
	CreatedAt       string        `json:"created_at"`
	UpdatedAt       string        `json:"updated_at"`
	AssignedUser    *UserResponse `json:"assigned_user"`
	CreatedByUser   *UserResponse `json:"created_by_user"`
	Tags            []TagResponse `json:"tags"`
}

// PaginationResponse reports where the returned page sits in the full
// filtered set
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// formatTimestamp renders the store's epoch seconds as UTC RFC 3339.
func formatTimestamp(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}

func toIssueResponse(issue *model.Issue) IssueResponse {
	resp := IssueResponse{
		ID:              issue.ID,
		Title:           issue.Title,
		Description:     issue.Description,
		Status:          issue.Status,
		Priority:        issue.Priority,
		AssignedUserID:  issue.AssignedUserID,
		CreatedByUserID: issue.CreatedByUserID,
		CreatedAt:       formatTimestamp(issue.CreatedAt),
		UpdatedAt:       formatTimestamp(issue.UpdatedAt),
		CreatedByUser: &UserResponse{
			ID:    issue.CreatedByUser.ID,
			Name:  issue.CreatedByUser.Name,
			Email: issue.CreatedByUser.Email,
		},
		Tags: make([]TagResponse, 0, len(issue.Tags)),
	}

	if issue.AssignedUserID != nil && issue.AssignedUser != nil {
		resp.AssignedUser = &UserResponse{
			ID:    issue.AssignedUser.ID,
			Name:  issue.AssignedUser.Name,
			Email: issue.AssignedUser.Email,
		}
	}

	for _, tag := range issue.Tags {
		resp.Tags = append(resp.Tags, TagResponse{ID: tag.ID, Name: tag.Name, Color: tag.Color})
	}
	return resp
}

// currentUserID returns the actor id the auth middleware resolved.
func currentUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// parseTagIDs splits the comma-separated tag_ids parameter, dropping
// anything that is not an integer.
func parseTagIDs(raw string) []int64 {
	if raw == "" {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// List returns a filtered, paginated page of issues
func (h *IssueHandler) List(c *gin.Context) {
	p, err := validate.ParsePagination(c.Query("page"), c.Query("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := repository.IssueFilter{
		Status:          c.Query("status"),
		AssignedUserID:  c.Query("assigned_user_id"),
		CreatedByUserID: c.Query("created_by_user_id"),
		Priority:        c.Query("priority"),
		Search:          c.Query("search"),
		TagIDs:          parseTagIDs(c.Query("tag_ids")),
	}

	issues, total, err := h.issueRepo.List(c.Request.Context(), filter, p.Limit, p.Offset)
	if err != nil {
		log.Printf("failed to list issues: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}

	responses := make([]IssueResponse, len(issues))
	for i := range issues {
		responses[i] = toIssueResponse(&issues[i])
	}

	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))

	c.JSON(http.StatusOK, gin.H{
		"issues": responses,
		"pagination": PaginationResponse{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    p.Page < totalPages,
			HasPrev:    p.Page > 1,
		},
	})
}

// GetByID returns a single projected issue
func (h *IssueHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	issue, err := h.issueRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrIssueNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			log.Printf("failed to get issue %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	c.JSON(http.StatusOK, toIssueResponse(issue))
}

// Create validates the payload and inserts the issue together with its
// tag associations
func (h *IssueHandler) Create(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var payload validate.IssuePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := payload.Validate(false); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issue := &model.Issue{
		Title:           payload.Title.Value,
		Status:          model.StatusNotStarted,
		Priority:        model.PriorityMedium,
		CreatedByUserID: actorID,
	}
	if payload.Description.Present() {
		desc := payload.Description.Value
		issue.Description = &desc
	}
	if payload.Status.Present() {
		issue.Status = payload.Status.Value
	}
	if payload.Priority.Present() {
		issue.Priority = payload.Priority.Value
	}
	if payload.AssignedUserID.Present() {
		assignee := payload.AssignedUserID.Value
		issue.AssignedUserID = &assignee
	}

	var tagIDs []int64
	if payload.TagIDs.Present() {
		tagIDs = payload.TagIDs.Value
	}

	if err := h.issueRepo.Create(c.Request.Context(), issue, tagIDs); err != nil {
		h.reportMutationError(c, err, "Failed to create issue")
		return
	}

	created, err := h.issueRepo.GetByID(c.Request.Context(), issue.ID)
	if err != nil {
		log.Printf("failed to reload issue %d: %v", issue.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		return
	}

	c.JSON(http.StatusCreated, toIssueResponse(created))
}

// Update applies a partial update; only fields present in the payload
// change, and a supplied tag_ids list replaces the tag set wholesale
func (h *IssueHandler) Update(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var payload validate.IssuePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := payload.Validate(true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upd := repository.IssueUpdate{Fields: map[string]interface{}{}}
	if payload.Title.Set {
		upd.Fields["title"] = payload.Title.Value
	}
	if payload.Description.Set {
		if payload.Description.Null {
			upd.Fields["description"] = nil
		} else {
			upd.Fields["description"] = payload.Description.Value
		}
	}
	if payload.Status.Set {
		upd.Fields["status"] = payload.Status.Value
	}
	if payload.Priority.Set {
		upd.Fields["priority"] = payload.Priority.Value
	}
	if payload.AssignedUserID.Set {
		if payload.AssignedUserID.Null {
			upd.Fields["assigned_user_id"] = nil
		} else {
			upd.Fields["assigned_user_id"] = payload.AssignedUserID.Value
		}
	}
	if payload.TagIDs.Set {
		tagIDs := []int64{}
		if payload.TagIDs.Present() {
			tagIDs = payload.TagIDs.Value
		}
		upd.TagIDs = &tagIDs
	}

	if err := h.issueRepo.Update(c.Request.Context(), id, upd); err != nil {
		if errors.Is(err, repository.ErrIssueNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
			return
		}
		h.reportMutationError(c, err, "Failed to update issue")
		return
	}

	updated, err := h.issueRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		log.Printf("failed to reload issue %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		return
	}

	c.JSON(http.StatusOK, toIssueResponse(updated))
}

// Delete removes an issue and, via the store cascade, its associations
func (h *IssueHandler) Delete(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	if err := h.issueRepo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrIssueNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			log.Printf("failed to delete issue %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete issue"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}

// reportMutationError maps translated store errors onto the API taxonomy.
func (h *IssueHandler) reportMutationError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrInvalidReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reference to related resource"})
	case errors.Is(err, repository.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "Resource already exists"})
	default:
		log.Printf("%s: %v", fallback, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
