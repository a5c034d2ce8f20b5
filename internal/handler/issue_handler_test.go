package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"issuetracker/internal/handler"
	"issuetracker/internal/model"
	"issuetracker/internal/repository"
)

type issueListResponse struct {
	Issues     []handler.IssueResponse    `json:"issues"`
	Pagination handler.PaginationResponse `json:"pagination"`
}

func decodeIssue(t *testing.T, body []byte) handler.IssueResponse {
	t.Helper()
	var issue handler.IssueResponse
	assert.NoError(t, json.Unmarshal(body, &issue))
	return issue
}

func TestCreateIssue_WithTags(t *testing.T) {
	// Arrange
	router, db := setupTest(t)
	user := createTestUser(t, db, "creator@example.com")
	createTestTag(t, db, "bug", "#ef4444")
	tag2 := createTestTag(t, db, "feature", "#8b5cf6")
	tag3 := createTestTag(t, db, "backend", "#10b981")

	body := fmt.Sprintf(`{"title": "Fix login", "tag_ids": [%d, %d]}`, tag3.ID, tag2.ID)

	// Act
	resp := doRequest(router, "POST", "/api/issues", body, authHeader(t, user))

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)
	issue := decodeIssue(t, resp.Body.Bytes())
	assert.Equal(t, "Fix login", issue.Title)
	assert.Equal(t, model.StatusNotStarted, issue.Status)
	assert.Equal(t, model.PriorityMedium, issue.Priority)
	assert.Equal(t, user.ID, issue.CreatedByUserID)
	assert.Equal(t, "creator@example.com", issue.CreatedByUser.Email)
	assert.Nil(t, issue.AssignedUser)
	assert.Len(t, issue.Tags, 2)
	// Tag order is stable by id regardless of request order.
	assert.Equal(t, tag2.ID, issue.Tags[0].ID)
	assert.Equal(t, tag3.ID, issue.Tags[1].ID)

	fetched := doRequest(router, "GET", fmt.Sprintf("/api/issues/%d", issue.ID), "", "")
	assert.Equal(t, http.StatusOK, fetched.Code)
	assert.Equal(t, issue, decodeIssue(t, fetched.Body.Bytes()))
}

func TestCreateIssue_RequiresAuth(t *testing.T) {
	router, _ := setupTest(t)

	resp := doRequest(router, "POST", "/api/issues", `{"title": "Nope"}`, "")

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreateIssue_ValidationAccumulates(t *testing.T) {
	router, db := setupTest(t)
	user := createTestUser(t, db, "creator@example.com")

	resp := doRequest(router, "POST", "/api/issues", `{"title": "", "status": "bogus"}`, authHeader(t, user))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Title cannot be empty")
	assert.Contains(t, resp.Body.String(), "Status must be one of: not_started, in_progress, done")
}

func TestCreateIssue_UnknownTagRollsBack(t *testing.T) {
	router, db := setupTest(t)
	user := createTestUser(t, db, "creator@example.com")

	resp := doRequest(router, "POST", "/api/issues", `{"title": "Doomed", "tag_ids": [9999]}`, authHeader(t, user))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Invalid reference to related resource")

	var count int64
	assert.NoError(t, db.Model(&model.Issue{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetIssue_NotFound(t *testing.T) {
	router, _ := setupTest(t)

	resp := doRequest(router, "GET", "/api/issues/42", "", "")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "Issue not found")
}

func TestListIssues_FilterAndPagination(t *testing.T) {
	// Arrange: 15 in-progress issues tagged bug or feature, plus noise.
	router, db := setupTest(t)
	user := createTestUser(t, db, "creator@example.com")
	tag1 := createTestTag(t, db, "bug", "#ef4444")
	tag2 := createTestTag(t, db, "feature", "#8b5cf6")

	issueRepo := repository.NewIssueRepository(db)
	for i := 0; i < 15; i++ {
		tagID := tag1.ID
		if i%2 == 0 {
			tagID = tag2.ID
		}
		assert.NoError(t, issueRepo.Create(context.Background(), &model.Issue{
			Title: "match", Status: model.StatusInProgress, Priority: model.PriorityMedium, CreatedByUserID: user.ID,
		}, []int64{tagID}))
	}
	assert.NoError(t, issueRepo.Create(context.Background(), &model.Issue{
		Title: "noise", Status: model.StatusDone, Priority: model.PriorityMedium, CreatedByUserID: user.ID,
	}, []int64{tag1.ID}))

	// Act
	path := fmt.Sprintf("/api/issues?status=in_progress&tag_ids=%d,%d&page=2&limit=10", tag1.ID, tag2.ID)
	resp := doRequest(router, "GET", path, "", "")

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	var list issueListResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	assert.Len(t, list.Issues, 5)
	assert.Equal(t, handler.PaginationResponse{
		Page:       2,
		Limit:      10,
		Total:      15,
		TotalPages: 2,
		HasNext:    false,
		HasPrev:    true,
	}, list.Pagination)
}

func TestListIssues_PagePastEnd(t *testing.T) {
	router, db := setupTest(t)
	user := createTestUser(t, db, "creator@example.com")
	issueRepo := repository.NewIssueRepository(db)
	assert.NoError(t, issueRepo.Create(context.Background(), &model.Issue{
		Title: "only", Status: model.StatusNotStarted, Priority: model.PriorityMedium, CreatedByUserID: user.ID,
	}, nil))

	resp := doRequest(router, "GET", "/api/issues?page=9", "", "")

	assert.Equal(t, http.StatusOK, resp.Code)
	var list issueListResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	assert.Empty(t, list.Issues)
	assert.Equal(t, int64(1), list.Pagination.Total)
	assert.Equal(t, 1, list.Pagination.TotalPages)
	assert.False(t, list.Pagination.HasNext)
	assert.True(t, list.Pagination.HasPrev)
}

func TestListIssues_InvalidPage(t *testing.T) {
	router, _ := setupTest(t)

	resp := doRequest(router, "GET", "/api/issues?page=-1", "", "")

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Page must be greater than 0")
}

func TestUpdateIssue_ScalarOnlyKeepsTags(t *testing.T) {
	// Arrange
	router, db := setupTest(t)
	user := createTestUser(t, db, "creator@example.com")
	tag := createTestTag(t, db, "bug", "#ef4444")

	created := decodeIssue(t, doRequest(router, "POST", "/api/issues",
		fmt.Sprintf(`{"title": "Stale", "tag_ids": [%d]}`, tag.ID), authHeader(t, user)).Body.Bytes())

	// Backdate the stamp so strictly-greater does not depend on second
	// granularity within the test run.
	assert.NoError(t, db.Exec("UPDATE issues SET updated_at = updated_at - 100 WHERE id = ?", created.ID).Error)
	before, err := time.Parse(time.RFC3339, created.UpdatedAt)
	assert.NoError(t, err)

	// Act
	resp := doRequest(router, "PUT", fmt.Sprintf("/api/issues/%d", created.ID), `{"status": "done"}`, authHeader(t, user))

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	updated := decodeIssue(t, resp.Body.Bytes())
	assert.Equal(t, model.StatusDone, updated.Status)
	assert.Equal(t, "Stale", updated.Title)
	assert.Len(t, updated.Tags, 1)
	assert.Equal(t, tag.ID, updated.Tags[0].ID)

	after, err := time.Parse(time.RFC3339, updated.UpdatedAt)
	assert.NoError(t, err)
	assert.True(t, after.After(before.Add(-100*time.Second)))
}

func TestUpdateIssue_EmptyTagListClears(t *testing.T) {
	router, db := setupTest(t)
	user := createTestUser(t, db, "creator@example.com")
	tag := createTestTag(t, db, "bug", "#ef4444")

	created := decodeIssue(t, doRequest(router, "POST", "/api/issues",
		fmt.Sprintf(`{"title": "Retag", "tag_ids": [%d]}`, tag.ID), authHeader(t, user)).Body.Bytes())

	resp := doRequest(router, "PUT", fmt.Sprintf("/api/issues/%d", created.ID), `{"tag_ids": []}`, authHeader(t, user))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decodeIssue(t, resp.Body.Bytes()).Tags)
}

func TestUpdateIssue_OmittedTagsUntouched(t *testing.T) {
	router, db := setupTest(t)
	user := createTestUser(t, db, "creator@example.com")
	tag := createTestTag(t, db, "bug", "#ef4444")

	created := decodeIssue(t, doRequest(router, "POST", "/api/issues",
		fmt.Sprintf(`{"title": "Keep tags", "tag_ids": [%d]}`, tag.ID), authHeader(t, user)).Body.Bytes())

	resp := doRequest(router, "PUT", fmt.Sprintf("/api/issues/%d", created.ID), `{"priority": "high"}`, authHeader(t, user))

	assert.Equal(t, http.StatusOK, resp.Code)
	updated := decodeIssue(t, resp.Body.Bytes())
	assert.Equal(t, model.PriorityHigh, updated.Priority)
	assert.Len(t, updated.Tags, 1)
}

func TestUpdateIssue_NotFound(t *testing.T) {
	router, db := setupTest(t)
	user := createTestUser(t, db, "creator@example.com")

	resp := doRequest(router, "PUT", "/api/issues/42", `{"status": "done"}`, authHeader(t, user))

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "Issue not found")
}

func TestDeleteIssue(t *testing.T) {
	router, db := setupTest(t)
	user := createTestUser(t, db, "creator@example.com")

	created := decodeIssue(t, doRequest(router, "POST", "/api/issues",
		`{"title": "Short lived"}`, authHeader(t, user)).Body.Bytes())

	resp := doRequest(router, "DELETE", fmt.Sprintf("/api/issues/%d", created.ID), "", authHeader(t, user))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Issue deleted successfully")

	fetched := doRequest(router, "GET", fmt.Sprintf("/api/issues/%d", created.ID), "", "")
	assert.Equal(t, http.StatusNotFound, fetched.Code)
}

func TestDeleteIssue_NotFound(t *testing.T) {
	router, db := setupTest(t)
	user := createTestUser(t, db, "creator@example.com")

	resp := doRequest(router, "DELETE", "/api/issues/42", "", authHeader(t, user))

	assert.Equal(t, http.StatusNotFound, resp.Code)
}
