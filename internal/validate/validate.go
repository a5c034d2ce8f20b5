// Package validate holds the stateless payload checks that run before a
// mutation reaches the store. Every rule violation is collected before
// failing so the client sees the full list at once.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"issuetracker/internal/model"
	"issuetracker/internal/optional"
)

// IssuePayload is the JSON body for issue create and update requests.
// Every field is optional at the decode layer; Validate decides what is
// required for which operation.
type IssuePayload struct {
	Title          optional.Field[string]  `json:"title"`
	Description    optional.Field[string]  `json:"description"`
	Status         optional.Field[string]  `json:"status"`
	Priority       optional.Field[string]  `json:"priority"`
	AssignedUserID optional.Field[string]  `json:"assigned_user_id"`
	TagIDs         optional.Field[[]int64] `json:"tag_ids"`
}

// Validate checks shape, range and enum rules. Create requires a title;
// per-field rules are identical for create and update when the field is
// present.
func (p *IssuePayload) Validate(isUpdate bool) error {
	var errs []string

	if !isUpdate && !p.Title.Set {
		errs = append(errs, "Title is required")
	}
	if p.Title.Set {
		switch {
		case p.Title.Null || p.Title.Err != nil:
			errs = append(errs, "Title must be a string")
		case len(p.Title.Value) == 0:
			errs = append(errs, "Title cannot be empty")
		case len(p.Title.Value) > 200:
			errs = append(errs, "Title must be 200 characters or less")
		}
	}

	if p.Description.Set && !p.Description.Null && p.Description.Err != nil {
		errs = append(errs, "Description must be a string")
	}

	if p.Status.Set && (!p.Status.Present() || !contains(model.ValidStatuses, p.Status.Value)) {
		errs = append(errs, fmt.Sprintf("Status must be one of: %s", strings.Join(model.ValidStatuses, ", ")))
	}

	if p.Priority.Set && (!p.Priority.Present() || !contains(model.ValidPriorities, p.Priority.Value)) {
		errs = append(errs, fmt.Sprintf("Priority must be one of: %s", strings.Join(model.ValidPriorities, ", ")))
	}

	if p.TagIDs.Set && !p.TagIDs.Null && p.TagIDs.Err != nil {
		errs = append(errs, "tag_ids must be an array of integers")
	}

	return joined(errs)
}

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// TagPayload is the JSON body for tag create requests.
type TagPayload struct {
	Name  optional.Field[string] `json:"name"`
	Color optional.Field[string] `json:"color"`
}

// Validate checks the tag name and color rules.
func (p *TagPayload) Validate() error {
	var errs []string

	switch {
	case !p.Name.Set || p.Name.Null || (p.Name.Err == nil && p.Name.Value == ""):
		errs = append(errs, "Name is required")
	case p.Name.Err != nil:
		errs = append(errs, "Name must be a string")
	case len(p.Name.Value) > 50:
		errs = append(errs, "Name must be 50 characters or less")
	}

	switch {
	case !p.Color.Set || p.Color.Null || (p.Color.Err == nil && p.Color.Value == ""):
		errs = append(errs, "Color is required")
	case p.Color.Err != nil:
		errs = append(errs, "Color must be a string")
	case !colorPattern.MatchString(p.Color.Value):
		errs = append(errs, "Color must be a valid hex color (e.g., #ef4444)")
	}

	return joined(errs)
}

// Pagination holds normalized list parameters.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

const (
	defaultLimit = 10
	maxLimit     = 100
)

// ParsePagination normalizes the page and limit query parameters. Values
// that do not parse fall back to the defaults; a parsed zero does too.
func ParsePagination(pageStr, limitStr string) (Pagination, error) {
	page := 1
	if n, err := strconv.Atoi(pageStr); err == nil && n != 0 {
		page = n
	}
	limit := defaultLimit
	if n, err := strconv.Atoi(limitStr); err == nil && n != 0 {
		limit = n
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	if page < 1 {
		return Pagination{}, errors.New("Page must be greater than 0")
	}
	if limit < 1 {
		return Pagination{}, errors.New("Limit must be greater than 0")
	}

	return Pagination{Page: page, Limit: limit, Offset: (page - 1) * limit}, nil
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

func joined(errs []string) error {
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
