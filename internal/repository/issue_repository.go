package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"issuetracker/internal/model"
)

type IssueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// IssueFilter carries the optional list criteria. Zero values mean the
// filter is not applied. Filters combine with AND; tag ids combine with
// OR (an issue matches when it carries at least one of them).
type IssueFilter struct {
	Status          string
	AssignedUserID  string
	CreatedByUserID string
	Priority        string
	Search          string
	TagIDs          []int64
}

// apply builds the WHERE conditions shared by the count and page queries.
// Values always travel as bound parameters, never as query text.
func (f IssueFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.AssignedUserID != "" {
		q = q.Where("assigned_user_id = ?", f.AssignedUserID)
	}
	if f.CreatedByUserID != "" {
		q = q.Where("created_by_user_id = ?", f.CreatedByUserID)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where("(title LIKE ? OR description LIKE ?)", pattern, pattern)
	}
	if len(f.TagIDs) > 0 {
		q = q.Where("issues.id IN (SELECT issue_id FROM issue_tags WHERE tag_id IN ?)", f.TagIDs)
	}
	return q
}

// List runs the count query and the page query for the same filter set.
// The page comes back newest first, ids breaking same-second ties. A page
// past the end yields an empty slice, not an error.
func (r *IssueRepository) List(ctx context.Context, filter IssueFilter, limit, offset int) ([]model.Issue, int64, error) {
	var total int64
	if err := filter.apply(r.db.WithContext(ctx).Model(&model.Issue{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var issues []model.Issue
	err := filter.apply(r.db.WithContext(ctx).Model(&model.Issue{})).
		Preload("AssignedUser").
		Preload("CreatedByUser").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&issues).Error
	if err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

// GetByID retrieves an issue with its creator, assignee and tags.
func (r *IssueRepository) GetByID(ctx context.Context, id int64) (*model.Issue, error) {
	var issue model.Issue
	err := r.db.WithContext(ctx).
		Preload("AssignedUser").
		Preload("CreatedByUser").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		First(&issue, "issues.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, err
	}
	return &issue, nil
}

// Create inserts the issue and one join row per tag id as a single unit.
// An unknown tag id violates the join table's foreign key and rolls the
// issue insert back with it.
func (r *IssueRepository) Create(ctx context.Context, issue *model.Issue, tagIDs []int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags").Create(issue).Error; err != nil {
			return err
		}
		for _, tagID := range tagIDs {
			if err := tx.Exec(
				"INSERT INTO issue_tags (issue_id, tag_id) VALUES (?, ?)",
				issue.ID, tagID,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translateConstraint(err)
}

// IssueUpdate describes a partial update. Fields maps column names to new
// values for the scalars the client supplied. TagIDs nil leaves the tag
// set alone; non-nil (including empty) replaces it wholesale.
type IssueUpdate struct {
	Fields map[string]interface{}
	TagIDs *[]int64
}

// Update applies a partial update and the tag replacement in one
// transaction. Scalar updates bump updated_at; a tag-only update does not.
func (r *IssueRepository) Update(ctx context.Context, id int64, upd IssueUpdate) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Issue
		if err := tx.Select("id").First(&existing, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrIssueNotFound
			}
			return err
		}

		if len(upd.Fields) > 0 {
			if err := tx.Model(&model.Issue{ID: id}).Updates(upd.Fields).Error; err != nil {
				return err
			}
		}

		if upd.TagIDs != nil {
			if err := tx.Exec("DELETE FROM issue_tags WHERE issue_id = ?", id).Error; err != nil {
				return err
			}
			for _, tagID := range *upd.TagIDs {
				if err := tx.Exec(
					"INSERT INTO issue_tags (issue_id, tag_id) VALUES (?, ?)",
					id, tagID,
				).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	return translateConstraint(err)
}

// Delete removes an issue; the store cascade removes its join rows.
func (r *IssueRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&model.Issue{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrIssueNotFound
	}
	return nil
}
