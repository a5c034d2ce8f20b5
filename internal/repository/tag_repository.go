package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"issuetracker/internal/model"
)

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// List retrieves all tags ordered by name
func (r *TagRepository) List(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	result := r.db.WithContext(ctx).Order("name ASC").Find(&tags)
	if result.Error != nil {
		return nil, result.Error
	}
	return tags, nil
}

// GetByID retrieves a tag by its ID
func (r *TagRepository) GetByID(ctx context.Context, id int64) (*model.Tag, error) {
	var tag model.Tag
	result := r.db.WithContext(ctx).First(&tag, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, result.Error
	}
	return &tag, nil
}

// Create inserts the tag unless another tag already uses the name in any
// casing.
func (r *TagRepository) Create(ctx context.Context, tag *model.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Tag{}).
			Where("LOWER(name) = LOWER(?)", tag.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrTagNameTaken
		}
		if err := tx.Create(tag).Error; err != nil {
			return translateConstraint(err)
		}
		return nil
	})
}

// Delete removes a tag. It refuses while any issue still references it.
func (r *TagRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag model.Tag
		if err := tx.First(&tag, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTagNotFound
			}
			return err
		}

		var inUse int64
		if err := tx.Model(&model.IssueTag{}).
			Where("tag_id = ?", id).
			Count(&inUse).Error; err != nil {
			return err
		}
		if inUse > 0 {
			return ErrTagInUse
		}

		return tx.Delete(&model.Tag{}, "id = ?", id).Error
	})
}
