package model

// Tag names are unique case-insensitively; the repository enforces that
// on create since the unique index alone only catches exact matches.
type Tag struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;not null;size:50"`
	Color     string `gorm:"not null"`
	CreatedAt int64  `gorm:"autoCreateTime"`

	Issues []Issue `gorm:"many2many:issue_tags;constraint:OnDelete:CASCADE"`
}
