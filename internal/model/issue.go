package model

// Issue statuses. Any status may move to any other; there is no enforced
// workflow ordering.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Issue priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var (
	ValidStatuses   = []string{StatusNotStarted, StatusInProgress, StatusDone}
	ValidPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
)

// Issue timestamps are stored as epoch seconds; UpdatedAt is bumped on
// every scalar mutation.
type Issue struct {
	ID              int64  `gorm:"primaryKey"`
	Title           string `gorm:"not null;size:200;check:length(title) > 0 AND length(title) <= 200"`
	Description     *string
	Status          string  `gorm:"not null;default:not_started;check:status IN ('not_started', 'in_progress', 'done')"`
	Priority        string  `gorm:"not null;default:medium;check:priority IN ('low', 'medium', 'high')"`
	AssignedUserID  *string `gorm:"index"`
	CreatedByUserID string  `gorm:"not null;index"`
	CreatedAt       int64   `gorm:"autoCreateTime;index"`
	UpdatedAt       int64   `gorm:"autoUpdateTime"`

	AssignedUser  *User `gorm:"foreignKey:AssignedUserID;constraint:OnDelete:SET NULL"`
	CreatedByUser User  `gorm:"foreignKey:CreatedByUserID;constraint:OnDelete:CASCADE"`
	Tags          []Tag `gorm:"many2many:issue_tags;constraint:OnDelete:CASCADE"`
}
