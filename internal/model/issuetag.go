package model

// IssueTag is the join row between an issue and a tag. It is registered
// with SetupJoinTable so the table keeps its composite key and cascading
// foreign keys.
type IssueTag struct {
	IssueID int64 `gorm:"primaryKey"`
	TagID   int64 `gorm:"primaryKey"`
}
