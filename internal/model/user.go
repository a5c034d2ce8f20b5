package model

// User identities are owned by the auth layer; the issue core only reads them.
type User struct {
	ID             string `gorm:"primaryKey"`
	Email          string `gorm:"uniqueIndex;not null"`
	Name           string `gorm:"not null"`
	HashedPassword string `gorm:"not null"`
	CreatedAt      int64  `gorm:"autoCreateTime"`
}
