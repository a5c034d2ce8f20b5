package model

import "gorm.io/gorm"

// AutoMigrate creates the schema. The join table is registered first so
// it is built with its composite primary key instead of gorm's default.
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Issue{}, "Tags", &IssueTag{}); err != nil {
		return err
	}
	if err := db.SetupJoinTable(&Tag{}, "Issues", &IssueTag{}); err != nil {
		return err
	}
	return db.AutoMigrate(&User{}, &Tag{}, &Issue{})
}
