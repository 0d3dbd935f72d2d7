// Package models is the shared database schema of the accounts and blog services.
package models

import "gorm.io/gorm"

// All returns every table model in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Group{},
		&UserGroup{},
		&Category{},
		&Tag{},
		&Post{},
		&Comment{},
		&ActivityRecord{},
	}
}

// AutoMigrate creates or updates the schema for every model.
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&User{}, "Groups", &UserGroup{}); err != nil {
		return err
	}
	return db.AutoMigrate(All()...)
}
