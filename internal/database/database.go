package database

import (
	"report-console/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the sqlite database and runs migrations.
func Connect(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.Task{}, &models.ScheduledTask{}); err != nil {
		return nil, err
	}

	DB = db
	return db, nil
}
