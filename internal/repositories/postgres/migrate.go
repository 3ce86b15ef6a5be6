package postgres

import (
	"github.com/yoockh/talentpool/internal/models"
	"gorm.io/gorm"
)

// Migrate creates the pgvector extension and the application tables.
func Migrate(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return err
	}
	return db.AutoMigrate(
		&models.UserProfile{},
		&models.Candidate{},
		&models.Resume{},
		&models.Job{},
		&models.Application{},
	)
}
