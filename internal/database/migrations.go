package database

import (
	"gorm.io/gorm"

	"github.com/danielroh/hackmate/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Hackathon{},
		&models.Team{},
		&models.TeamMember{},
		&models.TeamInvitation{},
		&models.TeamJoinRequest{},
		&models.ExternalTeamMember{},
		&models.Submission{},
		&models.AuditLog{},
	)
}

// SeedData is a start-up hook for default rows. The schema currently needs no seed
// data; the hook stays so bootstrap code has a single migration entry point.
func SeedData(db *gorm.DB) error {
	return nil
}
