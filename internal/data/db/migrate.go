package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/studyplan-backend/internal/domain/plans"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&plans.StudyPlan{},
		&plans.StudyCard{},
	)
}
