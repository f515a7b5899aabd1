package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/studyplan-backend/internal/data/repos"
	"github.com/yungbote/studyplan-backend/internal/platform/logger"
)

type Repos struct {
	StudyPlan repos.StudyPlanRepo
	StudyCard repos.StudyCardRepo
}

// wireRepos returns empty Repos when storage is disabled.
func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	if db == nil {
		log.Info("Storage disabled; plans will not be persisted")
		return Repos{}
	}
	log.Info("Wiring repos...")
	return Repos{
		StudyPlan: repos.NewStudyPlanRepo(db, log),
		StudyCard: repos.NewStudyCardRepo(db, log),
	}
}
