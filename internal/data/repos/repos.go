package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/studyplan-backend/internal/data/repos/plans"
	"github.com/yungbote/studyplan-backend/internal/platform/logger"
)

type StudyPlanRepo = plans.StudyPlanRepo
type StudyCardRepo = plans.StudyCardRepo

func NewStudyPlanRepo(db *gorm.DB, baseLog *logger.Logger) StudyPlanRepo {
	return plans.NewStudyPlanRepo(db, baseLog)
}
func NewStudyCardRepo(db *gorm.DB, baseLog *logger.Logger) StudyCardRepo {
	return plans.NewStudyCardRepo(db, baseLog)
}
