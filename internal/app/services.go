package app

import (
	"github.com/yungbote/studyplan-backend/internal/platform/logger"
	"github.com/yungbote/studyplan-backend/internal/services"
)

type Services struct {
	StudyPlan services.StudyPlanService
}

func wireServices(log *logger.Logger, clients Clients, reposet Repos) Services {
	log.Info("Wiring services...")
	return Services{
		StudyPlan: services.NewStudyPlanService(
			log,
			clients.Orchestrator,
			clients.PlanCache,
			reposet.StudyPlan,
			reposet.StudyCard,
		),
	}
}
