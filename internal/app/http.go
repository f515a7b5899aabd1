package app

import (
	apphttp "github.com/yungbote/studyplan-backend/internal/http"
	httpH "github.com/yungbote/studyplan-backend/internal/http/handlers"
	"github.com/yungbote/studyplan-backend/internal/observability"
	"github.com/yungbote/studyplan-backend/internal/platform/logger"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	StudyPlan *httpH.StudyPlanHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(),
		StudyPlan: httpH.NewStudyPlanHandler(serviceset.StudyPlan),
	}
}

func wireServer(log *logger.Logger, serviceName string, metrics *observability.Metrics, handlers Handlers) *apphttp.Server {
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:              log,
		ServiceName:      serviceName,
		Metrics:          metrics,
		StudyPlanHandler: handlers.StudyPlan,
		HealthHandler:    handlers.Health,
	})
}
