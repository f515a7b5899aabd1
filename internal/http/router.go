package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/studyplan-backend/internal/http/handlers"
	httpMW "github.com/yungbote/studyplan-backend/internal/http/middleware"
	"github.com/yungbote/studyplan-backend/internal/observability"
	"github.com/yungbote/studyplan-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	// Metrics nil disables request metrics and the /metrics route.
	Metrics *observability.Metrics

	StudyPlanHandler *httpH.StudyPlanHandler
	HealthHandler    *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())
	r.Use(httpMW.Metrics(cfg.Metrics))

	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api/v1")
	{
		if cfg.HealthHandler != nil {
			api.GET("/health", cfg.HealthHandler.HealthCheck)
		}

		if cfg.StudyPlanHandler != nil {
			api.GET("/enums", cfg.StudyPlanHandler.Enums)
			api.POST("/predict-plan", cfg.StudyPlanHandler.PredictPlan)
			api.POST("/plan/cards", cfg.StudyPlanHandler.PlanCards)

			api.GET("/plans", cfg.StudyPlanHandler.ListPlans)
			api.POST("/plans", cfg.StudyPlanHandler.CreatePlan)
			api.GET("/plans/:id", cfg.StudyPlanHandler.GetPlan)
			api.PATCH("/plans/:id/card-status", cfg.StudyPlanHandler.UpdateCardStatus)
			api.PATCH("/plans/:id/card-notes", cfg.StudyPlanHandler.UpdateCardNotes)
		}
	}

	return r
}
