package app

import (
	"fmt"
	"strings"

	redisclient "github.com/yungbote/studyplan-backend/internal/clients/redis"
	"github.com/yungbote/studyplan-backend/internal/modules/studyplan/completion"
	"github.com/yungbote/studyplan-backend/internal/observability"
	"github.com/yungbote/studyplan-backend/internal/platform/artifacts"
	"github.com/yungbote/studyplan-backend/internal/platform/httpx"
	"github.com/yungbote/studyplan-backend/internal/platform/logger"
	"github.com/yungbote/studyplan-backend/internal/platform/openai"
)

type Clients struct {
	Artifacts    *artifacts.Store
	Orchestrator *completion.Orchestrator
	PlanCache    redisclient.PlanCache
	Metrics      *observability.Metrics
}

// NewOrchestrator builds the completion pipeline from config. The CLI uses it
// without the rest of the app. A nil metrics registry records nothing.
func NewOrchestrator(cfg Config, log *logger.Logger, metrics *observability.Metrics) (*completion.Orchestrator, *artifacts.Store) {
	policy := httpx.DefaultRetryPolicy()
	policy.MaxRetries = cfg.OpenAI.TransportRetries
	policy.BackoffFactor = cfg.OpenAI.BackoffFactor
	transport := httpx.New(httpx.Options{
		ConnectTimeout: cfg.OpenAI.ConnectTimeout,
		ReadTimeout:    cfg.OpenAI.ReadTimeout,
		Retry:          policy,
	}, log)

	chat := openai.NewChatClient(openai.Config{
		BaseURL: cfg.OpenAI.BaseURL,
		APIKey:  cfg.OpenAI.APIKey,
	}, transport, log)

	store := artifacts.New(cfg.ArtifactsDir, log)
	temp := cfg.OpenAI.Temperature
	orch := completion.New(chat, store, completion.Config{
		Model:          cfg.OpenAI.Model,
		TokenCap:       cfg.OpenAI.MaxTokens,
		Temperature:    &temp,
		MaxAutoRetries: cfg.OpenAI.MaxAutoRetries,
	}, log)
	if metrics != nil {
		orch.SetRecorder(metrics)
	}
	return orch, store
}

func wireClients(cfg Config, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}
	orch, store := NewOrchestrator(cfg, log, metrics)
	if strings.TrimSpace(cfg.OpenAI.APIKey) == "" {
		log.Warn("OPENAI_API_KEY not set; plan generation will report a configuration error")
	}

	// Redis
	var cache redisclient.PlanCache
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		c, err := redisclient.NewPlanCache(redisclient.CacheOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.PlanTTL,
		}, log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis plan cache: %w", err)
		}
		cache = c
	}

	return Clients{
		Artifacts:    store,
		Orchestrator: orch,
		PlanCache:    cache,
		Metrics:      metrics,
	}, nil
}
