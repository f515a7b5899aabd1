package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	redisclient "github.com/yungbote/studyplan-backend/internal/clients/redis"
	"github.com/yungbote/studyplan-backend/internal/data/repos"
	"github.com/yungbote/studyplan-backend/internal/domain/plans"
	"github.com/yungbote/studyplan-backend/internal/modules/studyplan"
	"github.com/yungbote/studyplan-backend/internal/modules/studyplan/completion"
	"github.com/yungbote/studyplan-backend/internal/platform/ctxutil"
	"github.com/yungbote/studyplan-backend/internal/platform/dbctx"
	"github.com/yungbote/studyplan-backend/internal/platform/logger"
)

const (
	DefaultWeeks = 4
	MaxWeeks     = 52
	listLimit    = 100
)

// PlanFetcher obtains raw model output. *completion.Orchestrator implements it.
type PlanFetcher interface {
	FetchPlan(ctx context.Context, req completion.FetchRequest) (*studyplan.RawPlan, error)
	Model() string
}

type PredictPlanInput struct {
	Profile studyplan.Profile
	// Weeks 0 means the default of 4.
	Weeks     int
	UseModel  bool
	Model     string
	MaxTokens int
}

type PredictPlanResult struct {
	Classification studyplan.Classification `json:"classification"`
	Skeleton       studyplan.Skeleton       `json:"skeleton"`
	Weeks          int                      `json:"semanas"`
	Plan           *PlanMeta                `json:"plan,omitempty"`
	Cards          []CardView               `json:"cards,omitempty"`
	Stored         *bool                    `json:"stored,omitempty"`
	PlanID         *uuid.UUID               `json:"plan_id,omitempty"`
	Generation     *GenerationError         `json:"plan_generation,omitempty"`
}

// CreatePlanInput is a plan built elsewhere. Topic falls back to the plan's
// "tema" when nil or blank.
type CreatePlanInput struct {
	Data  json.RawMessage
	Weeks *int
	Topic *string
}

type CardUpdate struct {
	Week   int    `json:"semana"`
	CardID string `json:"card_id"`
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type CardUpdateResult struct {
	OK     bool      `json:"ok"`
	PlanID uuid.UUID `json:"plan_id"`
	CardID string    `json:"card_id"`
}

type StudyPlanService interface {
	Enums() studyplan.EnumSet
	PredictPlan(ctx context.Context, in PredictPlanInput) (*PredictPlanResult, error)
	PlanCards(raw json.RawMessage) (studyplan.Board, error)
	ListPlans(ctx context.Context) ([]PlanSummary, error)
	CreatePlan(ctx context.Context, in CreatePlanInput) (*PlanSummary, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*PlanDetail, error)
	UpdateCardStatus(ctx context.Context, planID uuid.UUID, in CardUpdate) (*CardUpdateResult, error)
	UpdateCardNotes(ctx context.Context, planID uuid.UUID, in CardUpdate) (*CardUpdateResult, error)
}

type studyPlanService struct {
	log        *logger.Logger
	fetcher    PlanFetcher
	normalizer *studyplan.Normalizer
	cache      redisclient.PlanCache
	planRepo   repos.StudyPlanRepo
	cardRepo   repos.StudyCardRepo
}

// NewStudyPlanService wires plan generation. cache and the repos may be nil:
// without a cache every request reaches the model, without repos nothing is stored.
func NewStudyPlanService(
	log *logger.Logger,
	fetcher PlanFetcher,
	cache redisclient.PlanCache,
	planRepo repos.StudyPlanRepo,
	cardRepo repos.StudyCardRepo,
) StudyPlanService {
	return &studyPlanService{
		log:        log.With("service", "StudyPlanService"),
		fetcher:    fetcher,
		normalizer: studyplan.NewNormalizer(log),
		cache:      cache,
		planRepo:   planRepo,
		cardRepo:   cardRepo,
	}
}

func (s *studyPlanService) Enums() studyplan.EnumSet { return studyplan.Enums() }

func (s *studyPlanService) PredictPlan(ctx context.Context, in PredictPlanInput) (*PredictPlanResult, error) {
	ctx = ctxutil.Default(ctx)
	profile := in.Profile.Normalized()
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	weeks := in.Weeks
	if weeks == 0 {
		weeks = DefaultWeeks
	}
	if weeks < 1 || weeks > MaxWeeks {
		return nil, &studyplan.ValidationError{Field: "semanas", Value: fmt.Sprint(in.Weeks)}
	}

	classification := studyplan.Classify(profile)
	skeleton, err := studyplan.BuildSkeleton(classification.Label, profile.Objective, profile.Topic)
	if err != nil {
		return nil, err
	}
	out := &PredictPlanResult{Classification: classification, Skeleton: skeleton, Weeks: weeks}
	if !in.UseModel {
		return out, nil
	}

	weeklyHours := float64(profile.WeeklyHours)
	raw, err := s.fetch(ctx, completion.FetchRequest{
		Skeleton:    skeleton,
		Weeks:       weeks,
		WeeklyHours: &weeklyHours,
		Model:       in.Model,
		TokenCap:    in.MaxTokens,
	})
	if err != nil {
		s.log.Error("plan generation failed",
			"label", classification.Label,
			"request_id", ctxutil.RequestID(ctx),
			"error", err,
		)
		out.Generation = generationError(err)
		return out, nil
	}

	raw.EnsureTaskStatus()
	plan := s.normalizer.Normalize(raw)

	stored := false
	meta := &PlanMeta{
		PlanTitle:    plan.Title,
		LearningType: string(plan.LearningType),
		Tema:         plan.Topic,
		PerfilLabel:  plan.ProfileLabel,
		Semanas:      plan.Weeks,
		Version:      plans.CurrentVersion,
	}
	out.Plan = meta
	out.Stored = &stored

	if s.planRepo == nil {
		out.Cards = make([]CardView, 0, len(plan.Cards))
		for _, c := range plan.Cards {
			out.Cards = append(out.Cards, cardFromPlan(c))
		}
		return out, nil
	}

	row, err := plans.FromPlan(plan)
	if err == nil {
		row, err = s.planRepo.CreateWithCards(dbctx.Context{Ctx: ctx}, row)
	}
	if err != nil {
		s.log.Error("plan not stored", "error", err)
		out.Plan, out.Stored = nil, nil
		out.Generation = &GenerationError{Error: err.Error(), Kind: KindPersistence}
		return out, nil
	}
	stored = true
	meta.ID = &row.ID
	out.PlanID = &row.ID
	out.Cards = make([]CardView, 0, len(row.Cards))
	for _, c := range row.Cards {
		out.Cards = append(out.Cards, cardFromRow(c))
	}
	return out, nil
}

// fetch consults the cache before the model. Cache failures only cost a model call.
func (s *studyPlanService) fetch(ctx context.Context, req completion.FetchRequest) (*studyplan.RawPlan, error) {
	if s.fetcher == nil {
		return nil, &completion.ConfigurationError{Reason: "plan generation is not configured"}
	}
	var key string
	if s.cache != nil {
		model := strings.TrimSpace(req.Model)
		if model == "" {
			model = s.fetcher.Model()
		}
		k, err := redisclient.PlanKey(req.Skeleton, req.Weeks, req.WeeklyHours, model)
		if err == nil {
			key = k
			cached, ok, err := s.cache.Get(ctx, key)
			if err != nil {
				s.log.Warn("plan cache read failed", "error", err)
			} else if ok {
				s.log.Info("plan served from cache", "key", key)
				return cached, nil
			}
		}
	}

	raw, err := s.fetcher.FetchPlan(ctx, req)
	if err != nil {
		return nil, err
	}
	if key != "" {
		if err := s.cache.Set(ctx, key, raw); err != nil {
			s.log.Warn("plan cache write failed", "error", err)
		}
	}
	return raw, nil
}

func (s *studyPlanService) PlanCards(raw json.RawMessage) (studyplan.Board, error) {
	plan, err := studyplan.ParseRawPlan(raw)
	if err != nil {
		return studyplan.Board{}, err
	}
	return studyplan.WeekCards(plan), nil
}

func (s *studyPlanService) ListPlans(ctx context.Context) ([]PlanSummary, error) {
	if s.planRepo == nil {
		return nil, ErrStorageDisabled
	}
	rows, err := s.planRepo.List(dbctx.Context{Ctx: ctxutil.Default(ctx)}, listLimit)
	if err != nil {
		return nil, err
	}
	out := make([]PlanSummary, 0, len(rows))
	for _, p := range rows {
		out = append(out, PlanSummary{PlanMeta: metaFromRow(p), CreatedAt: p.CreatedAt})
	}
	return out, nil
}

func (s *studyPlanService) CreatePlan(ctx context.Context, in CreatePlanInput) (*PlanSummary, error) {
	if s.planRepo == nil {
		return nil, ErrStorageDisabled
	}
	raw, err := studyplan.ParseRawPlan(in.Data)
	if err != nil {
		return nil, &studyplan.ValidationError{Field: "data", Value: err.Error()}
	}
	weeks := 0
	if in.Weeks != nil {
		if *in.Weeks < 0 || *in.Weeks > MaxWeeks {
			return nil, &studyplan.ValidationError{Field: "semanas", Value: fmt.Sprint(*in.Weeks)}
		}
		weeks = *in.Weeks
	}
	topic := ""
	if in.Topic != nil && strings.TrimSpace(*in.Topic) != "" {
		topic = *in.Topic
	} else if raw.Topic != nil {
		topic = *raw.Topic
	}

	raw.EnsureTaskStatus()
	row, err := plans.FromRawPlan(raw, topic, weeks)
	if err != nil {
		return nil, err
	}
	row, err = s.planRepo.CreateWithCards(dbctx.Context{Ctx: ctxutil.Default(ctx)}, row)
	if err != nil {
		return nil, err
	}
	s.log.Info("client plan stored", "plan_id", row.ID, "tasks", raw.TaskCount())
	return &PlanSummary{PlanMeta: metaFromRow(row), CreatedAt: row.CreatedAt}, nil
}

func (s *studyPlanService) GetPlan(ctx context.Context, id uuid.UUID) (*PlanDetail, error) {
	if s.planRepo == nil {
		return nil, ErrStorageDisabled
	}
	p, err := s.planRepo.GetByID(dbctx.Context{Ctx: ctxutil.Default(ctx)}, id, true)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPlanNotFound
	}
	detail := &PlanDetail{
		PlanMeta:    metaFromRow(p),
		CreatedAt:   p.CreatedAt,
		RawResponse: json.RawMessage(p.RawResponse),
		Cards:       make([]CardView, 0, len(p.Cards)),
	}
	for _, c := range p.Cards {
		detail.Cards = append(detail.Cards, cardFromRow(c))
	}
	if len(detail.Cards) == 0 && len(p.RawResponse) > 0 {
		if raw, err := studyplan.ParseRawPlan(p.RawResponse); err == nil {
			detail.Cards = cardsFromBoard(studyplan.WeekCards(raw))
		}
	}
	return detail, nil
}

func (s *studyPlanService) UpdateCardStatus(ctx context.Context, planID uuid.UUID, in CardUpdate) (*CardUpdateResult, error) {
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status == "" {
		return nil, ErrInvalidStatus
	}
	return s.updateCard(ctx, planID, in.CardID, func(dbc dbctx.Context, card *plans.StudyCard) error {
		return s.cardRepo.UpdateColumnKey(dbc, card.ID, status)
	})
}

func (s *studyPlanService) UpdateCardNotes(ctx context.Context, planID uuid.UUID, in CardUpdate) (*CardUpdateResult, error) {
	return s.updateCard(ctx, planID, in.CardID, func(dbc dbctx.Context, card *plans.StudyCard) error {
		return s.cardRepo.UpdateNotes(dbc, card.ID, in.Notes)
	})
}

func (s *studyPlanService) updateCard(ctx context.Context, planID uuid.UUID, cardID string, apply func(dbctx.Context, *plans.StudyCard) error) (*CardUpdateResult, error) {
	if s.planRepo == nil || s.cardRepo == nil {
		return nil, ErrStorageDisabled
	}
	dbc := dbctx.Context{Ctx: ctxutil.Default(ctx)}
	plan, err := s.planRepo.GetByID(dbc, planID, false)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	card, err := s.cardRepo.GetByIdentifier(dbc, plan.ID, strings.TrimSpace(cardID))
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrCardNotFound
	}
	if err := apply(dbc, card); err != nil {
		return nil, err
	}
	return &CardUpdateResult{OK: true, PlanID: plan.ID, CardID: card.Identifier()}, nil
}
