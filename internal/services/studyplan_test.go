package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/studyplan-backend/internal/data/repos"
	"github.com/yungbote/studyplan-backend/internal/data/repos/testutil"
	"github.com/yungbote/studyplan-backend/internal/modules/studyplan"
	"github.com/yungbote/studyplan-backend/internal/modules/studyplan/completion"
	"github.com/yungbote/studyplan-backend/internal/platform/logger"
)

const algebraPlan = `{"tema":"Algebra","perfil_label":"B1","objetivo":"prova","carga_horas_semana":5,"semanas":1,
"plano":[{"semana":1,"objetivo_semana":"Base","tarefas":[
 {"id":"w1-1","title":"Equações","type":"teoria","hours":"2h30m","description":"Descrição: estudar equações\n\nComo fazer: resolver 10 exemplos"},
 {"title":"Simulado","type":"simulado","hours":"150m"}]}]}`

type fakeFetcher struct {
	calls int
	last  completion.FetchRequest
	body  string
	err   error
}

func (f *fakeFetcher) FetchPlan(ctx context.Context, req completion.FetchRequest) (*studyplan.RawPlan, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return studyplan.ParseRawPlan([]byte(f.body))
}

func (f *fakeFetcher) Model() string { return "gpt-4o-mini" }

type memCache struct {
	items map[string]*studyplan.RawPlan
	sets  int
}

func (m *memCache) Get(ctx context.Context, key string) (*studyplan.RawPlan, bool, error) {
	p, ok := m.items[key]
	return p, ok, nil
}

func (m *memCache) Set(ctx context.Context, key string, plan *studyplan.RawPlan) error {
	m.items[key] = plan
	m.sets++
	return nil
}

func (m *memCache) Close() error { return nil }

func testProfile() studyplan.Profile {
	return studyplan.Profile{
		LearningStyle:       "balanceado",
		DifficultyTolerance: "media",
		Focus:               "medio",
		Resilience:          "media",
		Knowledge:           "intermediario",
		WeeklyHours:         5,
		Objective:           "prova",
		Topic:               "Algebra",
	}
}

func newStoredService(t *testing.T, f *fakeFetcher) StudyPlanService {
	t.Helper()
	db := testutil.DB(t)
	log := logger.NewNop()
	return NewStudyPlanService(log, f, nil, repos.NewStudyPlanRepo(db, log), repos.NewStudyCardRepo(db, log))
}

func TestPredictPlan_StoresNormalizedPlan(t *testing.T) {
	f := &fakeFetcher{body: algebraPlan}
	svc := newStoredService(t, f)

	res, err := svc.PredictPlan(context.Background(), PredictPlanInput{Profile: testProfile(), UseModel: true})
	if err != nil {
		t.Fatalf("PredictPlan: %v", err)
	}
	if res.Generation != nil {
		t.Fatalf("generation error: %+v", res.Generation)
	}
	if res.Classification.Label != "B1" || res.Skeleton.Label != "B1" || res.Weeks != DefaultWeeks {
		t.Fatalf("classification=%+v weeks=%d", res.Classification, res.Weeks)
	}
	if f.last.Weeks != 4 || f.last.WeeklyHours == nil || *f.last.WeeklyHours != 5 {
		t.Fatalf("fetch request=%+v", f.last)
	}
	if res.Stored == nil || !*res.Stored || res.PlanID == nil || res.Plan.ID == nil {
		t.Fatalf("plan not stored: %+v", res)
	}
	if res.Plan.LearningType != "prova" || res.Plan.PlanTitle != "Plano De Algebra (prova)" {
		t.Fatalf("plan=%+v", res.Plan)
	}
	if len(res.Cards) != 2 {
		t.Fatalf("cards=%d", len(res.Cards))
	}
	first, second := res.Cards[0], res.Cards[1]
	if first.ID != "w1-1" || *first.Order != 1 || *first.EffortMinutes != 150 || !first.NeedsReview || *first.ReviewAfterDays != 2 {
		t.Fatalf("first=%+v", first)
	}
	if *first.Description != "estudar equações" || *first.Instructions != "resolver 10 exemplos" {
		t.Fatalf("description=%q instructions=%q", *first.Description, *first.Instructions)
	}
	if second.ID != "card-2" || second.Type != "revisao" || *second.ReviewAfterDays != 1 || second.ColumnKey != "novo" {
		t.Fatalf("second=%+v", second)
	}

	detail, err := svc.GetPlan(context.Background(), *res.PlanID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if len(detail.Cards) != 2 || detail.Cards[1].ID != "card-2" || len(detail.RawResponse) == 0 {
		t.Fatalf("detail=%+v", detail)
	}

	list, err := svc.ListPlans(context.Background())
	if err != nil {
		t.Fatalf("ListPlans: %v", err)
	}
	listed := false
	for _, p := range list {
		if *p.ID == *res.PlanID {
			listed = true
		}
	}
	if !listed {
		t.Fatalf("ListPlans: plan %s missing", *res.PlanID)
	}
}

func TestPredictPlan_GenerationErrorInBody(t *testing.T) {
	f := &fakeFetcher{err: &completion.MalformedOutputError{Reason: "empty content", Attempts: 4, ArtifactPath: "artifacts/x.json"}}
	svc := NewStudyPlanService(logger.NewNop(), f, nil, nil, nil)

	res, err := svc.PredictPlan(context.Background(), PredictPlanInput{Profile: testProfile(), UseModel: true, Weeks: 6})
	if err != nil {
		t.Fatalf("PredictPlan: %v", err)
	}
	if res.Generation == nil || res.Generation.Kind != KindMalformedOutput || res.Generation.ArtifactPath != "artifacts/x.json" {
		t.Fatalf("generation=%+v", res.Generation)
	}
	if res.Plan != nil || res.Cards != nil || res.Weeks != 6 {
		t.Fatalf("no plan expected: %+v", res)
	}
}

func TestPredictPlan_Validation(t *testing.T) {
	svc := NewStudyPlanService(logger.NewNop(), &fakeFetcher{}, nil, nil, nil)
	p := testProfile()
	p.Objective = "viagem"
	_, err := svc.PredictPlan(context.Background(), PredictPlanInput{Profile: p})
	var vErr *studyplan.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "objetivo_estudo" {
		t.Fatalf("err=%v", err)
	}
	_, err = svc.PredictPlan(context.Background(), PredictPlanInput{Profile: testProfile(), Weeks: 53})
	if !errors.As(err, &vErr) || vErr.Field != "semanas" {
		t.Fatalf("err=%v", err)
	}
}

func TestPredictPlan_WithoutModelSkipsFetch(t *testing.T) {
	f := &fakeFetcher{body: algebraPlan}
	svc := NewStudyPlanService(logger.NewNop(), f, nil, nil, nil)
	res, err := svc.PredictPlan(context.Background(), PredictPlanInput{Profile: testProfile()})
	if err != nil {
		t.Fatalf("PredictPlan: %v", err)
	}
	if f.calls != 0 || res.Plan != nil || res.Stored != nil {
		t.Fatalf("calls=%d res=%+v", f.calls, res)
	}
}

func TestPredictPlan_UnstoredCardsAndCache(t *testing.T) {
	f := &fakeFetcher{body: algebraPlan}
	cache := &memCache{items: map[string]*studyplan.RawPlan{}}
	svc := NewStudyPlanService(logger.NewNop(), f, cache, nil, nil)

	for i := 0; i < 2; i++ {
		res, err := svc.PredictPlan(context.Background(), PredictPlanInput{Profile: testProfile(), UseModel: true})
		if err != nil {
			t.Fatalf("PredictPlan: %v", err)
		}
		if res.Stored == nil || *res.Stored || len(res.Cards) != 2 || res.PlanID != nil {
			t.Fatalf("res=%+v", res)
		}
	}
	if f.calls != 1 || cache.sets != 1 {
		t.Fatalf("fetch calls=%d cache sets=%d", f.calls, cache.sets)
	}
}

func TestUpdateCards(t *testing.T) {
	f := &fakeFetcher{body: algebraPlan}
	svc := newStoredService(t, f)
	ctx := context.Background()
	res, err := svc.PredictPlan(ctx, PredictPlanInput{Profile: testProfile(), UseModel: true})
	if err != nil || res.PlanID == nil {
		t.Fatalf("PredictPlan: %+v err=%v", res, err)
	}
	planID := *res.PlanID

	out, err := svc.UpdateCardStatus(ctx, planID, CardUpdate{Week: 1, CardID: "card-2", Status: " Concluido "})
	if err != nil || !out.OK || out.CardID != "card-2" {
		t.Fatalf("UpdateCardStatus: %+v err=%v", out, err)
	}
	if _, err := svc.UpdateCardNotes(ctx, planID, CardUpdate{Week: 1, CardID: "w1-1", Notes: "ok"}); err != nil {
		t.Fatalf("UpdateCardNotes: %v", err)
	}
	detail, err := svc.GetPlan(ctx, planID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if detail.Cards[1].ColumnKey != "concluido" || detail.Cards[0].Notes == nil || *detail.Cards[0].Notes != "ok" {
		t.Fatalf("cards=%+v", detail.Cards)
	}

	if _, err := svc.UpdateCardStatus(ctx, planID, CardUpdate{CardID: "card-2", Status: "  "}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("blank status err=%v", err)
	}
	if _, err := svc.UpdateCardStatus(ctx, planID, CardUpdate{CardID: "zzz", Status: "novo"}); !errors.Is(err, ErrCardNotFound) {
		t.Fatalf("missing card err=%v", err)
	}
	if _, err := svc.UpdateCardNotes(ctx, uuid.New(), CardUpdate{CardID: "card-2"}); !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("missing plan err=%v", err)
	}
}

func TestPlanCardsAndStorageDisabled(t *testing.T) {
	svc := NewStudyPlanService(logger.NewNop(), nil, nil, nil, nil)
	board, err := svc.PlanCards(json.RawMessage(algebraPlan))
	if err != nil {
		t.Fatalf("PlanCards: %v", err)
	}
	if board.Topic != "Algebra" || len(board.Weeks) != 1 || board.Weeks[0].Cards[1].Status != "novo" {
		t.Fatalf("board=%+v", board)
	}
	if _, err := svc.PlanCards(json.RawMessage(`[1,2]`)); err == nil {
		t.Fatalf("expected error for non-object plan")
	}
	if _, err := svc.ListPlans(context.Background()); !errors.Is(err, ErrStorageDisabled) {
		t.Fatalf("err=%v", err)
	}
}

func TestCreatePlan_StoresClientPlan(t *testing.T) {
	svc := newStoredService(t, &fakeFetcher{})
	ctx := context.Background()
	data := json.RawMessage(`{"tema":"Algebra","perfil_label":"B1","extra":{"a":1},
"plano":[{"semana":1,"tarefas":[{"id":"w1-1","title":"Equações","hours":2},{"id":"w1-2","title":"Lista","status":"feito"}]}]}`)
	weeks := 3

	meta, err := svc.CreatePlan(ctx, CreatePlanInput{Data: data, Weeks: &weeks})
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if meta.ID == nil || meta.PlanTitle != "Algebra" || meta.Tema != "Algebra" || meta.LearningType != "default" ||
		meta.Version != 2 || meta.Semanas != 3 || meta.PerfilLabel == nil || *meta.PerfilLabel != "B1" {
		t.Fatalf("meta=%+v", meta)
	}

	detail, err := svc.GetPlan(ctx, *meta.ID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	raw := string(detail.RawResponse)
	for _, want := range []string{`"extra":{"a":1}`, `"hours":2`, `"status":"novo"`, `"status":"feito"`} {
		if !strings.Contains(raw, want) {
			t.Fatalf("raw_response missing %s: %s", want, raw)
		}
	}
	if len(detail.Cards) != 2 || detail.Cards[0].ID != "w1-1" || detail.Cards[0].ColumnKey != "novo" || detail.Cards[1].ColumnKey != "feito" {
		t.Fatalf("cards=%+v", detail.Cards)
	}

	topic := "Cálculo"
	meta, err = svc.CreatePlan(ctx, CreatePlanInput{Data: data, Topic: &topic})
	if err != nil || meta.Tema != "Cálculo" || meta.PlanTitle != "Cálculo" || meta.Semanas != 0 {
		t.Fatalf("meta=%+v err=%v", meta, err)
	}
	blank := " "
	meta, err = svc.CreatePlan(ctx, CreatePlanInput{Data: data, Topic: &blank})
	if err != nil || meta.Tema != "Algebra" {
		t.Fatalf("blank topic meta=%+v err=%v", meta, err)
	}

	var vErr *studyplan.ValidationError
	if _, err := svc.CreatePlan(ctx, CreatePlanInput{Data: json.RawMessage(`[1]`)}); !errors.As(err, &vErr) || vErr.Field != "data" {
		t.Fatalf("array data err=%v", err)
	}
	bad := -1
	if _, err := svc.CreatePlan(ctx, CreatePlanInput{Data: data, Weeks: &bad}); !errors.As(err, &vErr) || vErr.Field != "semanas" {
		t.Fatalf("negative weeks err=%v", err)
	}
}

func TestCreatePlan_StorageDisabled(t *testing.T) {
	svc := NewStudyPlanService(logger.NewNop(), nil, nil, nil, nil)
	if _, err := svc.CreatePlan(context.Background(), CreatePlanInput{Data: json.RawMessage(`{}`)}); !errors.Is(err, ErrStorageDisabled) {
		t.Fatalf("err=%v", err)
	}
}
