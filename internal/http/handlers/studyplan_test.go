package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/studyplan-backend/internal/modules/studyplan"
	"github.com/yungbote/studyplan-backend/internal/services"
)

type fakePlans struct {
	predictIn services.PredictPlanInput
	statusIn  services.CardUpdate
	createIn  services.CreatePlanInput
	err       error
}

func (f *fakePlans) Enums() studyplan.EnumSet { return studyplan.Enums() }

func (f *fakePlans) PredictPlan(ctx context.Context, in services.PredictPlanInput) (*services.PredictPlanResult, error) {
	f.predictIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &services.PredictPlanResult{
		Weeks:      in.Weeks,
		Generation: &services.GenerationError{Error: "configuration error: missing OPENAI_API_KEY", Kind: services.KindConfiguration},
	}, nil
}

func (f *fakePlans) PlanCards(raw json.RawMessage) (studyplan.Board, error) {
	p, err := studyplan.ParseRawPlan(raw)
	if err != nil {
		return studyplan.Board{}, err
	}
	return studyplan.WeekCards(p), nil
}

func (f *fakePlans) ListPlans(ctx context.Context) ([]services.PlanSummary, error) {
	return nil, services.ErrStorageDisabled
}

func (f *fakePlans) CreatePlan(ctx context.Context, in services.CreatePlanInput) (*services.PlanSummary, error) {
	f.createIn = in
	if f.err != nil {
		return nil, f.err
	}
	id := uuid.New()
	return &services.PlanSummary{PlanMeta: services.PlanMeta{ID: &id, Tema: "Go", Version: 2}}, nil
}

func (f *fakePlans) GetPlan(ctx context.Context, id uuid.UUID) (*services.PlanDetail, error) {
	return nil, services.ErrPlanNotFound
}

func (f *fakePlans) UpdateCardStatus(ctx context.Context, planID uuid.UUID, in services.CardUpdate) (*services.CardUpdateResult, error) {
	f.statusIn = in
	return &services.CardUpdateResult{OK: true, PlanID: planID, CardID: in.CardID}, nil
}

func (f *fakePlans) UpdateCardNotes(ctx context.Context, planID uuid.UUID, in services.CardUpdate) (*services.CardUpdateResult, error) {
	return nil, services.ErrCardNotFound
}

func newTestRouter(f *fakePlans) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewStudyPlanHandler(f)
	r := gin.New()
	r.GET("/enums", h.Enums)
	r.POST("/predict-plan", h.PredictPlan)
	r.POST("/plan/cards", h.PlanCards)
	r.GET("/plans", h.ListPlans)
	r.POST("/plans", h.CreatePlan)
	r.GET("/plans/:id", h.GetPlan)
	r.PATCH("/plans/:id/card-status", h.UpdateCardStatus)
	r.PATCH("/plans/:id/card-notes", h.UpdateCardNotes)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

const predictBody = `{"perfil":{"estilo_aprendizado":"pratico","tolerancia_dificuldade":"alta","nivel_foco":"longo","resiliencia_estudo":"media"},
"plano":{"tema_estudo":"Go","conhecimento_tema":"iniciante","tempo_semanal":8,"objetivo_estudo":"projeto"}`

func TestPredictPlanHandler(t *testing.T) {
	f := &fakePlans{}
	r := newTestRouter(f)

	rec := do(r, http.MethodPost, "/predict-plan", predictBody+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	if !f.predictIn.UseModel || f.predictIn.Weeks != services.DefaultWeeks || f.predictIn.Profile.WeeklyHours != 8 || f.predictIn.Profile.Focus != "longo" {
		t.Fatalf("input=%+v", f.predictIn)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	gen, _ := body["plan_generation"].(map[string]any)
	if gen["kind"] != services.KindConfiguration {
		t.Fatalf("plan_generation=%v", body["plan_generation"])
	}

	rec = do(r, http.MethodPost, "/predict-plan", predictBody+`,"semanas":6,"use_gpt":false,"model":"m","max_tokens":900}`)
	if rec.Code != http.StatusOK || f.predictIn.UseModel || f.predictIn.Weeks != 6 || f.predictIn.Model != "m" || f.predictIn.MaxTokens != 900 {
		t.Fatalf("status=%d input=%+v", rec.Code, f.predictIn)
	}

	rec = do(r, http.MethodPost, "/predict-plan", predictBody+`,"semanas":0}`)
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), "invalid_semanas") {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}

	rec = do(r, http.MethodPost, "/predict-plan", `{"perfil":{}}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d", rec.Code)
	}

	f.err = &studyplan.ValidationError{Field: "objetivo_estudo", Value: "x"}
	rec = do(r, http.MethodPost, "/predict-plan", predictBody+`}`)
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), "invalid_objetivo_estudo") {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
}

func TestPlanCardsHandler(t *testing.T) {
	r := newTestRouter(&fakePlans{})
	rec := do(r, http.MethodPost, "/plan/cards", `{"plan":{"tema":"Go","plano":[{"semana":1,"tarefas":["ler o tour",{"id":"a","title":"T","description":"#1 (T)\n\nFazer"}]}]}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	var board studyplan.Board
	if err := json.Unmarshal(rec.Body.Bytes(), &board); err != nil {
		t.Fatalf("decode: %v", err)
	}
	cards := board.Weeks[0].Cards
	if len(cards) != 2 || cards[0].ID != "task-1" || cards[0].Title != "Tarefa" || cards[1].Description != "Fazer" || cards[1].Status != "novo" {
		t.Fatalf("cards=%+v", cards)
	}

	rec = do(r, http.MethodPost, "/plan/cards", `{"plan":"nope"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestCreatePlanHandler(t *testing.T) {
	f := &fakePlans{}
	r := newTestRouter(f)

	rec := do(r, http.MethodPost, "/plans", `{"data":{"tema":"Go","plano":[]},"semanas":3,"tema":"Golang"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"version":2`) {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	if f.createIn.Weeks == nil || *f.createIn.Weeks != 3 || f.createIn.Topic == nil || *f.createIn.Topic != "Golang" {
		t.Fatalf("input=%+v", f.createIn)
	}
	if !strings.Contains(string(f.createIn.Data), `"plano"`) {
		t.Fatalf("data=%s", f.createIn.Data)
	}

	rec = do(r, http.MethodPost, "/plans", `{"data":{}}`)
	if rec.Code != http.StatusOK || f.createIn.Weeks != nil || f.createIn.Topic != nil {
		t.Fatalf("status=%d input=%+v", rec.Code, f.createIn)
	}

	if rec := do(r, http.MethodPost, "/plans", `{"tema":"Go"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing data status=%d", rec.Code)
	}

	f.err = &studyplan.ValidationError{Field: "data", Value: "plan is not a JSON object"}
	rec = do(r, http.MethodPost, "/plans", `{"data":[1]}`)
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), "invalid_data") {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}

	f.err = services.ErrStorageDisabled
	if rec := do(r, http.MethodPost, "/plans", `{"data":{}}`); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("storage disabled status=%d", rec.Code)
	}
}

func TestPlanErrorMapping(t *testing.T) {
	f := &fakePlans{}
	r := newTestRouter(f)

	if rec := do(r, http.MethodGet, "/plans", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("list status=%d", rec.Code)
	}
	if rec := do(r, http.MethodGet, "/plans/not-a-uuid", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status=%d", rec.Code)
	}
	id := uuid.New().String()
	if rec := do(r, http.MethodGet, "/plans/"+id, ""); rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "plan_not_found") {
		t.Fatalf("get status=%d body=%s", rec.Code, rec.Body)
	}

	rec := do(r, http.MethodPatch, "/plans/"+id+"/card-status", `{"semana":1,"card_id":"c1","status":"feito"}`)
	if rec.Code != http.StatusOK || f.statusIn.Status != "feito" || f.statusIn.Week != 1 {
		t.Fatalf("status=%d in=%+v", rec.Code, f.statusIn)
	}
	if rec := do(r, http.MethodPatch, "/plans/"+id+"/card-status", `{"semana":1}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing card status=%d", rec.Code)
	}
	if rec := do(r, http.MethodPatch, "/plans/"+id+"/card-notes", `{"semana":1,"card_id":"c1","notes":"x"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("notes status=%d", rec.Code)
	}
}

func TestEnumsAndHealth(t *testing.T) {
	r := newTestRouter(&fakePlans{})
	rec := do(r, http.MethodGet, "/enums", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"nivel_foco_alias"`) {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}

	h := NewHealthHandler()
	r.GET("/healthcheck", h.HealthCheck)
	rec = do(r, http.MethodGet, "/healthcheck", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("health=%d %s", rec.Code, rec.Body)
	}
}
