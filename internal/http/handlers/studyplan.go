package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/studyplan-backend/internal/http/response"
	"github.com/yungbote/studyplan-backend/internal/modules/studyplan"
	"github.com/yungbote/studyplan-backend/internal/platform/apierr"
	"github.com/yungbote/studyplan-backend/internal/services"
)

type StudyPlanHandler struct {
	plans services.StudyPlanService
}

func NewStudyPlanHandler(plans services.StudyPlanService) *StudyPlanHandler {
	return &StudyPlanHandler{plans: plans}
}

type behavioralProfileIn struct {
	LearningStyle       string `json:"estilo_aprendizado" binding:"required"`
	DifficultyTolerance string `json:"tolerancia_dificuldade" binding:"required"`
	Focus               string `json:"nivel_foco" binding:"required"`
	Resilience          string `json:"resiliencia_estudo" binding:"required"`
}

type studyPlanIn struct {
	Topic       string `json:"tema_estudo" binding:"required"`
	Knowledge   string `json:"conhecimento_tema" binding:"required"`
	WeeklyHours int    `json:"tempo_semanal"`
	Objective   string `json:"objetivo_estudo" binding:"required"`
}

type predictPlanRequest struct {
	Profile   behavioralProfileIn `json:"perfil" binding:"required"`
	Plan      studyPlanIn         `json:"plano" binding:"required"`
	Weeks     *int                `json:"semanas"`
	UseGPT    *bool               `json:"use_gpt"`
	Model     string              `json:"model"`
	MaxTokens int                 `json:"max_tokens"`
}

// GET /api/v1/enums
func (h *StudyPlanHandler) Enums(c *gin.Context) {
	response.RespondOK(c, h.plans.Enums())
}

// POST /api/v1/predict-plan
func (h *StudyPlanHandler) PredictPlan(c *gin.Context) {
	var req predictPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusUnprocessableEntity, "invalid_request", err)
		return
	}
	weeks := services.DefaultWeeks
	if req.Weeks != nil {
		if *req.Weeks < 1 {
			response.RespondAPIError(c, mapPlanError(&studyplan.ValidationError{Field: "semanas", Value: fmt.Sprint(*req.Weeks)}))
			return
		}
		weeks = *req.Weeks
	}
	useModel := true
	if req.UseGPT != nil {
		useModel = *req.UseGPT
	}

	res, err := h.plans.PredictPlan(c.Request.Context(), services.PredictPlanInput{
		Profile: studyplan.Profile{
			LearningStyle:       req.Profile.LearningStyle,
			DifficultyTolerance: req.Profile.DifficultyTolerance,
			Focus:               req.Profile.Focus,
			Resilience:          req.Profile.Resilience,
			Knowledge:           req.Plan.Knowledge,
			WeeklyHours:         req.Plan.WeeklyHours,
			Objective:           req.Plan.Objective,
			Topic:               req.Plan.Topic,
		},
		Weeks:     weeks,
		UseModel:  useModel,
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		response.RespondAPIError(c, mapPlanError(err))
		return
	}
	response.RespondOK(c, res)
}

// POST /api/v1/plan/cards
func (h *StudyPlanHandler) PlanCards(c *gin.Context) {
	var req struct {
		Plan json.RawMessage `json:"plan" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusUnprocessableEntity, "invalid_request", err)
		return
	}
	board, err := h.plans.PlanCards(req.Plan)
	if err != nil {
		response.RespondError(c, http.StatusUnprocessableEntity, "invalid_plan", err)
		return
	}
	response.RespondOK(c, board)
}

// GET /api/v1/plans
func (h *StudyPlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.plans.ListPlans(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, mapPlanError(err))
		return
	}
	response.RespondOK(c, plans)
}

// POST /api/v1/plans
func (h *StudyPlanHandler) CreatePlan(c *gin.Context) {
	var req struct {
		Data    json.RawMessage `json:"data" binding:"required"`
		Semanas *int            `json:"semanas"`
		Tema    *string         `json:"tema"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusUnprocessableEntity, "invalid_request", err)
		return
	}
	plan, err := h.plans.CreatePlan(c.Request.Context(), services.CreatePlanInput{
		Data:  req.Data,
		Weeks: req.Semanas,
		Topic: req.Tema,
	})
	if err != nil {
		response.RespondAPIError(c, mapPlanError(err))
		return
	}
	response.RespondOK(c, plan)
}

// GET /api/v1/plans/:id
func (h *StudyPlanHandler) GetPlan(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_plan_id", err)
		return
	}
	plan, err := h.plans.GetPlan(c.Request.Context(), planID)
	if err != nil {
		response.RespondAPIError(c, mapPlanError(err))
		return
	}
	response.RespondOK(c, plan)
}

// PATCH /api/v1/plans/:id/card-status
func (h *StudyPlanHandler) UpdateCardStatus(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_plan_id", err)
		return
	}
	var req services.CardUpdate
	if err := c.ShouldBindJSON(&req); err != nil || req.CardID == "" {
		if err == nil {
			err = errors.New("card_id is required")
		}
		response.RespondError(c, http.StatusUnprocessableEntity, "invalid_request", err)
		return
	}
	out, err := h.plans.UpdateCardStatus(c.Request.Context(), planID, req)
	if err != nil {
		response.RespondAPIError(c, mapPlanError(err))
		return
	}
	response.RespondOK(c, out)
}

// PATCH /api/v1/plans/:id/card-notes
func (h *StudyPlanHandler) UpdateCardNotes(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_plan_id", err)
		return
	}
	var req services.CardUpdate
	if err := c.ShouldBindJSON(&req); err != nil || req.CardID == "" {
		if err == nil {
			err = errors.New("card_id is required")
		}
		response.RespondError(c, http.StatusUnprocessableEntity, "invalid_request", err)
		return
	}
	out, err := h.plans.UpdateCardNotes(c.Request.Context(), planID, req)
	if err != nil {
		response.RespondAPIError(c, mapPlanError(err))
		return
	}
	response.RespondOK(c, out)
}

func mapPlanError(err error) error {
	var vErr *studyplan.ValidationError
	switch {
	case errors.As(err, &vErr):
		return apierr.Invalid(vErr.Field, err)
	case errors.Is(err, services.ErrInvalidStatus):
		return apierr.Invalid("status", err)
	case errors.Is(err, services.ErrPlanNotFound):
		return apierr.NotFound("plan", err)
	case errors.Is(err, services.ErrCardNotFound):
		return apierr.NotFound("card", err)
	case errors.Is(err, services.ErrStorageDisabled):
		return apierr.Unavailable("storage_disabled", err)
	}
	return err
}
