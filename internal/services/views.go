package services

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studyplan-backend/internal/domain/plans"
	"github.com/yungbote/studyplan-backend/internal/modules/studyplan"
)

// CardView is the card shape returned by the API for both stored and
// unstored plans. ID is the task id when the model gave one.
type CardView struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     *string         `json:"description"`
	Instructions    *string         `json:"instructions"`
	Order           *int            `json:"order"`
	Type            string          `json:"type"`
	NeedsReview     bool            `json:"needs_review"`
	ReviewAfterDays *int            `json:"review_after_days"`
	EffortMinutes   *int            `json:"effort_minutes"`
	StageSuggestion string          `json:"stage_suggestion"`
	ColumnKey       string          `json:"column_key"`
	Week            *int            `json:"week"`
	DependsOn       []string        `json:"depends_on"`
	Raw             json.RawMessage `json:"raw"`
	Notes           *string         `json:"notes"`
}

type PlanMeta struct {
	ID           *uuid.UUID `json:"id"`
	PlanTitle    string     `json:"plan_title"`
	LearningType string     `json:"learning_type"`
	Tema         string     `json:"tema"`
	PerfilLabel  *string    `json:"perfil_label"`
	Semanas      int        `json:"semanas"`
	Version      int        `json:"version"`
}

type PlanSummary struct {
	PlanMeta
	CreatedAt time.Time `json:"created_at"`
}

type PlanDetail struct {
	PlanMeta
	CreatedAt   time.Time       `json:"created_at"`
	RawResponse json.RawMessage `json:"raw_response"`
	Cards       []CardView      `json:"cards"`
}

func cardFromPlan(c studyplan.Card) CardView {
	raw, err := json.Marshal(c.Raw)
	if err != nil {
		raw = json.RawMessage("{}")
	}
	order := c.Order
	return CardView{
		ID:              c.ID,
		Title:           c.Title,
		Description:     c.Description,
		Instructions:    c.Instructions,
		Order:           &order,
		Type:            string(c.Type),
		NeedsReview:     c.NeedsReview,
		ReviewAfterDays: c.ReviewAfterDays,
		EffortMinutes:   c.EffortMinutes,
		StageSuggestion: c.StageSuggestion,
		ColumnKey:       c.ColumnKey,
		Week:            c.Week,
		DependsOn:       nonNil(c.DependsOn),
		Raw:             raw,
		Notes:           c.Notes,
	}
}

func cardFromRow(c plans.StudyCard) CardView {
	var deps []string
	if len(c.DependsOn) > 0 {
		_ = json.Unmarshal(c.DependsOn, &deps)
	}
	raw := json.RawMessage(c.Raw)
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	order := c.Order
	return CardView{
		ID:              c.Identifier(),
		Title:           c.Title,
		Description:     c.Description,
		Instructions:    c.Instructions,
		Order:           &order,
		Type:            c.Type,
		NeedsReview:     c.NeedsReview,
		ReviewAfterDays: c.ReviewAfterDays,
		EffortMinutes:   c.EffortMinutes,
		StageSuggestion: c.StageSuggestion,
		ColumnKey:       c.ColumnKey,
		Week:            c.Week,
		DependsOn:       nonNil(deps),
		Raw:             raw,
		Notes:           c.Notes,
	}
}

// cardsFromBoard rebuilds cards for a stored plan that has raw output but no
// card rows. Such cards carry no order.
func cardsFromBoard(b studyplan.Board) []CardView {
	out := []CardView{}
	for _, w := range b.Weeks {
		for _, c := range w.Cards {
			raw, err := json.Marshal(c)
			if err != nil {
				raw = json.RawMessage("{}")
			}
			title := c.Title
			if title == "" {
				title = "Tarefa"
			}
			desc := c.Description
			notes := c.Notes
			out = append(out, CardView{
				ID:              c.ID,
				Title:           title,
				Description:     &desc,
				Instructions:    &desc,
				Type:            c.Type,
				StageSuggestion: studyplan.ClassifyCardType(c.Type).Stage(),
				ColumnKey:       c.Status,
				Week:            w.Week,
				DependsOn:       []string{},
				Raw:             raw,
				Notes:           &notes,
			})
		}
	}
	return out
}

func metaFromRow(p *plans.StudyPlan) PlanMeta {
	id := p.ID
	return PlanMeta{
		ID:           &id,
		PlanTitle:    p.PlanTitle,
		LearningType: p.LearningType,
		Tema:         p.Tema,
		PerfilLabel:  p.PerfilLabel,
		Semanas:      p.Semanas,
		Version:      p.Version,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
