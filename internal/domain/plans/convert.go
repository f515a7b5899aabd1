package plans

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/yungbote/studyplan-backend/internal/modules/studyplan"
)

const CurrentVersion = 2

// FromPlan builds the rows for a normalized plan. Cards keep their order.
func FromPlan(p *studyplan.Plan) (*StudyPlan, error) {
	if p == nil {
		return nil, fmt.Errorf("nil plan")
	}
	raw, err := json.Marshal(p.Raw)
	if err != nil {
		return nil, fmt.Errorf("encode raw plan: %w", err)
	}
	row := &StudyPlan{
		PlanTitle:    p.Title,
		LearningType: string(p.LearningType),
		Tema:         p.Topic,
		PerfilLabel:  p.ProfileLabel,
		Semanas:      p.Weeks,
		Version:      CurrentVersion,
		RawResponse:  datatypes.JSON(raw),
		Cards:        make([]StudyCard, 0, len(p.Cards)),
	}
	for _, c := range p.Cards {
		card, err := fromCard(c)
		if err != nil {
			return nil, err
		}
		row.Cards = append(row.Cards, card)
	}
	return row, nil
}

func fromCard(c studyplan.Card) (StudyCard, error) {
	deps := c.DependsOn
	if deps == nil {
		deps = []string{}
	}
	depsJSON, err := json.Marshal(deps)
	if err != nil {
		return StudyCard{}, fmt.Errorf("encode depends_on: %w", err)
	}
	rawJSON, err := json.Marshal(c.Raw)
	if err != nil {
		return StudyCard{}, fmt.Errorf("encode raw task: %w", err)
	}
	return StudyCard{
		SourceID:        c.ID,
		Title:           c.Title,
		Description:     c.Description,
		Instructions:    c.Instructions,
		StageSuggestion: c.StageSuggestion,
		ColumnKey:       c.ColumnKey,
		Order:           c.Order,
		Type:            string(c.Type),
		NeedsReview:     c.NeedsReview,
		ReviewAfterDays: c.ReviewAfterDays,
		EffortMinutes:   c.EffortMinutes,
		Week:            c.Week,
		DependsOn:       datatypes.JSON(depsJSON),
		Notes:           c.Notes,
		Raw:             datatypes.JSON(rawJSON),
	}, nil
}

// FromRawPlan builds a plan row without cards for a plan supplied as-is.
// Readers rebuild its cards from RawResponse.
func FromRawPlan(raw *studyplan.RawPlan, topic string, weeks int) (*StudyPlan, error) {
	if raw == nil {
		return nil, fmt.Errorf("nil plan")
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode raw plan: %w", err)
	}
	return &StudyPlan{
		PlanTitle:    topic,
		LearningType: string(studyplan.LearningDefault),
		Tema:         topic,
		PerfilLabel:  raw.ProfileLabel,
		Semanas:      weeks,
		Version:      CurrentVersion,
		RawResponse:  datatypes.JSON(data),
	}, nil
}
