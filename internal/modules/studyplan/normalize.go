package studyplan

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yungbote/studyplan-backend/internal/platform/logger"
)

const (
	defaultTopic     = "Plano de Estudos"
	defaultCardTitle = "Tarefa"
	defaultWeekCount = 4
)

var descriptionLabels = []string{"descricao:", "descrição:", "como fazer:"}

// Normalizer turns raw model output into a Plan. It performs no I/O; budget
// mismatches are reported through the logger only.
type Normalizer struct {
	log *logger.Logger
}

func NewNormalizer(log *logger.Logger) *Normalizer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Normalizer{log: log.With("service", "PlanNormalizer")}
}

func (n *Normalizer) Normalize(raw *RawPlan) *Plan {
	if raw == nil {
		raw = &RawPlan{}
	}
	topic := defaultTopic
	if raw.Topic != nil {
		topic = *raw.Topic
	}
	objective := ""
	if raw.Objective != nil {
		objective = strings.TrimSpace(*raw.Objective)
	}
	learningType := LearningTypeFor(objective)

	weeks := defaultWeekCount
	switch {
	case raw.Weeks != nil && *raw.Weeks != 0:
		weeks = *raw.Weeks
	case len(raw.Plan) > 0:
		weeks = len(raw.Plan)
	}

	plan := &Plan{
		Topic:        topic,
		ProfileLabel: raw.ProfileLabel,
		LearningType: learningType,
		Weeks:        weeks,
		Title:        planTitle(topic, objective),
		Cards:        make([]Card, 0, raw.TaskCount()),
		Raw:          raw,
	}

	order := 1
	for _, week := range raw.Plan {
		for _, task := range week.Tasks {
			if task.Malformed {
				continue
			}
			plan.Cards = append(plan.Cards, buildCard(task, week.Week, order, learningType))
			order++
		}
	}

	if raw.WeeklyHours != nil {
		for _, adv := range CheckWeeklyBudget(plan.Cards, *raw.WeeklyHours) {
			n.log.Warn("weekly effort inconsistent with declared budget",
				"week", adv.Week,
				"expected_minutes", adv.ExpectedMinutes,
				"actual_minutes", adv.ActualMinutes,
			)
		}
	}
	return plan
}

func buildCard(task RawTask, week *int, order int, lt LearningType) Card {
	id := fmt.Sprintf("card-%d", order)
	if task.ID != nil {
		id = *task.ID
	}
	title := defaultCardTitle
	if task.Title != nil {
		title = *task.Title
	}
	rawType := ""
	if task.Type != nil {
		rawType = *task.Type
	}
	ct := ClassifyCardType(rawType)
	needsReview, reviewDays := ReviewFor(lt, ct)

	var effort *int
	if task.Hours != nil {
		if m, ok := ParseMinutes(*task.Hours); ok {
			effort = &m
		}
	}
	column := DefaultTaskStatus
	if task.Status != nil {
		column = *task.Status
	}

	var desc, instr *string
	if task.Description != nil {
		desc, instr = splitDescription(*task.Description)
	}

	return Card{
		ID:              id,
		Title:           title,
		Description:     desc,
		Instructions:    instr,
		Order:           order,
		Type:            ct,
		NeedsReview:     needsReview,
		ReviewAfterDays: reviewDays,
		EffortMinutes:   effort,
		StageSuggestion: ct.Stage(),
		ColumnKey:       column,
		Week:            week,
		DependsOn:       []string{},
		Notes:           task.Notes,
		Raw:             task,
	}
}

// splitDescription separates the free description from the "how-to" part at
// the first blank line and drops known leading labels from both.
func splitDescription(text string) (*string, *string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	head, tail, found := strings.Cut(text, "\n\n")
	desc := cleanSegment(head)
	if !found {
		return desc, nil
	}
	return desc, cleanSegment(tail)
}

func cleanSegment(s string) *string {
	s = strings.TrimSpace(s)
	for _, label := range descriptionLabels {
		if len(s) >= len(label) && strings.EqualFold(s[:len(label)], label) {
			s = strings.TrimSpace(s[len(label):])
		}
	}
	if s == "" {
		return nil
	}
	return &s
}

func planTitle(topic, objective string) string {
	// Casers hold state, so each call builds its own.
	title := cases.Title(language.BrazilianPortuguese).String(strings.TrimSpace("Plano de " + topic))
	if objective != "" {
		title = fmt.Sprintf("%s (%s)", title, objective)
	}
	return title
}
