package studyplan

// Card is one normalized study task. It is owned by the Plan that created it.
type Card struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     *string  `json:"description"`
	Instructions    *string  `json:"instructions"`
	Order           int      `json:"order"`
	Type            CardType `json:"type"`
	NeedsReview     bool     `json:"needs_review"`
	ReviewAfterDays *int     `json:"review_after_days"`
	EffortMinutes   *int     `json:"effort_minutes"`
	StageSuggestion string   `json:"stage_suggestion"`
	ColumnKey       string   `json:"column_key"`
	Week            *int     `json:"week"`
	// DependsOn is always empty: dependencies are never inferred.
	DependsOn []string `json:"depends_on"`
	Notes     *string  `json:"notes"`
	Raw       RawTask  `json:"raw"`
}

// Plan is the canonical result of normalizing a RawPlan.
type Plan struct {
	Topic        string       `json:"tema"`
	ProfileLabel *string      `json:"perfil_label"`
	LearningType LearningType `json:"learning_type"`
	Weeks        int          `json:"semanas"`
	Title        string       `json:"plan_title"`
	Cards        []Card       `json:"cards"`
	Raw          *RawPlan     `json:"raw"`
}

// BudgetAdvisory reports a week whose card efforts do not add up to the declared budget.
type BudgetAdvisory struct {
	Week            int     `json:"week"`
	ExpectedMinutes float64 `json:"expected_minutes"`
	ActualMinutes   int     `json:"actual_minutes"`
}

// CheckWeeklyBudget sums parsed efforts per week and returns every week off by more
// than one minute from hours*60. Cards without a week or effort are not counted.
func CheckWeeklyBudget(cards []Card, hours float64) []BudgetAdvisory {
	if hours == 0 {
		return nil
	}
	expected := hours * 60
	totals := map[int]int{}
	var weeks []int
	for _, c := range cards {
		if c.Week == nil || c.EffortMinutes == nil {
			continue
		}
		if _, seen := totals[*c.Week]; !seen {
			weeks = append(weeks, *c.Week)
		}
		totals[*c.Week] += *c.EffortMinutes
	}
	var out []BudgetAdvisory
	for _, w := range weeks {
		diff := float64(totals[w]) - expected
		if diff > 1 || diff < -1 {
			out = append(out, BudgetAdvisory{Week: w, ExpectedMinutes: expected, ActualMinutes: totals[w]})
		}
	}
	return out
}
