package studyplan

import (
	"fmt"
	"strings"
)

// BoardCard is the per-week card shape used by task boards.
type BoardCard struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Hours       string `json:"hours"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
	Status      string `json:"status"`
}

type BoardWeek struct {
	Week      *int        `json:"semana"`
	Objective string      `json:"objetivo_semana"`
	Cards     []BoardCard `json:"cards"`
}

type Board struct {
	Topic string      `json:"tema"`
	Weeks []BoardWeek `json:"semanas"`
}

// WeekCards groups raw tasks by week for display. Description headings such as
// "#1 (Title)" and blank lines are removed; non-object tasks become placeholder cards.
func WeekCards(raw *RawPlan) Board {
	board := Board{Weeks: []BoardWeek{}}
	if raw == nil {
		return board
	}
	raw.EnsureTaskStatus()
	if raw.Topic != nil {
		board.Topic = *raw.Topic
	}
	for _, w := range raw.Plan {
		bw := BoardWeek{Week: w.Week, Cards: make([]BoardCard, 0, len(w.Tasks))}
		if w.Objective != nil {
			bw.Objective = *w.Objective
		}
		for _, t := range w.Tasks {
			if t.Malformed {
				bw.Cards = append(bw.Cards, BoardCard{
					ID:          fmt.Sprintf("task-%d", len(bw.Cards)+1),
					Title:       defaultCardTitle,
					Type:        "teoria",
					Description: placeholderText(t),
					Status:      DefaultTaskStatus,
				})
				continue
			}
			bw.Cards = append(bw.Cards, BoardCard{
				ID:          deref(t.ID),
				Title:       deref(t.Title),
				Type:        deref(t.Type),
				Hours:       deref(t.Hours),
				Description: cleanBoardDescription(deref(t.Description)),
				Notes:       deref(t.Notes),
				Status:      deref(t.Status),
			})
		}
		board.Weeks = append(board.Weeks, bw)
	}
	return board
}

func cleanBoardDescription(s string) string {
	lines := strings.Split(strings.ReplaceAll(strings.TrimSpace(s), "\r\n", "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	if len(lines) > 0 && strings.HasPrefix(lines[0], "#") {
		lines = lines[1:]
	}
	kept := lines[:0]
	for _, ln := range lines {
		if ln != "" {
			kept = append(kept, ln)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// placeholderText renders a non-object task: strings unquoted, anything else as JSON.
func placeholderText(t RawTask) string {
	if s := flexString(t.Source); s != nil {
		return *s
	}
	return string(t.Source)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
