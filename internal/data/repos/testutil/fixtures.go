package testutil

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/studyplan-backend/internal/domain/plans"
)

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

// SeedPlan stores a plan with n cards whose source ids are t1..tn.
func SeedPlan(tb testing.TB, ctx context.Context, tx *gorm.DB, n int) *plans.StudyPlan {
	tb.Helper()
	p := &plans.StudyPlan{
		PlanTitle:    "Plano De Go",
		LearningType: "habito",
		Tema:         "Go",
		PerfilLabel:  strPtr("B2"),
		Semanas:      1,
		Version:      plans.CurrentVersion,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed plan: %v", err)
	}
	for i := 1; i <= n; i++ {
		c := &plans.StudyCard{
			PlanID:          p.ID,
			SourceID:        fmt.Sprintf("t%d", i),
			Title:           fmt.Sprintf("Tarefa %d", i),
			StageSuggestion: "Explorar",
			ColumnKey:       "novo",
			Order:           i,
			Type:            "fundamento",
			Week:            intPtr(1),
		}
		if err := tx.WithContext(ctx).Create(c).Error; err != nil {
			tb.Fatalf("seed card: %v", err)
		}
		p.Cards = append(p.Cards, *c)
	}
	return p
}
