package plans

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/studyplan-backend/internal/data/repos/testutil"
	domain "github.com/yungbote/studyplan-backend/internal/domain/plans"
	"github.com/yungbote/studyplan-backend/internal/platform/dbctx"
)

func TestStudyPlanRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewStudyPlanRepo(db, testutil.Logger(t))

	created, err := repo.CreateWithCards(dbc, &domain.StudyPlan{
		PlanTitle:    "Plano De Algebra (prova)",
		LearningType: "prova",
		Tema:         "Algebra",
		Semanas:      2,
		Version:      domain.CurrentVersion,
		Cards: []domain.StudyCard{
			{SourceID: "a", Title: "Ler", Order: 1, ColumnKey: "novo", Type: "fundamento"},
			{SourceID: "b", Title: "Resolver", Order: 2, ColumnKey: "novo", Type: "pratica"},
		},
	})
	if err != nil {
		t.Fatalf("CreateWithCards: %v", err)
	}
	if created.ID == uuid.Nil || len(created.Cards) != 2 {
		t.Fatalf("created=%+v", created)
	}
	for _, c := range created.Cards {
		if c.PlanID != created.ID || c.ID == uuid.Nil {
			t.Fatalf("card not linked: %+v", c)
		}
	}

	got, err := repo.GetByID(dbc, created.ID, true)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || len(got.Cards) != 2 || got.Cards[0].SourceID != "a" || got.Cards[1].Order != 2 {
		t.Fatalf("GetByID: unexpected result: %+v", got)
	}

	bare, err := repo.GetByID(dbc, created.ID, false)
	if err != nil || bare == nil || len(bare.Cards) != 0 {
		t.Fatalf("GetByID without cards: %+v err=%v", bare, err)
	}

	missing, err := repo.GetByID(dbc, uuid.New(), true)
	if err != nil || missing != nil {
		t.Fatalf("GetByID missing: %+v err=%v", missing, err)
	}

	list, err := repo.List(dbc, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	found := false
	for _, p := range list {
		if p.ID == created.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("List: plan %s not returned", created.ID)
	}
}
