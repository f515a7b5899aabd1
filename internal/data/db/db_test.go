package db

import (
	"path/filepath"
	"testing"

	"github.com/yungbote/studyplan-backend/internal/domain/plans"
	"github.com/yungbote/studyplan-backend/internal/platform/logger"
)

func TestSQLiteServiceMigrates(t *testing.T) {
	svc, err := NewPostgresService(Options{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "plans.db")}, logger.NewNop())
	if err != nil {
		t.Fatalf("NewPostgresService: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })

	if svc.Driver() != DriverSQLite {
		t.Fatalf("driver=%q", svc.Driver())
	}
	if err := AutoMigrateAll(svc.DB()); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	for _, m := range []any{&plans.StudyPlan{}, &plans.StudyCard{}} {
		if !svc.DB().Migrator().HasTable(m) {
			t.Fatalf("missing table for %T", m)
		}
	}
}

func TestUnknownDriver(t *testing.T) {
	if _, err := NewPostgresService(Options{Driver: "oracle"}, logger.NewNop()); err == nil {
		t.Fatalf("expected error")
	}
}
