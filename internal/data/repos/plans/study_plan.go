package plans

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/yungbote/studyplan-backend/internal/domain/plans"
	"github.com/yungbote/studyplan-backend/internal/platform/dbctx"
	"github.com/yungbote/studyplan-backend/internal/platform/logger"
)

type StudyPlanRepo interface {
	CreateWithCards(dbc dbctx.Context, plan *domain.StudyPlan) (*domain.StudyPlan, error)
	List(dbc dbctx.Context, limit int) ([]*domain.StudyPlan, error)
	GetByID(dbc dbctx.Context, id uuid.UUID, withCards bool) (*domain.StudyPlan, error)
}

type studyPlanRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudyPlanRepo(db *gorm.DB, baseLog *logger.Logger) StudyPlanRepo {
	return &studyPlanRepo{
		db:  db,
		log: baseLog.With("repo", "StudyPlanRepo"),
	}
}

// CreateWithCards inserts the plan and its cards in one transaction.
func (r *studyPlanRepo) CreateWithCards(dbc dbctx.Context, plan *domain.StudyPlan) (*domain.StudyPlan, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if plan == nil {
		return nil, errors.New("nil plan")
	}
	cards := plan.Cards
	plan.Cards = nil

	err := transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		if err := txx.Create(plan).Error; err != nil {
			return err
		}
		if len(cards) == 0 {
			return nil
		}
		for i := range cards {
			cards[i].PlanID = plan.ID
		}
		return txx.Create(&cards).Error
	})
	plan.Cards = cards
	if err != nil {
		return nil, err
	}
	r.log.Debug("plan stored", "plan_id", plan.ID, "cards", len(cards))
	return plan, nil
}

func (r *studyPlanRepo) List(dbc dbctx.Context, limit int) ([]*domain.StudyPlan, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*domain.StudyPlan
	if err := transaction.WithContext(dbc.Ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *studyPlanRepo) GetByID(dbc dbctx.Context, id uuid.UUID, withCards bool) (*domain.StudyPlan, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	q := transaction.WithContext(dbc.Ctx)
	if withCards {
		q = q.Preload("Cards", func(db *gorm.DB) *gorm.DB {
			return db.Order("card_order ASC")
		})
	}
	var plan domain.StudyPlan
	err := q.Where("id = ?", id).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
