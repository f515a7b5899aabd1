package plans

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/yungbote/studyplan-backend/internal/domain/plans"
	"github.com/yungbote/studyplan-backend/internal/platform/dbctx"
	"github.com/yungbote/studyplan-backend/internal/platform/logger"
)

type StudyCardRepo interface {
	ListByPlan(dbc dbctx.Context, planID uuid.UUID) ([]*domain.StudyCard, error)
	GetByIdentifier(dbc dbctx.Context, planID uuid.UUID, identifier string) (*domain.StudyCard, error)
	UpdateColumnKey(dbc dbctx.Context, id uuid.UUID, columnKey string) error
	UpdateNotes(dbc dbctx.Context, id uuid.UUID, notes string) error
}

type studyCardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudyCardRepo(db *gorm.DB, baseLog *logger.Logger) StudyCardRepo {
	return &studyCardRepo{
		db:  db,
		log: baseLog.With("repo", "StudyCardRepo"),
	}
}

func (r *studyCardRepo) ListByPlan(dbc dbctx.Context, planID uuid.UUID) ([]*domain.StudyCard, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.StudyCard
	if planID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("plan_id = ?", planID).
		Order("card_order ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIdentifier finds a card of the plan by its task id, falling back to the
// row uuid.
func (r *studyCardRepo) GetByIdentifier(dbc dbctx.Context, planID uuid.UUID, identifier string) (*domain.StudyCard, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if planID == uuid.Nil || identifier == "" {
		return nil, nil
	}
	var card domain.StudyCard
	err := transaction.WithContext(dbc.Ctx).
		Where("plan_id = ? AND source_id = ?", planID, identifier).
		Order("card_order ASC").
		First(&card).Error
	if err == nil {
		return &card, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	id, parseErr := uuid.Parse(identifier)
	if parseErr != nil {
		return nil, nil
	}
	err = transaction.WithContext(dbc.Ctx).
		Where("plan_id = ? AND id = ?", planID, id).
		First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *studyCardRepo) UpdateColumnKey(dbc dbctx.Context, id uuid.UUID, columnKey string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&domain.StudyCard{}).
		Where("id = ?", id).
		Update("column_key", columnKey).Error
}

func (r *studyCardRepo) UpdateNotes(dbc dbctx.Context, id uuid.UUID, notes string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&domain.StudyCard{}).
		Where("id = ?", id).
		Update("notes", notes).Error
}
