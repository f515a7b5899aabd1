package plans

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type StudyPlan struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PlanTitle    string         `gorm:"column:plan_title;size:255" json:"plan_title"`
	LearningType string         `gorm:"column:learning_type;size:32;not null;default:'default'" json:"learning_type"`
	Tema         string         `gorm:"column:tema;size:255" json:"tema"`
	PerfilLabel  *string        `gorm:"column:perfil_label;size:32" json:"perfil_label"`
	Semanas      int            `gorm:"column:semanas" json:"semanas"`
	Version      int            `gorm:"column:version;not null;default:2" json:"version"`
	RawResponse  datatypes.JSON `gorm:"column:raw_response" json:"raw_response,omitempty"`

	Cards []StudyCard `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"cards,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (StudyPlan) TableName() string { return "study_plan" }

func (p *StudyPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type StudyCard struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`
	PlanID uuid.UUID `gorm:"type:uuid;not null;index" json:"plan_id"`

	// SourceID is the task id the model produced (or the synthesized card-N).
	SourceID        string         `gorm:"column:source_id;size:64;index" json:"id"`
	Title           string         `gorm:"column:title;size:255;not null" json:"title"`
	Description     *string        `gorm:"column:description" json:"description"`
	Instructions    *string        `gorm:"column:instructions" json:"instructions"`
	StageSuggestion string         `gorm:"column:stage_suggestion;size:64" json:"stage_suggestion"`
	ColumnKey       string         `gorm:"column:column_key;size:32;not null;default:'novo';index" json:"column_key"`
	Order           int            `gorm:"column:card_order;index" json:"order"`
	Type            string         `gorm:"column:type;size:32;index" json:"type"`
	NeedsReview     bool           `gorm:"column:needs_review;not null;default:false" json:"needs_review"`
	ReviewAfterDays *int           `gorm:"column:review_after_days" json:"review_after_days"`
	EffortMinutes   *int           `gorm:"column:effort_minutes" json:"effort_minutes"`
	Week            *int           `gorm:"column:week" json:"week"`
	DependsOn       datatypes.JSON `gorm:"column:depends_on" json:"depends_on"`
	Notes           *string        `gorm:"column:notes" json:"notes"`
	Raw             datatypes.JSON `gorm:"column:raw" json:"raw"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (StudyCard) TableName() string { return "study_card" }

func (c *StudyCard) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Identifier is the id clients use for the card.
func (c *StudyCard) Identifier() string {
	if c.SourceID != "" {
		return c.SourceID
	}
	return c.ID.String()
}
