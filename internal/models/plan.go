package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Plan is a saved AI-generated business plan
type Plan struct {
	ID              string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID          string         `gorm:"type:uuid;not null;index" json:"userId"`
	Title           string         `gorm:"size:255;not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	FieldsData      datatypes.JSON `gorm:"type:jsonb" json:"fieldsData"`
	AIGeneratedPlan datatypes.JSON `gorm:"column:ai_generated_plan;type:jsonb" json:"aiGeneratedPlan"`
	Status          string         `gorm:"size:20;default:'draft'" json:"status"`

	Tasks []PlanTask `gorm:"foreignKey:PlanID" json:"tasks,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Plan) TableName() string { return "plans" }

func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	p.ID = ensureID(p.ID)
	return nil
}

// PlanTask is one task selected from a generated plan
type PlanTask struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	PlanID      string `gorm:"type:uuid;not null;index" json:"planId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	OrderIndex  int    `json:"orderIndex"`
	Completed   bool   `gorm:"default:false" json:"completed"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (PlanTask) TableName() string { return "plan_tasks" }

func (t *PlanTask) BeforeCreate(tx *gorm.DB) error {
	t.ID = ensureID(t.ID)
	return nil
}

// TodoTask is an entry on a user's action list
type TodoTask struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID      string `gorm:"type:uuid;not null;index" json:"userId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Completed   bool   `gorm:"default:false" json:"completed"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (TodoTask) TableName() string { return "todo_tasks" }

func (t *TodoTask) BeforeCreate(tx *gorm.DB) error {
	t.ID = ensureID(t.ID)
	return nil
}

// All returns every model for schema synchronization
func All() []interface{} {
	return []interface{}{
		&UserAuth{},
		&ShopConnection{},
		&Platform{},
		&Fragrance{},
		&Listing{},
		&ProductCategory{},
		&Product{},
		&Supply{},
		&ProductSupply{},
		&ProductionBatch{},
		&Plan{},
		&PlanTask{},
		&TodoTask{},
	}
}
