package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GigStatus string

const (
	GigStatusActive     GigStatus = "active"
	GigStatusInProgress GigStatus = "in-progress"
	GigStatusCompleted  GigStatus = "completed"
	GigStatusCancelled  GigStatus = "cancelled"
)

func (s GigStatus) Valid() bool {
	switch s {
	case GigStatusActive, GigStatusInProgress, GigStatusCompleted, GigStatusCancelled:
		return true
	}
	return false
}

type BudgetType string

const (
	BudgetFixed  BudgetType = "fixed"
	BudgetHourly BudgetType = "hourly"
)

var GigCategories = []string{
	"web-development",
	"mobile-development",
	"graphic-design",
	"content-writing",
	"digital-marketing",
	"video-editing",
	"photo-editing",
	"data-analysis",
	"customer-support",
	"other",
}

var GigDurations = []string{
	"less-than-week",
	"1-2-weeks",
	"2-4-weeks",
	"1-3-months",
	"3+months",
}

func ValidCategory(c string) bool { return contains(GigCategories, c) }
func ValidDuration(d string) bool { return contains(GigDurations, d) }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

type Gig struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(100);not null" json:"title"`
	Description string    `gorm:"type:varchar(2000);not null" json:"description"`
	Category    string    `gorm:"type:varchar(40);not null;index:idx_gigs_category_status" json:"category"`

	SkillsRequired datatypes.JSON `gorm:"type:json" json:"skills_required"`

	BudgetType     BudgetType `gorm:"type:varchar(10);not null" json:"budget_type"`
	BudgetAmount   int64      `gorm:"not null" json:"budget_amount"`
	BudgetCurrency string     `gorm:"type:varchar(10);default:USD" json:"budget_currency"`

	Duration string `gorm:"type:varchar(20);not null" json:"duration"`
	Location string `gorm:"type:varchar(120);not null" json:"location"`

	Status GigStatus `gorm:"type:varchar(20);default:active;index:idx_gigs_category_status" json:"status"`

	// ClientID tidak pernah berubah setelah create.
	ClientID             uuid.UUID  `gorm:"type:uuid;not null;index" json:"client_id"`
	AssignedFreelancerID *uuid.UUID `gorm:"type:uuid" json:"assigned_freelancer_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client             *User `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	AssignedFreelancer *User `gorm:"foreignKey:AssignedFreelancerID" json:"assigned_freelancer,omitempty"`
}

func (g *Gig) SkillList() []string {
	return decodeStringList(g.SkillsRequired)
}

func (g *Gig) SetSkills(skills []string) {
	g.SkillsRequired = encodeStringList(skills)
}
