package models

import (
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationAccepted  ApplicationStatus = "accepted"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
)

// Application is a freelancer's bid on a gig. One per (gig, freelancer),
// enforced by the composite unique index so a concurrent double-apply
// loses at the store, not in handler code.
type Application struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GigID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_applications_gig_freelancer" json:"gig_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_applications_gig_freelancer;index" json:"freelancer_id"`

	Proposal      string `gorm:"type:varchar(2000);not null" json:"proposal"`
	BidAmount     int64  `gorm:"not null" json:"bid_amount"`
	EstimatedDays int    `gorm:"not null" json:"estimated_days"`
	CoverLetter   string `gorm:"type:varchar(1000)" json:"cover_letter"`

	// pending -> accepted | rejected | withdrawn, terminal setelah itu.
	Status ApplicationStatus `gorm:"type:varchar(20);default:pending;index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Gig        *Gig  `gorm:"foreignKey:GigID" json:"gig,omitempty"`
	Freelancer *User `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
}
