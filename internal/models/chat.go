package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation and Message are migrated but have no routes yet; the schema is
// kept so messaging can land without another migration.

type Conversation struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ClientID     uuid.UUID `gorm:"type:uuid;index" json:"client_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;index" json:"freelancer_id"`

	GigID *uuid.UUID `gorm:"type:uuid;index" json:"gig_id,omitempty"`

	LastMessageAt time.Time `json:"last_message_at"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Client     *User     `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Freelancer *User     `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
	Gig        *Gig      `gorm:"foreignKey:GigID" json:"gig,omitempty"`
	Messages   []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

type Message struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID  `gorm:"type:uuid;index" json:"conversation_id"`
	SenderID       uuid.UUID  `gorm:"type:uuid;index" json:"sender_id"`
	Text           string     `json:"text"`
	IsRead         bool       `gorm:"default:false" json:"is_read"`
	ReadAt         *time.Time `json:"read_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}
