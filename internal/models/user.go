package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Role string

const (
	// RoleUnset marks an OAuth account that has not picked a role yet.
	// Always compare against the constant, never against "".
	RoleUnset      Role = ""
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
)

func (r Role) Valid() bool {
	return r == RoleClient || r == RoleFreelancer
}

type User struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `gorm:"not null" json:"name"`
	Email string    `gorm:"uniqueIndex;not null" json:"email"` // disimpan lowercase

	// Kosong untuk akun Google-only; akun itu tidak bisa login pakai password.
	Password string `json:"-"`

	Role     Role   `gorm:"type:varchar(20);index" json:"role"`
	Location string `gorm:"type:varchar(120)" json:"location"`

	// []string disimpan sebagai kolom JSON
	Skills datatypes.JSON `gorm:"type:json" json:"skills"`

	Bio            string `gorm:"type:varchar(500)" json:"bio"`
	ProfilePicture string `gorm:"type:text" json:"profile_picture"`

	GoogleID          *string `gorm:"uniqueIndex" json:"-"`
	IsGoogleAuth      bool    `gorm:"default:false" json:"is_google_auth"`
	IsProfileComplete bool    `gorm:"default:false" json:"is_profile_complete"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SkillList decodes the JSON skills column; a nil column reads as an empty list.
func (u *User) SkillList() []string {
	return decodeStringList(u.Skills)
}

func (u *User) SetSkills(skills []string) {
	u.Skills = encodeStringList(skills)
}

func decodeStringList(raw datatypes.JSON) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}

func encodeStringList(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return datatypes.JSON(b)
}
