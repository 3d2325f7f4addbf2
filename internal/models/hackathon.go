package models

import (
	"time"

	"gorm.io/datatypes"
)

// Registration status values for a hackathon. The open-to-closed transition is
// one-way: the lifecycle trigger never reopens registration.
const (
	RegistrationOpen   = "open"
	RegistrationClosed = "closed"
)

// Hackathon holds the event-level configuration the membership core depends on.
type Hackathon struct {
	BaseModel

	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `json:"description"`

	OrganizerID string `gorm:"type:uuid;not null;index" json:"organizer_id"`
	Organizer   *User  `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`

	RegistrationStatus string `gorm:"not null;default:open" json:"registration_status"`

	MinTeamSize int  `gorm:"not null;default:1" json:"min_team_size"`
	MaxTeamSize int  `gorm:"not null;default:5" json:"max_team_size"`
	MaxTeams    *int `json:"max_teams,omitempty"` // nil means unlimited

	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`

	Settings datatypes.JSON `json:"settings"`

	Teams []Team `gorm:"foreignKey:HackathonID" json:"teams,omitempty"`
}
