package models

// Invitation status values.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
)

// TeamInvitation is an owner- or organizer-issued offer to a specific email address.
// An invitation is not a membership until it is accepted.
type TeamInvitation struct {
	BaseModel

	TeamID string `gorm:"type:uuid;not null;index" json:"team_id"`
	Team   *Team  `gorm:"foreignKey:TeamID" json:"team,omitempty"`

	HackathonID string `gorm:"type:uuid;not null;index" json:"hackathon_id"`

	Email string `gorm:"not null;index" json:"email"`

	InvitedByID string `gorm:"type:uuid;not null" json:"invited_by_id"`
	InvitedBy   *User  `gorm:"foreignKey:InvitedByID" json:"invited_by,omitempty"`

	Status string `gorm:"not null;default:pending" json:"status"`
}
