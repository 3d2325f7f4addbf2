package models

// Team member roles.
const (
	TeamRoleOwner  = "owner"
	TeamRoleMember = "member"
)

// TeamMember joins a user to a team. HackathonID is denormalized from the team so the
// store itself can enforce at most one membership per user per hackathon.
type TeamMember struct {
	BaseModel

	TeamID string `gorm:"type:uuid;not null;uniqueIndex:idx_team_user" json:"team_id"`
	Team   *Team  `gorm:"foreignKey:TeamID" json:"team,omitempty"`

	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_team_user;uniqueIndex:idx_hackathon_user" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	HackathonID string `gorm:"type:uuid;not null;uniqueIndex:idx_hackathon_user" json:"hackathon_id"`

	Role string `gorm:"not null;default:member" json:"role"`
}
