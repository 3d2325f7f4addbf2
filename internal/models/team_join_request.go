package models

// Join request status values.
const (
	JoinRequestPending  = "pending"
	JoinRequestAccepted = "accepted"
	JoinRequestRejected = "rejected"
)

// TeamJoinRequest is a participant-initiated ask to join a team. Only HandleJoinRequest
// moves it to a terminal status.
type TeamJoinRequest struct {
	BaseModel

	TeamID string `gorm:"type:uuid;not null;index" json:"team_id"`
	Team   *Team  `gorm:"foreignKey:TeamID" json:"team,omitempty"`

	HackathonID string `gorm:"type:uuid;not null;index" json:"hackathon_id"`

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Message string `json:"message"`
	Status  string `gorm:"not null;default:pending" json:"status"`
}
