package models

// Submission is a team's project entry. It exists here so organizer-initiated team
// deletion has real dependents to cascade over; the submission workflow itself lives
// outside the membership core.
type Submission struct {
	BaseModel

	TeamID string `gorm:"type:uuid;not null;index" json:"team_id"`
	Team   *Team  `gorm:"foreignKey:TeamID" json:"team,omitempty"`

	HackathonID string `gorm:"type:uuid;not null;index" json:"hackathon_id"`

	Title       string `gorm:"not null" json:"title"`
	RepoURL     string `json:"repo_url"`
	Description string `json:"description"`
}
