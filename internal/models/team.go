package models

// Team is one team within one hackathon. HackathonID is immutable once created and
// fixes which capacity and size rules apply.
type Team struct {
	BaseModel

	HackathonID string     `gorm:"type:uuid;not null;index" json:"hackathon_id"`
	Hackathon   *Hackathon `gorm:"foreignKey:HackathonID" json:"hackathon,omitempty"`

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	ProjectName string `json:"project_name"`

	LookingForMembers bool `gorm:"not null" json:"looking_for_members"`

	Members         []TeamMember         `gorm:"foreignKey:TeamID" json:"members,omitempty"`
	ExternalMembers []ExternalTeamMember `gorm:"foreignKey:TeamID" json:"external_members,omitempty"`
}
