package models

// ExternalTeamMember is a named placeholder member without a platform account.
// External members occupy capacity slots alongside ordinary members.
type ExternalTeamMember struct {
	BaseModel

	TeamID string `gorm:"type:uuid;not null;index" json:"team_id"`
	Team   *Team  `gorm:"foreignKey:TeamID" json:"team,omitempty"`

	Name string `gorm:"not null" json:"name"`

	AddedByID string `gorm:"type:uuid;not null" json:"added_by_id"`
	AddedBy   *User  `gorm:"foreignKey:AddedByID" json:"added_by,omitempty"`
}
