package model

import "time"

// Member is one roster entry, stored in members. The import flow only reads it.
type Member struct {
	Email                 string     `gorm:"type:text;primaryKey"                json:"email"`
	FullName              *string    `gorm:"type:text"                           json:"full_name,omitempty"`
	MajorRaw              *string    `gorm:"type:text"                           json:"major_raw,omitempty"`
	MajorNormalized       *string    `gorm:"type:text"                           json:"major_normalized,omitempty"`
	MajorCategory         *string    `gorm:"type:text"                           json:"major_category,omitempty"`
	DegreeProgram         *string    `gorm:"type:text"                           json:"degree_program,omitempty"`
	ClassYear             *string    `gorm:"type:text"                           json:"class_year,omitempty"`
	JoinedAt              *time.Time `gorm:"type:timestamptz"                    json:"joined_at,omitempty"`
	IsActiveMember        bool       `gorm:"not null;default:false"              json:"is_active_member"`
	ActiveMemberStartDate *time.Time `gorm:"type:timestamptz"                    json:"active_member_start_date,omitempty"`
	CreatedModel
}

// TableName overrides the GORM default.
func (Member) TableName() string { return "members" }
