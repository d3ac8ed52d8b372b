package model

// Where an attendance row's major or program came from (metadata.used_*_source).
const (
	SourceCSV               = "csv"
	SourceMembers           = "members"
	SourceClassYear         = "class_year"
	SourceInferredFromMajor = "inferred_from_major"
	SourceUnknown           = "unknown"
)

// EventAttendance is one attendee of one event, stored in event_attendance.
// (event_id, attendee_email) is the primary key; imports upsert on it.
type EventAttendance struct {
	EventID                 string  `gorm:"type:uuid;primaryKey"     json:"event_id"`
	AttendeeEmail           string  `gorm:"type:text;primaryKey"     json:"attendee_email"`
	MemberEmail             *string `gorm:"type:text"                json:"member_email,omitempty"` // set only for roster matches
	AttendeeMajorRaw        *string `gorm:"type:text"                json:"attendee_major_raw,omitempty"`
	AttendeeMajorNormalized string  `gorm:"type:text;not null"       json:"attendee_major_normalized"`
	AttendeeMajorCategory   string  `gorm:"type:text;not null"       json:"attendee_major_category"`
	AttendeeProgram         string  `gorm:"type:text;not null"       json:"attendee_program"`
	CheckInAt               *string `gorm:"type:timestamptz"         json:"check_in_at,omitempty"`
	Metadata                JSONMap `gorm:"type:jsonb;not null"      json:"metadata"`
	CreatedModel
}

// TableName overrides the GORM default.
func (EventAttendance) TableName() string { return "event_attendance" }
