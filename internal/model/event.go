package model

// Event kinds accepted by the attendance import.
const (
	EventKindSocial    = "social"
	EventKindNonSocial = "nonsocial"
)

// Event is one imported event, stored in events.
// StartsAt holds the value sent to the timestamptz column; reads come back as RFC 3339.
type Event struct {
	ID        string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title     string  `gorm:"type:text;not null"                             json:"title"`
	StartsAt  string  `gorm:"type:timestamptz;not null"                      json:"starts_at"`
	EventKind string  `gorm:"type:text;not null"                             json:"event_kind"` // social | nonsocial
	EventType *string `gorm:"type:text"                                      json:"event_type,omitempty"`
	Location  *string `gorm:"type:text"                                      json:"location,omitempty"`
	Committee *string `gorm:"type:text"                                      json:"committee,omitempty"`
	Metadata  JSONMap `gorm:"type:jsonb;not null;default:'{}'"               json:"metadata"`
	CreatedModel
}

// TableName overrides the GORM default.
func (Event) TableName() string { return "events" }

// EventWithCount is an event row joined with its distinct attendee count.
type EventWithCount struct {
	Event
	AttendeeCount int `gorm:"column:attendee_count" json:"attendee_count"`
}
