package dto

// EventResponse is an imported event as listed by /api/events.
type EventResponse struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	StartsAt      string         `json:"starts_at"`
	EventKind     string         `json:"event_kind"`
	EventType     string         `json:"event_type,omitempty"`
	Location      string         `json:"location,omitempty"`
	Committee     string         `json:"committee,omitempty"`
	AttendeeCount int            `json:"attendee_count"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     string         `json:"created_at"`
}

// ListEventsRequest filters and pages GET /api/events.
type ListEventsRequest struct {
	PaginationRequest
	EventKind string `form:"event_kind" binding:"omitempty,oneof=social nonsocial"`
	Committee string `form:"committee"`
}

// AttendanceResponse is one attendance row of an event.
type AttendanceResponse struct {
	AttendeeEmail   string  `json:"attendee_email"`
	IsMember        bool    `json:"is_member"`
	MajorRaw        string  `json:"major_raw,omitempty"`
	MajorNormalized string  `json:"major_normalized"`
	MajorCategory   string  `json:"major_category"`
	Program         string  `json:"program"`
	CheckInAt       *string `json:"check_in_at,omitempty"`
}

// EventDetailResponse is GET /api/events/:id.
type EventDetailResponse struct {
	EventResponse
	Attendance []AttendanceResponse `json:"attendance"`
}
