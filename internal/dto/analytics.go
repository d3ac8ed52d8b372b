package dto

// ── Retention ──

// RetentionBucket is one bar of the attendance-count histogram.
type RetentionBucket struct {
	EventsAttendedBucket string `json:"events_attended_bucket"`
	People               int    `json:"people"`
}

// CategoryRetention is the histogram for one major category.
type CategoryRetention struct {
	MajorCategory string            `json:"major_category"`
	Distribution  []RetentionBucket `json:"distribution"`
}

// RetentionPayload is the body of GET /analytics/retention.
type RetentionPayload struct {
	AttendanceCountDistributionOverall         []RetentionBucket   `json:"attendance_count_distribution_overall"`
	AttendanceCountDistributionByMajorCategory []CategoryRetention `json:"attendance_count_distribution_by_major_category"`
}

// ── Overview ──

// OverviewKPIs are the headline member numbers.
type OverviewKPIs struct {
	TotalMembers               int     `json:"total_members"`
	ActiveMembers              int     `json:"active_members"`
	ActiveMembersPct           float64 `json:"active_members_pct"`
	RegisteredGrowthLast30dPct float64 `json:"registered_growth_last_30d_pct"`
}

// MembersOverTimePoint is one month of the cumulative member series.
type MembersOverTimePoint struct {
	Period                      string `json:"period"` // YYYY-MM
	RegisteredMembersCumulative int    `json:"registered_members_cumulative"`
	ActiveMembersCumulative     int    `json:"active_members_cumulative"`
}

// OverviewPayload is the body of GET /analytics/overview.
type OverviewPayload struct {
	KPIs            OverviewKPIs           `json:"kpis"`
	MembersOverTime []MembersOverTimePoint `json:"members_over_time"`
}

// ── Mission ──

// MajorCategoryCount is the member count of one major category.
type MajorCategoryCount struct {
	MajorCategory string `json:"major_category"`
	Members       int    `json:"members"`
}

// ClassYearCount is the member count of one class year.
type ClassYearCount struct {
	ClassYear string `json:"class_year"`
	Members   int    `json:"members"`
}

// EventSegment is the share of one major category among an event's attendees.
type EventSegment struct {
	MajorCategory string  `json:"major_category"`
	Pct           float64 `json:"pct"`
	Count         int     `json:"count"`
}

// EventMajorBreakdown groups the segments of one top event.
type EventMajorBreakdown struct {
	EventID        string         `json:"event_id"`
	EventTitle     string         `json:"event_title"`
	StartsAt       *string        `json:"starts_at"`
	TotalAttendees int            `json:"total_attendees"`
	Segments       []EventSegment `json:"segments"`
}

// MissionPayload is the body of GET /analytics/mission.
type MissionPayload struct {
	MajorCategoryDistribution []MajorCategoryCount  `json:"major_category_distribution"`
	ClassYearDistribution     []ClassYearCount      `json:"class_year_distribution"`
	EventMajorCategoryPercent []EventMajorBreakdown `json:"event_major_category_percent"`
}

// ── Per-endpoint bodies ──

// RetentionResponse is the body of GET /analytics/retention.
type RetentionResponse struct {
	Retention RetentionPayload `json:"retention"`
}

// OverviewResponse is the body of GET /analytics/overview.
type OverviewResponse struct {
	Overview OverviewPayload `json:"overview"`
}

// MissionResponse is the body of GET /analytics/mission.
type MissionResponse struct {
	Mission MissionPayload `json:"mission"`
}

// ── Combined ──

// DashboardPayload is the body of GET /analytics: every section at once.
type DashboardPayload struct {
	Overview  OverviewPayload  `json:"overview"`
	Retention RetentionPayload `json:"retention"`
	Mission   MissionPayload   `json:"mission"`
}
