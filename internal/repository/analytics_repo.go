package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ── Row types ──

// RetentionRow is one histogram bucket over all members.
type RetentionRow struct {
	EventsAttendedBucket string
	People               int
}

// RetentionCategoryRow is one histogram bucket within a major category.
type RetentionCategoryRow struct {
	MajorCategory        string
	EventsAttendedBucket string
	People               int
}

// KPIRow holds the overview headline numbers.
type KPIRow struct {
	TotalMembers               int
	ActiveMembers              int
	ActiveMembersPct           float64
	RegisteredGrowthLast30dPct float64 `gorm:"column:registered_growth_last_30d_pct"`
}

// MembersOverTimeRow is one month of cumulative member counts.
type MembersOverTimeRow struct {
	Period                      string
	RegisteredMembersCumulative int
	ActiveMembersCumulative     int
}

// MajorCategoryRow is the member count of one major category.
type MajorCategoryRow struct {
	MajorCategory string
	Members       int
}

// ClassYearRow is the member count of one class year.
type ClassYearRow struct {
	ClassYear string
	Members   int
}

// EventBreakdownRow is one (event, major category) cell of the top-events breakdown.
type EventBreakdownRow struct {
	EventID        string
	EventTitle     string
	StartsAt       *time.Time
	TotalAttendees int
	MajorCategory  string
	Count          int
	Pct            float64
}

// AnalyticsRepository runs the dashboard aggregations. All queries are read-only.
type AnalyticsRepository interface {
	RetentionOverall(ctx context.Context) ([]RetentionRow, error)
	RetentionByMajorCategory(ctx context.Context) ([]RetentionCategoryRow, error)
	OverviewKPIs(ctx context.Context) (*KPIRow, error)
	MembersOverTime(ctx context.Context) ([]MembersOverTimeRow, error)
	MajorCategoryDistribution(ctx context.Context) ([]MajorCategoryRow, error)
	ClassYearDistribution(ctx context.Context) ([]ClassYearRow, error)
	TopEventBreakdown(ctx context.Context, limit int) ([]EventBreakdownRow, error)
}

type analyticsRepo struct {
	db *gorm.DB
}

// NewAnalyticsRepo creates an AnalyticsRepository.
func NewAnalyticsRepo(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepo{db: db}
}

// ────────────────────── Retention ──────────────────────

// Only roster members count; attendance is joined through member_email.
const retentionOverallSQL = `
WITH per_member AS (
  SELECT m.email, COUNT(DISTINCT a.event_id) AS events_attended
  FROM members m
  LEFT JOIN event_attendance a ON a.member_email = m.email
  GROUP BY m.email
)
SELECT
  CASE WHEN events_attended >= 4 THEN '4+' ELSE events_attended::text END AS events_attended_bucket,
  COUNT(*)::int AS people
FROM per_member
GROUP BY 1`

func (r *analyticsRepo) RetentionOverall(ctx context.Context) ([]RetentionRow, error) {
	var rows []RetentionRow
	err := r.db.WithContext(ctx).Raw(retentionOverallSQL).Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepo) RetentionByMajorCategory(ctx context.Context) ([]RetentionCategoryRow, error) {
	var rows []RetentionCategoryRow
	err := r.db.WithContext(ctx).Raw(retentionByMajorSQL).Scan(&rows).Error
	return rows, err
}

// ────────────────────── Overview ──────────────────────

const overviewKPIsSQL = `
WITH stats AS (
  SELECT
    COUNT(*)::int AS total_members,
    COUNT(*) FILTER (WHERE is_active_member)::int AS active_members
  FROM members
),
growth AS (
  SELECT
    COUNT(*) FILTER (WHERE joined_at >= CURRENT_DATE - INTERVAL '30 days')::int AS recent_30d,
    COUNT(*) FILTER (WHERE joined_at >= CURRENT_DATE - INTERVAL '60 days'
                       AND joined_at < CURRENT_DATE - INTERVAL '30 days')::int AS previous_30d
  FROM members
)
SELECT
  s.total_members,
  s.active_members,
  COALESCE(ROUND(100.0 * s.active_members / NULLIF(s.total_members, 0), 1), 0)::float8 AS active_members_pct,
  CASE WHEN g.previous_30d = 0 THEN 0.0
       ELSE ROUND(100.0 * (g.recent_30d - g.previous_30d) / g.previous_30d, 1)
  END::float8 AS registered_growth_last_30d_pct
FROM stats s, growth g`

// One point per month from the first join month to the current month.
const membersOverTimeSQL = `
SELECT
  TO_CHAR(date_series, 'YYYY-MM') AS period,
  (SELECT COUNT(*)::int FROM members WHERE joined_at <= date_series) AS registered_members_cumulative,
  (SELECT COUNT(*)::int FROM members
     WHERE is_active_member AND active_member_start_date IS NOT NULL
       AND active_member_start_date <= date_series) AS active_members_cumulative
FROM generate_series(
  (SELECT DATE_TRUNC('month', MIN(joined_at)) FROM members),
  DATE_TRUNC('month', CURRENT_DATE),
  INTERVAL '1 month'
) AS date_series
ORDER BY date_series`

func (r *analyticsRepo) OverviewKPIs(ctx context.Context) (*KPIRow, error) {
	var row KPIRow
	if err := r.db.WithContext(ctx).Raw(overviewKPIsSQL).Scan(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *analyticsRepo) MembersOverTime(ctx context.Context) ([]MembersOverTimeRow, error) {
	var rows []MembersOverTimeRow
	err := r.db.WithContext(ctx).Raw(membersOverTimeSQL).Scan(&rows).Error
	return rows, err
}

// ────────────────────── Mission ──────────────────────

// Legacy rows spell the fallback category "Unknown/other" or leave it blank.
const canonicalCategorySQL = `COALESCE(NULLIF(CASE WHEN %[1]s = 'Unknown/other' THEN 'Other/Unknown' ELSE %[1]s END, ''), 'Other/Unknown')`

var (
	retentionByMajorSQL = `
WITH per_member AS (
  SELECT
    m.email,
    ` + canonicalCategory("m.major_category") + ` AS major_category,
    COUNT(DISTINCT a.event_id) AS events_attended
  FROM members m
  LEFT JOIN event_attendance a ON a.member_email = m.email
  GROUP BY m.email, m.major_category
)
SELECT
  major_category,
  CASE WHEN events_attended >= 4 THEN '4+' ELSE events_attended::text END AS events_attended_bucket,
  COUNT(*)::int AS people
FROM per_member
GROUP BY 1, 2
ORDER BY 1, 2`

	majorDistributionSQL = `
SELECT ` + canonicalCategory("major_category") + ` AS major_category, COUNT(*)::int AS members
FROM members
GROUP BY 1
ORDER BY members DESC, 1`

	classYearDistributionSQL = `
SELECT class_year, COUNT(*)::int AS members
FROM (SELECT COALESCE(NULLIF(class_year, ''), 'Other/Unknown') AS class_year FROM members) m
GROUP BY class_year
ORDER BY
  CASE class_year
    WHEN 'Freshman' THEN 1
    WHEN 'Sophomore' THEN 2
    WHEN 'Junior' THEN 3
    WHEN 'Senior' THEN 4
    WHEN 'Grad' THEN 5
    ELSE 6
  END, class_year`

	// Only attendees matched to the roster contribute segments, so the
	// percentages of one event may sum to less than 1.
	topEventBreakdownSQL = `
WITH event_attendance_counts AS (
  SELECT e.id AS event_id, e.title AS event_title, e.starts_at,
         COUNT(DISTINCT a.attendee_email)::int AS total_attendees
  FROM events e
  LEFT JOIN event_attendance a ON e.id = a.event_id
  GROUP BY e.id, e.title, e.starts_at
  HAVING COUNT(DISTINCT a.attendee_email) > 0
  ORDER BY total_attendees DESC, e.starts_at DESC
  LIMIT ?
),
event_major_breakdown AS (
  SELECT a.event_id, ` + canonicalCategory("m.major_category") + ` AS major_category, COUNT(*)::int AS count
  FROM event_attendance a
  JOIN members m ON a.member_email = m.email
  WHERE a.event_id IN (SELECT event_id FROM event_attendance_counts)
  GROUP BY a.event_id, 2
)
SELECT
  eac.event_id::text AS event_id,
  eac.event_title,
  eac.starts_at,
  eac.total_attendees,
  emb.major_category,
  emb.count,
  ROUND(emb.count::numeric / NULLIF(eac.total_attendees, 0), 4)::float8 AS pct
FROM event_attendance_counts eac
JOIN event_major_breakdown emb ON eac.event_id = emb.event_id
ORDER BY eac.total_attendees DESC, eac.starts_at DESC, emb.count DESC, emb.major_category`
)

func canonicalCategory(column string) string {
	return fmt.Sprintf(canonicalCategorySQL, column)
}

func (r *analyticsRepo) MajorCategoryDistribution(ctx context.Context) ([]MajorCategoryRow, error) {
	var rows []MajorCategoryRow
	err := r.db.WithContext(ctx).Raw(majorDistributionSQL).Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepo) ClassYearDistribution(ctx context.Context) ([]ClassYearRow, error) {
	var rows []ClassYearRow
	err := r.db.WithContext(ctx).Raw(classYearDistributionSQL).Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepo) TopEventBreakdown(ctx context.Context, limit int) ([]EventBreakdownRow, error) {
	var rows []EventBreakdownRow
	err := r.db.WithContext(ctx).Raw(topEventBreakdownSQL, limit).Scan(&rows).Error
	return rows, err
}
