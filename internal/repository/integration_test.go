//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dashboard-engagement/server/internal/model"
	"dashboard-engagement/server/internal/repository"
	"dashboard-engagement/server/pkg/database"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=postgres password=postgres dbname=engagement_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect test database: %v\n", err)
		os.Exit(1)
	}

	// the schema and recompute_active_members come from the real migrations
	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "get sql.DB: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "run migrations: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func strPtr(s string) *string { return &s }

// seed creates two roster members and two events, and returns a cleanup func.
func seed(t *testing.T) (members []model.Member, events []model.Event, cleanup func()) {
	t.Helper()
	ctx := context.Background()
	suffix := time.Now().UnixNano()

	members = []model.Member{
		{Email: fmt.Sprintf("ada%d@sjsu.edu", suffix), MajorNormalized: strPtr("Computer Science"), MajorCategory: strPtr("Technical"), DegreeProgram: strPtr("Undergraduate"), ClassYear: strPtr("Junior")},
		{Email: fmt.Sprintf("grace%d@sjsu.edu", suffix), MajorNormalized: strPtr("Economics"), MajorCategory: strPtr("Business"), DegreeProgram: strPtr("Graduate"), ClassYear: strPtr("Grad")},
	}
	if err := testDB.WithContext(ctx).Create(&members).Error; err != nil {
		t.Fatalf("create members: %v", err)
	}

	events = []model.Event{
		{ID: newID(t), Title: "Kickoff", StartsAt: "2025-09-05T17:30:00Z", EventKind: model.EventKindSocial, Metadata: model.JSONMap{}},
		{ID: newID(t), Title: "Workshop", StartsAt: "2025-10-10T18:00:00Z", EventKind: model.EventKindNonSocial, Metadata: model.JSONMap{}},
	}
	repo := repository.NewRepository(testDB)
	for i := range events {
		if err := repo.Event.Create(ctx, &events[i]); err != nil {
			t.Fatalf("create event: %v", err)
		}
	}

	cleanup = func() {
		for _, e := range events {
			testDB.Where("id = ?", e.ID).Delete(&model.Event{})
		}
		for _, m := range members {
			testDB.Where("email = ?", m.Email).Delete(&model.Member{})
		}
	}
	return
}

func newID(t *testing.T) string {
	t.Helper()
	var id string
	if err := testDB.Raw("SELECT gen_random_uuid()::text").Scan(&id).Error; err != nil {
		t.Fatalf("gen uuid: %v", err)
	}
	return id
}

func attendance(eventID string, member *model.Member, attendee, category string) model.EventAttendance {
	row := model.EventAttendance{
		EventID:                 eventID,
		AttendeeEmail:           attendee,
		AttendeeMajorNormalized: "Unknown",
		AttendeeMajorCategory:   category,
		AttendeeProgram:         "Unknown",
		Metadata:                model.JSONMap{"source": "csv"},
	}
	if member != nil {
		row.MemberEmail = &member.Email
	}
	return row
}

// ═══════════════════════════════════════════════════════════
// Attendance
// ═══════════════════════════════════════════════════════════

func TestAttendance_UpsertIsIdempotent(t *testing.T) {
	members, events, cleanup := seed(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	rows := []model.EventAttendance{
		attendance(events[0].ID, &members[0], members[0].Email, "Technical"),
		attendance(events[0].ID, nil, "walkin@gmail.com", "Other/Unknown"),
	}
	for i := 0; i < 2; i++ {
		if err := repo.Attendance.Upsert(ctx, rows); err != nil {
			t.Fatalf("upsert #%d: %v", i+1, err)
		}
	}

	// a second import with a corrected category overwrites in place
	rows[1].AttendeeMajorCategory = "Business"
	if err := repo.Attendance.Upsert(ctx, rows[1:]); err != nil {
		t.Fatalf("upsert update: %v", err)
	}

	got, err := repo.Attendance.ListByEvent(ctx, events[0].ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows after re-import, got %d", len(got))
	}
	for _, r := range got {
		if r.AttendeeEmail == "walkin@gmail.com" {
			if r.AttendeeMajorCategory != "Business" {
				t.Errorf("expected overwritten category, got %q", r.AttendeeMajorCategory)
			}
			if r.MemberEmail != nil {
				t.Errorf("non-member should have nil member_email")
			}
		}
	}

	ev, err := repo.Event.GetByID(ctx, events[0].ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if ev.AttendeeCount != 2 {
		t.Errorf("expected attendee_count 2, got %d", ev.AttendeeCount)
	}
}

func TestAttendance_RecomputeActiveMembers(t *testing.T) {
	members, events, cleanup := seed(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	ada, grace := &members[0], &members[1]
	rows := []model.EventAttendance{
		attendance(events[0].ID, ada, ada.Email, "Technical"),
		attendance(events[1].ID, ada, ada.Email, "Technical"),
		attendance(events[1].ID, grace, grace.Email, "Business"),
	}
	if err := repo.Attendance.Upsert(ctx, rows); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Attendance.RecomputeActiveMembers(ctx, []string{ada.Email, grace.Email}); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	var got []model.Member
	testDB.Where("email IN ?", []string{ada.Email, grace.Email}).Order("email").Find(&got)
	byEmail := map[string]model.Member{}
	for _, m := range got {
		byEmail[m.Email] = m
	}

	if a := byEmail[ada.Email]; !a.IsActiveMember || a.ActiveMemberStartDate == nil {
		t.Errorf("ada attended two events and should be active: %+v", a)
	} else if !a.ActiveMemberStartDate.Equal(time.Date(2025, 10, 10, 18, 0, 0, 0, time.UTC)) {
		t.Errorf("active start should be the second event, got %v", a.ActiveMemberStartDate)
	}
	if g := byEmail[grace.Email]; g.IsActiveMember || g.ActiveMemberStartDate != nil {
		t.Errorf("grace attended one event and should not be active: %+v", g)
	}
}

// ═══════════════════════════════════════════════════════════
// Events
// ═══════════════════════════════════════════════════════════

func TestEvent_ListFilter(t *testing.T) {
	_, events, cleanup := seed(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	list, total, err := repo.Event.List(ctx, repository.EventFilter{EventKind: model.EventKindNonSocial}, 0, 100)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total < 1 || int64(len(list)) > total {
		t.Fatalf("unexpected totals: len=%d total=%d", len(list), total)
	}
	found := false
	for _, e := range list {
		if e.EventKind != model.EventKindNonSocial {
			t.Errorf("filter leaked %s event %s", e.EventKind, e.ID)
		}
		if e.ID == events[1].ID {
			found = true
		}
	}
	if !found {
		t.Errorf("workshop event missing from nonsocial listing")
	}
}

// ═══════════════════════════════════════════════════════════
// Analytics
// ═══════════════════════════════════════════════════════════

func TestAnalytics_QueriesRun(t *testing.T) {
	members, events, cleanup := seed(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	rows := []model.EventAttendance{
		attendance(events[0].ID, &members[0], members[0].Email, "Technical"),
		attendance(events[0].ID, &members[1], members[1].Email, "Business"),
		attendance(events[0].ID, nil, "walkin@gmail.com", "Other/Unknown"),
	}
	if err := repo.Attendance.Upsert(ctx, rows); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if _, err := repo.Analytics.RetentionOverall(ctx); err != nil {
		t.Errorf("retention overall: %v", err)
	}
	if _, err := repo.Analytics.RetentionByMajorCategory(ctx); err != nil {
		t.Errorf("retention by major: %v", err)
	}
	kpi, err := repo.Analytics.OverviewKPIs(ctx)
	if err != nil {
		t.Fatalf("kpis: %v", err)
	}
	if kpi.TotalMembers < 2 {
		t.Errorf("expected at least the seeded members, got %d", kpi.TotalMembers)
	}
	if _, err := repo.Analytics.MembersOverTime(ctx); err != nil {
		t.Errorf("members over time: %v", err)
	}
	if _, err := repo.Analytics.MajorCategoryDistribution(ctx); err != nil {
		t.Errorf("major distribution: %v", err)
	}
	if _, err := repo.Analytics.ClassYearDistribution(ctx); err != nil {
		t.Errorf("class year distribution: %v", err)
	}

	breakdown, err := repo.Analytics.TopEventBreakdown(ctx, 1000)
	if err != nil {
		t.Fatalf("top events: %v", err)
	}
	var total int
	for _, r := range breakdown {
		if r.EventID == events[0].ID {
			total = r.TotalAttendees
		}
	}
	if total != 3 {
		t.Errorf("expected kickoff to have 3 attendees, got %d", total)
	}
}

func TestAnalytics_RetentionByMajorBucketsMissingCategory(t *testing.T) {
	_, _, cleanup := seed(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	blank := model.Member{Email: fmt.Sprintf("nomajor%d@sjsu.edu", time.Now().UnixNano())}
	if err := testDB.WithContext(ctx).Create(&blank).Error; err != nil {
		t.Fatalf("create member: %v", err)
	}
	defer testDB.Where("email = ?", blank.Email).Delete(&model.Member{})

	rows, err := repo.Analytics.RetentionByMajorCategory(ctx)
	if err != nil {
		t.Fatalf("retention by major: %v", err)
	}
	mission, err := repo.Analytics.MajorCategoryDistribution(ctx)
	if err != nil {
		t.Fatalf("major distribution: %v", err)
	}

	var inRetention, inMission bool
	for _, r := range rows {
		if r.MajorCategory == "Unknown" {
			t.Errorf("retention uses a label the mission chart never emits: %+v", r)
		}
		inRetention = inRetention || r.MajorCategory == "Other/Unknown"
	}
	for _, m := range mission {
		inMission = inMission || m.MajorCategory == "Other/Unknown"
	}
	if !inRetention || !inMission {
		t.Errorf("members without a category should land in Other/Unknown on both charts (retention=%v mission=%v)", inRetention, inMission)
	}
}
