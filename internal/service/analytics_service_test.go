package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"dashboard-engagement/server/internal/dto"
	"dashboard-engagement/server/internal/repository"
	apperrors "dashboard-engagement/server/pkg/errors"
)

func setupTestAnalyticsService(cache Cache, ttl time.Duration) (AnalyticsService, *mockAnalyticsRepo) {
	repo, st := newMockStore()
	return NewAnalyticsService(repo, cache, ttl, zap.NewNop()), st.analytics
}

func TestAnalyticsService_RetentionFillsBuckets(t *testing.T) {
	svc, ar := setupTestAnalyticsService(nil, 0)
	ar.retention = []repository.RetentionRow{
		{EventsAttendedBucket: "0", People: 10},
		{EventsAttendedBucket: "4+", People: 2},
	}
	ar.byMajor = []repository.RetentionCategoryRow{
		{MajorCategory: "Technical", EventsAttendedBucket: "1", People: 3},
		{MajorCategory: "Business", EventsAttendedBucket: "0", People: 4},
		{MajorCategory: "Technical", EventsAttendedBucket: "2", People: 1},
	}

	got, err := svc.Retention(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantOverall := []dto.RetentionBucket{
		{EventsAttendedBucket: "0", People: 10},
		{EventsAttendedBucket: "1", People: 0},
		{EventsAttendedBucket: "2", People: 0},
		{EventsAttendedBucket: "3", People: 0},
		{EventsAttendedBucket: "4+", People: 2},
	}
	if !reflect.DeepEqual(got.AttendanceCountDistributionOverall, wantOverall) {
		t.Errorf("overall = %+v", got.AttendanceCountDistributionOverall)
	}

	byMajor := got.AttendanceCountDistributionByMajorCategory
	if len(byMajor) != 2 || byMajor[0].MajorCategory != "Technical" || byMajor[1].MajorCategory != "Business" {
		t.Fatalf("categories should keep first-seen order: %+v", byMajor)
	}
	if byMajor[0].Distribution[1].People != 3 || byMajor[0].Distribution[2].People != 1 || byMajor[0].Distribution[0].People != 0 {
		t.Errorf("technical distribution = %+v", byMajor[0].Distribution)
	}
	if len(byMajor[1].Distribution) != len(RetentionBuckets) {
		t.Errorf("every category lists every bucket")
	}
}

func TestAnalyticsService_RetentionEmpty(t *testing.T) {
	svc, _ := setupTestAnalyticsService(nil, 0)

	got, err := svc.Retention(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.AttendanceCountDistributionOverall) != 5 {
		t.Errorf("expected 5 zero buckets, got %+v", got.AttendanceCountDistributionOverall)
	}
	if got.AttendanceCountDistributionByMajorCategory == nil {
		t.Errorf("by-major list should be empty, not null")
	}
}

func TestAnalyticsService_Overview(t *testing.T) {
	svc, ar := setupTestAnalyticsService(nil, 0)
	ar.kpis = repository.KPIRow{TotalMembers: 40, ActiveMembers: 10, ActiveMembersPct: 25, RegisteredGrowthLast30dPct: -12.5}
	ar.series = []repository.MembersOverTimeRow{
		{Period: "2025-09", RegisteredMembersCumulative: 20, ActiveMembersCumulative: 2},
		{Period: "2025-10", RegisteredMembersCumulative: 40, ActiveMembersCumulative: 10},
	}

	got, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.KPIs.TotalMembers != 40 || got.KPIs.ActiveMembersPct != 25 || got.KPIs.RegisteredGrowthLast30dPct != -12.5 {
		t.Errorf("kpis = %+v", got.KPIs)
	}
	if len(got.MembersOverTime) != 2 || got.MembersOverTime[1].Period != "2025-10" {
		t.Errorf("series = %+v", got.MembersOverTime)
	}
}

func TestAnalyticsService_MissionGroupsEvents(t *testing.T) {
	svc, ar := setupTestAnalyticsService(nil, 0)
	start := time.Date(2025, 11, 21, 17, 30, 0, 0, time.UTC)
	ar.majors = []repository.MajorCategoryRow{{MajorCategory: "Technical", Members: 12}}
	ar.years = []repository.ClassYearRow{{ClassYear: "Freshman", Members: 3}, {ClassYear: "Grad", Members: 1}}
	ar.events = []repository.EventBreakdownRow{
		{EventID: "e1", EventTitle: "Kickoff", StartsAt: &start, TotalAttendees: 4, MajorCategory: "Technical", Count: 2, Pct: 0.5},
		{EventID: "e1", EventTitle: "Kickoff", StartsAt: &start, TotalAttendees: 4, MajorCategory: "Business", Count: 1, Pct: 0.25},
		{EventID: "e2", EventTitle: "Mixer", TotalAttendees: 1, MajorCategory: "Other/Unknown", Count: 1, Pct: 1},
	}

	got, err := svc.Mission(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ar.lastLimit != TopEventsLimit {
		t.Errorf("limit = %d, want %d", ar.lastLimit, TopEventsLimit)
	}
	events := got.EventMajorCategoryPercent
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].StartsAt == nil || *events[0].StartsAt != "2025-11-21T17:30:00Z" {
		t.Errorf("starts_at = %v", events[0].StartsAt)
	}
	if len(events[0].Segments) != 2 || events[0].Segments[1].MajorCategory != "Business" {
		t.Errorf("segments = %+v", events[0].Segments)
	}
	if events[1].StartsAt != nil {
		t.Errorf("missing start should stay null")
	}
	if len(got.ClassYearDistribution) != 2 || got.MajorCategoryDistribution[0].Members != 12 {
		t.Errorf("distributions = %+v / %+v", got.MajorCategoryDistribution, got.ClassYearDistribution)
	}
}

func TestAnalyticsService_QueryFailure(t *testing.T) {
	svc, ar := setupTestAnalyticsService(nil, 0)
	ar.err = errors.New("relation members does not exist")

	for name, call := range map[string]func() error{
		"retention": func() error { _, err := svc.Retention(context.Background()); return err },
		"overview":  func() error { _, err := svc.Overview(context.Background()); return err },
		"mission":   func() error { _, err := svc.Mission(context.Background()); return err },
		"dashboard": func() error { _, err := svc.Dashboard(context.Background()); return err },
	} {
		err := call()
		if !errors.Is(err, ErrAnalyticsQuery) || !errors.Is(err, apperrors.ErrPersistence) {
			t.Errorf("%s: expected ErrAnalyticsQuery, got %v", name, err)
		}
	}
}

func TestAnalyticsService_CachesPayloads(t *testing.T) {
	cache := newMockCache()
	svc, ar := setupTestAnalyticsService(cache, time.Minute)
	ar.kpis = repository.KPIRow{TotalMembers: 7}

	first, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calls := ar.calls

	// a changed store is not seen until the entry is dropped
	ar.kpis = repository.KPIRow{TotalMembers: 8}
	second, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ar.calls != calls {
		t.Errorf("second call should be served from cache")
	}
	if second.KPIs.TotalMembers != first.KPIs.TotalMembers {
		t.Errorf("cached payload differs: %d vs %d", second.KPIs.TotalMembers, first.KPIs.TotalMembers)
	}

	_ = cache.Delete(context.Background(), analyticsCacheKeys...)
	third, _ := svc.Overview(context.Background())
	if third.KPIs.TotalMembers != 8 {
		t.Errorf("after invalidation total = %d, want 8", third.KPIs.TotalMembers)
	}
}

func TestAnalyticsService_CacheErrorFallsBackToQuery(t *testing.T) {
	cache := newMockCache()
	cache.getErr = errors.New("redis: connection refused")
	svc, ar := setupTestAnalyticsService(cache, time.Minute)
	ar.kpis = repository.KPIRow{TotalMembers: 3}

	got, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("cache failures must not fail the request: %v", err)
	}
	if got.KPIs.TotalMembers != 3 {
		t.Errorf("total = %d", got.KPIs.TotalMembers)
	}
}

func TestAnalyticsService_Dashboard(t *testing.T) {
	svc, ar := setupTestAnalyticsService(nil, 0)
	ar.kpis = repository.KPIRow{TotalMembers: 5}
	ar.retention = []repository.RetentionRow{{EventsAttendedBucket: "1", People: 5}}

	got, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Overview.KPIs.TotalMembers != 5 || got.Retention.AttendanceCountDistributionOverall[1].People != 5 {
		t.Errorf("dashboard = %+v", got)
	}
	if got.Mission.EventMajorCategoryPercent == nil {
		t.Errorf("events list should be empty, not null")
	}
}
