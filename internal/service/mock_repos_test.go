package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"gorm.io/gorm"

	"dashboard-engagement/server/internal/model"
	"dashboard-engagement/server/internal/repository"
)

// ── Mock EventRepository ──

type mockEventRepo struct {
	events    map[string]*model.Event
	order     []string
	createErr error
	listErr   error
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[string]*model.Event)}
}

func (m *mockEventRepo) Create(_ context.Context, event *model.Event) error {
	if m.createErr != nil {
		return m.createErr
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Date(2025, 11, 22, 9, 0, 0, 0, time.UTC)
	}
	cp := *event
	m.events[event.ID] = &cp
	m.order = append(m.order, event.ID)
	return nil
}

func (m *mockEventRepo) GetByID(_ context.Context, id string) (*model.EventWithCount, error) {
	if e, ok := m.events[id]; ok {
		return &model.EventWithCount{Event: *e}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepo) List(_ context.Context, filter repository.EventFilter, offset, limit int) ([]model.EventWithCount, int64, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var all []model.EventWithCount
	for _, id := range m.order {
		e := m.events[id]
		if filter.EventKind != "" && e.EventKind != filter.EventKind {
			continue
		}
		all = append(all, model.EventWithCount{Event: *e})
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockEventRepo) ListAll(_ context.Context) ([]model.Event, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.Event
	for _, id := range m.order {
		result = append(result, *m.events[id])
	}
	return result, nil
}

// ── Mock MemberRepository ──

type mockMemberRepo struct {
	members []model.Member
	err     error
}

func (m *mockMemberRepo) ListRoster(_ context.Context) ([]model.Member, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]model.Member, len(m.members))
	copy(out, m.members)
	return out, nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	// keyed by event_id then attendee_email, like the table's primary key
	rows         map[string]map[string]model.EventAttendance
	upsertErr    error
	recomputeErr error
	upsertCalls  int
	recomputed   [][]string
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{rows: make(map[string]map[string]model.EventAttendance)}
}

func (m *mockAttendanceRepo) Upsert(_ context.Context, rows []model.EventAttendance) error {
	m.upsertCalls++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for _, r := range rows {
		if m.rows[r.EventID] == nil {
			m.rows[r.EventID] = make(map[string]model.EventAttendance)
		}
		m.rows[r.EventID][r.AttendeeEmail] = r
	}
	return nil
}

func (m *mockAttendanceRepo) RecomputeActiveMembers(_ context.Context, emails []string) error {
	if m.recomputeErr != nil {
		return m.recomputeErr
	}
	m.recomputed = append(m.recomputed, append([]string(nil), emails...))
	return nil
}

func (m *mockAttendanceRepo) ListByEvent(_ context.Context, eventID string) ([]model.EventAttendance, error) {
	var out []model.EventAttendance
	for _, r := range m.rows[eventID] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttendeeEmail < out[j].AttendeeEmail })
	return out, nil
}

func (m *mockAttendanceRepo) total() int {
	n := 0
	for _, byEmail := range m.rows {
		n += len(byEmail)
	}
	return n
}

// ── Mock AnalyticsRepository ──

type mockAnalyticsRepo struct {
	retention []repository.RetentionRow
	byMajor   []repository.RetentionCategoryRow
	kpis      repository.KPIRow
	series    []repository.MembersOverTimeRow
	majors    []repository.MajorCategoryRow
	years     []repository.ClassYearRow
	events    []repository.EventBreakdownRow
	err       error
	calls     int
	lastLimit int
}

func (m *mockAnalyticsRepo) RetentionOverall(_ context.Context) ([]repository.RetentionRow, error) {
	m.calls++
	return m.retention, m.err
}

func (m *mockAnalyticsRepo) RetentionByMajorCategory(_ context.Context) ([]repository.RetentionCategoryRow, error) {
	m.calls++
	return m.byMajor, m.err
}

func (m *mockAnalyticsRepo) OverviewKPIs(_ context.Context) (*repository.KPIRow, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	k := m.kpis
	return &k, nil
}

func (m *mockAnalyticsRepo) MembersOverTime(_ context.Context) ([]repository.MembersOverTimeRow, error) {
	m.calls++
	return m.series, m.err
}

func (m *mockAnalyticsRepo) MajorCategoryDistribution(_ context.Context) ([]repository.MajorCategoryRow, error) {
	m.calls++
	return m.majors, m.err
}

func (m *mockAnalyticsRepo) ClassYearDistribution(_ context.Context) ([]repository.ClassYearRow, error) {
	m.calls++
	return m.years, m.err
}

func (m *mockAnalyticsRepo) TopEventBreakdown(_ context.Context, limit int) ([]repository.EventBreakdownRow, error) {
	m.calls++
	m.lastLimit = limit
	return m.events, m.err
}

// ── Mock Cache ──

// mockCache round-trips values through JSON like the Redis client does.
type mockCache struct {
	entries map[string][]byte
	deleted []string
	getErr  error
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string][]byte)}
}

func (m *mockCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	if m.getErr != nil {
		return false, m.getErr
	}
	b, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (m *mockCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.entries[key] = b
	return nil
}

func (m *mockCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.entries, k)
		m.deleted = append(m.deleted, k)
	}
	return nil
}

// ── Helpers ──

type mockStore struct {
	events     *mockEventRepo
	members    *mockMemberRepo
	attendance *mockAttendanceRepo
	analytics  *mockAnalyticsRepo
}

func newMockStore(members ...model.Member) (*repository.Repository, *mockStore) {
	st := &mockStore{
		events:     newMockEventRepo(),
		members:    &mockMemberRepo{members: members},
		attendance: newMockAttendanceRepo(),
		analytics:  &mockAnalyticsRepo{},
	}
	repo := &repository.Repository{
		Event:      st.events,
		Member:     st.members,
		Attendance: st.attendance,
		Analytics:  st.analytics,
	}
	return repo, st
}

func strPtr(s string) *string { return &s }
