package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"dashboard-engagement/server/internal/dto"
	"dashboard-engagement/server/internal/model"
)

func seedEvents(t *testing.T, st *mockStore, events ...model.Event) {
	t.Helper()
	for i := range events {
		if err := st.events.Create(context.Background(), &events[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

// ── EventService ──

func TestEventService_ListFiltersAndPages(t *testing.T) {
	repo, st := newMockStore()
	svc := NewEventService(repo, zap.NewNop())
	seedEvents(t, st,
		model.Event{ID: "1", Title: "A", EventKind: "social"},
		model.Event{ID: "2", Title: "B", EventKind: "nonsocial", Committee: strPtr("Outreach")},
		model.Event{ID: "3", Title: "C", EventKind: "social"},
	)

	list, total, err := svc.List(context.Background(), &dto.ListEventsRequest{EventKind: "social"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(list) != 2 || list[1].Title != "C" {
		t.Errorf("got total=%d list=%+v", total, list)
	}

	page := &dto.ListEventsRequest{PaginationRequest: dto.PaginationRequest{Page: 2, PageSize: 2}}
	list, total, err = svc.List(context.Background(), page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 || len(list) != 1 || list[0].ID != "3" {
		t.Errorf("page 2 = %+v (total %d)", list, total)
	}
}

func TestEventService_ListFailure(t *testing.T) {
	repo, st := newMockStore()
	st.events.listErr = errors.New("timeout")
	svc := NewEventService(repo, zap.NewNop())

	if _, _, err := svc.List(context.Background(), &dto.ListEventsRequest{}); !errors.Is(err, ErrEventQueryFailed) {
		t.Errorf("expected ErrEventQueryFailed, got %v", err)
	}
}

func TestEventService_Get(t *testing.T) {
	repo, st := newMockStore()
	svc := NewEventService(repo, zap.NewNop())
	const id = "9a1f3c3e-2a44-4d0b-8c55-6b1e0f7d2a10"
	seedEvents(t, st, model.Event{ID: id, Title: "Kickoff", StartsAt: "2025-11-21T17:30:00-08:00", EventKind: "social", Location: strPtr("SU Ballroom")})
	_ = st.attendance.Upsert(context.Background(), []model.EventAttendance{
		{EventID: id, AttendeeEmail: "a@sjsu.edu", MemberEmail: strPtr("a@sjsu.edu"), AttendeeMajorNormalized: "Nursing",
			AttendeeMajorCategory: "Health Sciences", AttendeeProgram: "Undergraduate"},
	})

	got, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Kickoff" || got.Location != "SU Ballroom" {
		t.Errorf("event = %+v", got.EventResponse)
	}
	if got.CreatedAt != time.Date(2025, 11, 22, 9, 0, 0, 0, time.UTC).Format(time.RFC3339) {
		t.Errorf("created_at = %q", got.CreatedAt)
	}
	if len(got.Attendance) != 1 || !got.Attendance[0].IsMember || got.Attendance[0].MajorCategory != "Health Sciences" {
		t.Errorf("attendance = %+v", got.Attendance)
	}
}

func TestEventService_GetNotFound(t *testing.T) {
	repo, _ := newMockStore()
	svc := NewEventService(repo, zap.NewNop())

	for _, id := range []string{"nope", "9a1f3c3e-2a44-4d0b-8c55-6b1e0f7d2a10"} {
		if _, err := svc.Get(context.Background(), id); !errors.Is(err, ErrEventNotFound) {
			t.Errorf("%s: expected ErrEventNotFound, got %v", id, err)
		}
	}
}

// ── CalendarService ──

func TestCalendarService_EventsFeed(t *testing.T) {
	repo, st := newMockStore()
	svc := NewCalendarService(repo, zap.NewNop())
	seedEvents(t, st,
		model.Event{ID: "ev-1", Title: "Kickoff", StartsAt: "2025-11-21T17:30:00-08:00", EventKind: "social",
			EventType: strPtr("mixer"), Location: strPtr("SU Ballroom"), Committee: strPtr("Events")},
		model.Event{ID: "ev-2", Title: "Broken", StartsAt: "not a time", EventKind: "nonsocial"},
	)

	feed, err := svc.EventsFeed(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"METHOD:PUBLISH",
		"UID:ev-1@dashboard-engagement",
		"SUMMARY:Kickoff",
		"DTSTART:20251122T013000Z",
		"DTEND:20251122T033000Z",
		"LOCATION:SU Ballroom",
		"CATEGORIES:social",
	} {
		if !strings.Contains(feed, want) {
			t.Errorf("feed is missing %q:\n%s", want, feed)
		}
	}
	if strings.Contains(feed, "Broken") {
		t.Errorf("events with an unreadable start must be skipped")
	}
}

func TestCalendarService_EventsFeedFailure(t *testing.T) {
	repo, st := newMockStore()
	st.events.listErr = errors.New("timeout")
	svc := NewCalendarService(repo, zap.NewNop())

	if _, err := svc.EventsFeed(context.Background()); !errors.Is(err, ErrEventQueryFailed) {
		t.Errorf("expected ErrEventQueryFailed, got %v", err)
	}
}
