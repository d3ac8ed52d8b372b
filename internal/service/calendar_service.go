package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"dashboard-engagement/server/internal/model"
	"dashboard-engagement/server/internal/repository"
)

const (
	calendarProductID = "-//dashboard-engagement//events//EN"
	calendarName      = "Club events"
	calendarUIDDomain = "dashboard-engagement"

	// Imports record only a start time.
	defaultEventDuration = 2 * time.Hour
)

// CalendarService publishes imported events as an iCalendar feed.
type CalendarService interface {
	EventsFeed(ctx context.Context) (string, error)
}

type calendarService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCalendarService creates a CalendarService.
func NewCalendarService(repo *repository.Repository, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, logger: logger}
}

func (s *calendarService) EventsFeed(ctx context.Context) (string, error) {
	events, err := s.repo.Event.ListAll(ctx)
	if err != nil {
		s.logger.Error("list events for calendar failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrEventQueryFailed, err)
	}
	return buildCalendar(events, time.Now(), s.logger), nil
}

// buildCalendar renders one VEVENT per event. Events whose start cannot be
// read back are left out.
func buildCalendar(events []model.Event, now time.Time, logger *zap.Logger) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(calendarName)

	for i := range events {
		e := &events[i]
		start, err := time.Parse(time.RFC3339, e.StartsAt)
		if err != nil {
			logger.Warn("skip calendar event with unreadable start",
				zap.String("event_id", e.ID), zap.String("starts_at", e.StartsAt))
			continue
		}

		vevent := cal.AddEvent(e.ID + "@" + calendarUIDDomain)
		vevent.SetSummary(e.Title)
		vevent.SetStartAt(start)
		vevent.SetEndAt(start.Add(defaultEventDuration))
		vevent.SetDtStampTime(now)
		if !e.CreatedAt.IsZero() {
			vevent.SetCreatedTime(e.CreatedAt)
		}
		if loc := deref(e.Location); loc != "" {
			vevent.SetLocation(loc)
		}
		if committee := deref(e.Committee); committee != "" {
			vevent.SetDescription("Hosted by " + committee)
		}
		for _, c := range eventCategories(e) {
			vevent.AddProperty(ics.ComponentPropertyCategories, c)
		}
	}
	return cal.Serialize()
}

func eventCategories(e *model.Event) []string {
	categories := []string{e.EventKind}
	if t := deref(e.EventType); t != "" {
		categories = append(categories, t)
	}
	return categories
}
