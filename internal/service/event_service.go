package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dashboard-engagement/server/internal/dto"
	"dashboard-engagement/server/internal/model"
	"dashboard-engagement/server/internal/repository"
	apperrors "dashboard-engagement/server/pkg/errors"
)

// ── Event errors ──

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrEventQueryFailed = fmt.Errorf("%w: event query failed", apperrors.ErrPersistence)
)

// EventService reads imported events.
type EventService interface {
	List(ctx context.Context, req *dto.ListEventsRequest) ([]dto.EventResponse, int64, error)
	Get(ctx context.Context, id string) (*dto.EventDetailResponse, error)
}

type eventService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEventService creates an EventService.
func NewEventService(repo *repository.Repository, logger *zap.Logger) EventService {
	return &eventService{repo: repo, logger: logger}
}

func (s *eventService) List(ctx context.Context, req *dto.ListEventsRequest) ([]dto.EventResponse, int64, error) {
	filter := repository.EventFilter{EventKind: req.EventKind, Committee: req.Committee}
	rows, total, err := s.repo.Event.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list events failed", zap.Error(err))
		return nil, 0, fmt.Errorf("%w: %v", ErrEventQueryFailed, err)
	}

	list := make([]dto.EventResponse, 0, len(rows))
	for i := range rows {
		list = append(list, toEventResponse(&rows[i]))
	}
	return list, total, nil
}

func (s *eventService) Get(ctx context.Context, id string) (*dto.EventDetailResponse, error) {
	// a malformed id cannot name an event; skip the round trip
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrEventNotFound
	}

	event, err := s.repo.Event.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		s.logger.Error("get event failed", zap.String("event_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrEventQueryFailed, err)
	}

	rows, err := s.repo.Attendance.ListByEvent(ctx, id)
	if err != nil {
		s.logger.Error("list attendance failed", zap.String("event_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrEventQueryFailed, err)
	}

	attendance := make([]dto.AttendanceResponse, 0, len(rows))
	for i := range rows {
		attendance = append(attendance, toAttendanceResponse(&rows[i]))
	}
	return &dto.EventDetailResponse{
		EventResponse: toEventResponse(event),
		Attendance:    attendance,
	}, nil
}

// ── Conversion ──

func toEventResponse(e *model.EventWithCount) dto.EventResponse {
	return dto.EventResponse{
		ID:            e.ID,
		Title:         e.Title,
		StartsAt:      e.StartsAt,
		EventKind:     e.EventKind,
		EventType:     deref(e.EventType),
		Location:      deref(e.Location),
		Committee:     deref(e.Committee),
		AttendeeCount: e.AttendeeCount,
		Metadata:      e.Metadata,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}

func toAttendanceResponse(a *model.EventAttendance) dto.AttendanceResponse {
	return dto.AttendanceResponse{
		AttendeeEmail:   a.AttendeeEmail,
		IsMember:        a.MemberEmail != nil,
		MajorRaw:        deref(a.AttendeeMajorRaw),
		MajorNormalized: a.AttendeeMajorNormalized,
		MajorCategory:   a.AttendeeMajorCategory,
		Program:         a.AttendeeProgram,
		CheckInAt:       a.CheckInAt,
	}
}
