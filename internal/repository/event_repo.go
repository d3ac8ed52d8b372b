package repository

import (
	"context"

	"gorm.io/gorm"

	"dashboard-engagement/server/internal/model"
)

// EventFilter narrows event listings. Zero values mean "any".
type EventFilter struct {
	EventKind string
	Committee string
}

// EventRepository is the data access for imported events.
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id string) (*model.EventWithCount, error)
	List(ctx context.Context, filter EventFilter, offset, limit int) ([]model.EventWithCount, int64, error)
	ListAll(ctx context.Context) ([]model.Event, error)
}

type eventRepo struct {
	db *gorm.DB
}

// NewEventRepo creates an EventRepository.
func NewEventRepo(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepo) withCounts(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("events AS e").
		Select("e.*, COUNT(a.attendee_email)::int AS attendee_count").
		Joins("LEFT JOIN event_attendance a ON a.event_id = e.id").
		Group("e.id")
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (*model.EventWithCount, error) {
	var rows []model.EventWithCount
	err := r.withCounts(ctx).Where("e.id = ?", id).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *eventRepo) List(ctx context.Context, filter EventFilter, offset, limit int) ([]model.EventWithCount, int64, error) {
	var total int64
	countQuery := applyEventFilter(r.db.WithContext(ctx).Model(&model.Event{}), "", filter)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.EventWithCount
	err := applyEventFilter(r.withCounts(ctx), "e.", filter).
		Order("e.starts_at DESC, e.created_at DESC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	return rows, total, err
}

func (r *eventRepo) ListAll(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).Order("starts_at ASC").Find(&events).Error
	return events, err
}

func applyEventFilter(db *gorm.DB, prefix string, filter EventFilter) *gorm.DB {
	if filter.EventKind != "" {
		db = db.Where(prefix+"event_kind = ?", filter.EventKind)
	}
	if filter.Committee != "" {
		db = db.Where("LOWER("+prefix+"committee) = LOWER(?)", filter.Committee)
	}
	return db
}
