package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"dashboard-engagement/server/config"
	"dashboard-engagement/server/internal/repository"
)

// Cache is the JSON key/value store used for analytics payloads.
// *redis.Client satisfies it.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Service groups every service behind one handle.
type Service struct {
	Import    ImportService
	Analytics AnalyticsService
	Event     EventService
	Export    ExportService
	Calendar  CalendarService
}

// NewService builds the aggregate. cache may be nil, which disables caching.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	cache Cache,
	logger *zap.Logger,
) *Service {
	analytics := NewAnalyticsService(repo, cache, cfg.Analytics.CacheTTL, logger)
	return &Service{
		Import:    NewImportService(repo, cache, logger),
		Analytics: analytics,
		Event:     NewEventService(repo, logger),
		Export:    NewExportService(repo, analytics, logger),
		Calendar:  NewCalendarService(repo, logger),
	}
}
