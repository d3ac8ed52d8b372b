package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dashboard-engagement/server/internal/dto"
	"dashboard-engagement/server/internal/repository"
	apperrors "dashboard-engagement/server/pkg/errors"
	"dashboard-engagement/server/pkg/metrics"
)

// ErrAnalyticsQuery wraps any failure while building an analytics payload.
var ErrAnalyticsQuery = fmt.Errorf("%w: analytics query failed", apperrors.ErrPersistence)

// RetentionBuckets are the fixed histogram buckets, in display order.
var RetentionBuckets = []string{"0", "1", "2", "3", "4+"}

// TopEventsLimit is how many events the mission breakdown covers.
const TopEventsLimit = 10

const (
	cacheKeyRetention = "analytics:retention"
	cacheKeyOverview  = "analytics:overview"
	cacheKeyMission   = "analytics:mission"
	cacheKeyDashboard = "analytics:dashboard"
)

// Every key an import must drop.
var analyticsCacheKeys = []string{cacheKeyRetention, cacheKeyOverview, cacheKeyMission, cacheKeyDashboard}

// AnalyticsService builds the dashboard payloads.
type AnalyticsService interface {
	Retention(ctx context.Context) (*dto.RetentionPayload, error)
	Overview(ctx context.Context) (*dto.OverviewPayload, error)
	Mission(ctx context.Context) (*dto.MissionPayload, error)
	Dashboard(ctx context.Context) (*dto.DashboardPayload, error)
}

type analyticsService struct {
	repo   *repository.Repository
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewAnalyticsService creates an AnalyticsService. Payloads are cached for ttl
// when cache is non-nil and ttl is positive.
func NewAnalyticsService(repo *repository.Repository, cache Cache, ttl time.Duration, logger *zap.Logger) AnalyticsService {
	return &analyticsService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// cached serves key from the cache or builds and stores it. Cache failures are
// logged and never fail the request.
func cached[T any](ctx context.Context, s *analyticsService, key string, build func(context.Context) (*T, error)) (*T, error) {
	useCache := s.cache != nil && s.ttl > 0
	if useCache {
		var hit T
		found, err := s.cache.GetJSON(ctx, key, &hit)
		switch {
		case err != nil:
			metrics.AnalyticsCacheTotal.WithLabelValues("error").Inc()
			s.logger.Warn("analytics cache read failed", zap.String("key", key), zap.Error(err))
		case found:
			metrics.AnalyticsCacheTotal.WithLabelValues("hit").Inc()
			return &hit, nil
		default:
			metrics.AnalyticsCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	payload, err := build(ctx)
	if err != nil {
		s.logger.Error("analytics query failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrAnalyticsQuery, err)
	}

	if useCache {
		if err := s.cache.SetJSON(ctx, key, payload, s.ttl); err != nil {
			s.logger.Warn("analytics cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return payload, nil
}

// ────────────────────── Retention ──────────────────────

func (s *analyticsService) Retention(ctx context.Context) (*dto.RetentionPayload, error) {
	return cached(ctx, s, cacheKeyRetention, s.buildRetention)
}

func (s *analyticsService) buildRetention(ctx context.Context) (*dto.RetentionPayload, error) {
	overallRows, err := s.repo.Analytics.RetentionOverall(ctx)
	if err != nil {
		return nil, fmt.Errorf("retention overall: %w", err)
	}
	byMajorRows, err := s.repo.Analytics.RetentionByMajorCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("retention by major: %w", err)
	}

	overall := make(map[string]int, len(overallRows))
	for _, r := range overallRows {
		overall[r.EventsAttendedBucket] = r.People
	}

	// categories keep the order they first appear in
	var order []string
	grouped := make(map[string]map[string]int)
	for _, r := range byMajorRows {
		if _, ok := grouped[r.MajorCategory]; !ok {
			order = append(order, r.MajorCategory)
			grouped[r.MajorCategory] = make(map[string]int)
		}
		grouped[r.MajorCategory][r.EventsAttendedBucket] = r.People
	}

	byMajor := make([]dto.CategoryRetention, 0, len(order))
	for _, category := range order {
		byMajor = append(byMajor, dto.CategoryRetention{
			MajorCategory: category,
			Distribution:  fillBuckets(grouped[category]),
		})
	}

	return &dto.RetentionPayload{
		AttendanceCountDistributionOverall:         fillBuckets(overall),
		AttendanceCountDistributionByMajorCategory: byMajor,
	}, nil
}

// fillBuckets lists every retention bucket, using 0 for the ones without rows.
func fillBuckets(counts map[string]int) []dto.RetentionBucket {
	out := make([]dto.RetentionBucket, len(RetentionBuckets))
	for i, b := range RetentionBuckets {
		out[i] = dto.RetentionBucket{EventsAttendedBucket: b, People: counts[b]}
	}
	return out
}

// ────────────────────── Overview ──────────────────────

func (s *analyticsService) Overview(ctx context.Context) (*dto.OverviewPayload, error) {
	return cached(ctx, s, cacheKeyOverview, s.buildOverview)
}

func (s *analyticsService) buildOverview(ctx context.Context) (*dto.OverviewPayload, error) {
	kpis, err := s.repo.Analytics.OverviewKPIs(ctx)
	if err != nil {
		return nil, fmt.Errorf("overview kpis: %w", err)
	}
	series, err := s.repo.Analytics.MembersOverTime(ctx)
	if err != nil {
		return nil, fmt.Errorf("members over time: %w", err)
	}

	points := make([]dto.MembersOverTimePoint, 0, len(series))
	for _, r := range series {
		points = append(points, dto.MembersOverTimePoint{
			Period:                      r.Period,
			RegisteredMembersCumulative: r.RegisteredMembersCumulative,
			ActiveMembersCumulative:     r.ActiveMembersCumulative,
		})
	}

	return &dto.OverviewPayload{
		KPIs: dto.OverviewKPIs{
			TotalMembers:               kpis.TotalMembers,
			ActiveMembers:              kpis.ActiveMembers,
			ActiveMembersPct:           kpis.ActiveMembersPct,
			RegisteredGrowthLast30dPct: kpis.RegisteredGrowthLast30dPct,
		},
		MembersOverTime: points,
	}, nil
}

// ────────────────────── Mission ──────────────────────

func (s *analyticsService) Mission(ctx context.Context) (*dto.MissionPayload, error) {
	return cached(ctx, s, cacheKeyMission, s.buildMission)
}

func (s *analyticsService) buildMission(ctx context.Context) (*dto.MissionPayload, error) {
	majors, err := s.repo.Analytics.MajorCategoryDistribution(ctx)
	if err != nil {
		return nil, fmt.Errorf("major distribution: %w", err)
	}
	years, err := s.repo.Analytics.ClassYearDistribution(ctx)
	if err != nil {
		return nil, fmt.Errorf("class year distribution: %w", err)
	}
	eventRows, err := s.repo.Analytics.TopEventBreakdown(ctx, TopEventsLimit)
	if err != nil {
		return nil, fmt.Errorf("event breakdown: %w", err)
	}

	payload := &dto.MissionPayload{
		MajorCategoryDistribution: make([]dto.MajorCategoryCount, 0, len(majors)),
		ClassYearDistribution:     make([]dto.ClassYearCount, 0, len(years)),
		EventMajorCategoryPercent: groupEventBreakdown(eventRows),
	}
	for _, r := range majors {
		payload.MajorCategoryDistribution = append(payload.MajorCategoryDistribution,
			dto.MajorCategoryCount{MajorCategory: r.MajorCategory, Members: r.Members})
	}
	for _, r := range years {
		payload.ClassYearDistribution = append(payload.ClassYearDistribution,
			dto.ClassYearCount{ClassYear: r.ClassYear, Members: r.Members})
	}
	return payload, nil
}

// groupEventBreakdown folds (event, category) rows into one entry per event,
// keeping the row order of both events and segments.
func groupEventBreakdown(rows []repository.EventBreakdownRow) []dto.EventMajorBreakdown {
	out := make([]dto.EventMajorBreakdown, 0)
	index := make(map[string]int)
	for _, r := range rows {
		i, ok := index[r.EventID]
		if !ok {
			var startsAt *string
			if r.StartsAt != nil {
				v := r.StartsAt.Format(time.RFC3339)
				startsAt = &v
			}
			out = append(out, dto.EventMajorBreakdown{
				EventID:        r.EventID,
				EventTitle:     r.EventTitle,
				StartsAt:       startsAt,
				TotalAttendees: r.TotalAttendees,
				Segments:       []dto.EventSegment{},
			})
			i = len(out) - 1
			index[r.EventID] = i
		}
		out[i].Segments = append(out[i].Segments, dto.EventSegment{
			MajorCategory: r.MajorCategory,
			Pct:           r.Pct,
			Count:         r.Count,
		})
	}
	return out
}

// ────────────────────── Dashboard ──────────────────────

func (s *analyticsService) Dashboard(ctx context.Context) (*dto.DashboardPayload, error) {
	return cached(ctx, s, cacheKeyDashboard, func(ctx context.Context) (*dto.DashboardPayload, error) {
		overview, err := s.buildOverview(ctx)
		if err != nil {
			return nil, err
		}
		retention, err := s.buildRetention(ctx)
		if err != nil {
			return nil, err
		}
		mission, err := s.buildMission(ctx)
		if err != nil {
			return nil, err
		}
		return &dto.DashboardPayload{Overview: *overview, Retention: *retention, Mission: *mission}, nil
	})
}
