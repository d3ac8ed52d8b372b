package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"dashboard-engagement/server/internal/dto"
	"dashboard-engagement/server/internal/service"
	"dashboard-engagement/server/pkg/response"
)

// AnalyticsHandler serves the read-only dashboard payloads. Each section endpoint
// answers {"<section>": payload}, the combined endpoint {overview, retention, mission};
// failures use the error envelope.
type AnalyticsHandler struct {
	analyticsSvc service.AnalyticsService
}

// NewAnalyticsHandler creates an AnalyticsHandler.
func NewAnalyticsHandler(analyticsSvc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsSvc: analyticsSvc}
}

// Dashboard GET /analytics
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	serveAnalytics(c, "dashboard", h.analyticsSvc.Dashboard, func(p *dto.DashboardPayload) any { return p })
}

// Retention GET /analytics/retention
func (h *AnalyticsHandler) Retention(c *gin.Context) {
	serveAnalytics(c, "retention", h.analyticsSvc.Retention, func(p *dto.RetentionPayload) any {
		return dto.RetentionResponse{Retention: *p}
	})
}

// Overview GET /analytics/overview
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	serveAnalytics(c, "overview", h.analyticsSvc.Overview, func(p *dto.OverviewPayload) any {
		return dto.OverviewResponse{Overview: *p}
	})
}

// Mission GET /analytics/mission
func (h *AnalyticsHandler) Mission(c *gin.Context) {
	serveAnalytics(c, "mission", h.analyticsSvc.Mission, func(p *dto.MissionPayload) any {
		return dto.MissionResponse{Mission: *p}
	})
}

func serveAnalytics[T any](c *gin.Context, name string, load func(context.Context) (*T, error), body func(*T) any) {
	payload, err := load(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.InternalErrorWithDetails(c, "failed to compute "+name+" analytics", err.Error())
		return
	}
	c.JSON(http.StatusOK, body(payload))
}
