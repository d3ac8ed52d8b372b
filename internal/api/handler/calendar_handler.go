package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dashboard-engagement/server/internal/service"
	"dashboard-engagement/server/pkg/response"
)

// CalendarHandler serves the iCalendar feed.
type CalendarHandler struct {
	calendarSvc service.CalendarService
}

// NewCalendarHandler creates a CalendarHandler.
func NewCalendarHandler(calendarSvc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc}
}

// EventsFeed GET /api/calendar/events.ics
func (h *CalendarHandler) EventsFeed(c *gin.Context) {
	feed, err := h.calendarSvc.EventsFeed(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}
	c.Header("Content-Disposition", `inline; filename="events.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}
