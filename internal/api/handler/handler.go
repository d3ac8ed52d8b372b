package handler

import "dashboard-engagement/server/internal/service"

// Handler groups every HTTP handler.
type Handler struct {
	Import    *ImportHandler
	Analytics *AnalyticsHandler
	Event     *EventHandler
	Export    *ExportHandler
	Calendar  *CalendarHandler
}

// NewHandler builds the handlers on top of svc.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Import:    NewImportHandler(svc.Import),
		Analytics: NewAnalyticsHandler(svc.Analytics),
		Event:     NewEventHandler(svc.Event),
		Export:    NewExportHandler(svc.Export),
		Calendar:  NewCalendarHandler(svc.Calendar),
	}
}
