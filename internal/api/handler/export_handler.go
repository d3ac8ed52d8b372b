package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"dashboard-engagement/server/internal/service"
	"dashboard-engagement/server/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves spreadsheet downloads.
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportAnalytics GET /api/export/analytics
func (h *ExportHandler) ExportAnalytics(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportAnalytics(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	sendWorkbook(c, buf, filename)
}

// ExportEventAttendance GET /api/export/events/:id/attendance
func (h *ExportHandler) ExportEventAttendance(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportEventAttendance(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	sendWorkbook(c, buf, filename)
}

func sendWorkbook(c *gin.Context, buf *bytes.Buffer, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.NotFound(c, 31001, "event not found")
	case errors.Is(err, service.ErrAnalyticsQuery):
		_ = c.Error(err)
		response.InternalErrorWithDetails(c, "failed to compute analytics", err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
