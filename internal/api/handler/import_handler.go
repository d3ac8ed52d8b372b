package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dashboard-engagement/server/internal/dto"
	"dashboard-engagement/server/internal/service"
	"dashboard-engagement/server/pkg/response"
)

// ImportHandler serves the CSV import endpoints.
type ImportHandler struct {
	importSvc service.ImportService
}

// NewImportHandler creates an ImportHandler.
func NewImportHandler(importSvc service.ImportService) *ImportHandler {
	return &ImportHandler{importSvc: importSvc}
}

// ImportEventAttendance creates an event and its attendance from an uploaded CSV.
// POST /api/import/event-attendance (multipart/form-data)
//
// ?dry_run=true validates and reports without writing.
func (h *ImportHandler) ImportEventAttendance(c *gin.Context) {
	var req dto.ImportAttendanceRequest
	if err := c.ShouldBind(&req); err != nil {
		if isBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "request body too large")
			return
		}
		response.BadRequest(c, 10001, "invalid form data")
		return
	}

	dryRun, _ := strconv.ParseBool(c.Query("dry_run"))
	file := service.ImportFile{}

	header, err := c.FormFile("file")
	switch {
	case err == nil:
		f, err := header.Open()
		if err != nil {
			response.BadRequest(c, 30006, "could not open uploaded file")
			return
		}
		defer f.Close()
		file = service.ImportFile{Name: header.Filename, Content: f}
	case isBodyTooLarge(err):
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "request body too large")
		return
	case !errors.Is(err, http.ErrMissingFile):
		response.BadRequest(c, 10001, "invalid multipart body")
		return
	}

	// a missing file is reported by the service after the form fields are checked
	result, err := h.importSvc.ImportAttendance(c.Request.Context(), &req, file, service.ImportOptions{DryRun: dryRun, ImportedBy: Principal(c)})
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	// the dashboard reads the summary at the top level
	c.JSON(http.StatusOK, result)
}

func (h *ImportHandler) handleImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrImportBadType):
		response.BadRequest(c, 30001, "import_type must be 'event_attendance' for this endpoint")
	case errors.Is(err, service.ErrImportMissingTitle):
		response.BadRequest(c, 30002, "missing event title")
	case errors.Is(err, service.ErrImportBadStart):
		response.BadRequest(c, 30003, "starts_at is missing or not a valid date-time")
	case errors.Is(err, service.ErrImportBadKind):
		response.BadRequest(c, 30004, "event_kind must be 'social' or 'nonsocial'")
	case errors.Is(err, service.ErrImportNotCSV):
		response.BadRequest(c, 30005, "file must be a .csv")
	case errors.Is(err, service.ErrImportUnreadable):
		response.BadRequest(c, 30006, "CSV file could not be read")
	case errors.Is(err, service.ErrImportNoEmailColumn):
		response.BadRequest(c, 30007, "CSV must include an email column (Email / SJSU Email / Email Address)")
	case errors.Is(err, service.ErrImportMissingFile):
		response.BadRequest(c, 30008, "missing CSV file")
	case errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, 30009, fmt.Sprintf("CSV has more than %d data rows", service.MaxImportRows))
	case errors.Is(err, service.ErrImportEventFailed):
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to insert event")
	default:
		response.InternalError(c)
	}
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
