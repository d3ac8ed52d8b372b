package dto

// ImportTypeEventAttendance is the only import_type the attendance endpoint accepts.
const ImportTypeEventAttendance = "event_attendance"

// ImportAttendanceRequest carries the form fields of POST /api/import/event-attendance.
// Validation lives in the import service so every failure maps to its own error code.
type ImportAttendanceRequest struct {
	ImportType string `form:"import_type"`
	Title      string `form:"title"`
	StartsAt   string `form:"starts_at"`  // datetime-local, e.g. 2025-11-21T17:30
	EventKind  string `form:"event_kind"` // social | nonsocial
	EventType  string `form:"event_type"`
	Location   string `form:"location"`
	Committee  string `form:"committee"`
}

// ImportAttendanceResponse is the summary returned after an import.
// The camelCase keys are what the dashboard client reads.
type ImportAttendanceResponse struct {
	Status            string            `json:"status"`
	EventID           string            `json:"event_id"`
	DryRun            bool              `json:"dry_run,omitempty"`
	ValidationSummary ValidationSummary `json:"validationSummary"`
	SuccessSummary    SuccessSummary    `json:"successSummary"`
	Warnings          []string          `json:"warnings"`
}

// ValidationSummary counts received rows that were kept versus skipped.
type ValidationSummary struct {
	RowsValid      int `json:"rowsValid"`
	RowsWithErrors int `json:"rowsWithErrors"`
}

// SuccessSummary counts rows written versus skipped.
type SuccessSummary struct {
	RowsImported int `json:"rowsImported"`
	RowsSkipped  int `json:"rowsSkipped"`
}
