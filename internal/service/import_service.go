package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"dashboard-engagement/server/internal/dto"
	"dashboard-engagement/server/internal/model"
	"dashboard-engagement/server/internal/normalize"
	"dashboard-engagement/server/internal/repository"
	apperrors "dashboard-engagement/server/pkg/errors"
	"dashboard-engagement/server/pkg/metrics"
)

// ── Import errors ──

var (
	ErrImportBadType       = fmt.Errorf("%w: import_type must be 'event_attendance' for this endpoint", apperrors.ErrInvalidInput)
	ErrImportMissingTitle  = fmt.Errorf("%w: missing event title", apperrors.ErrInvalidInput)
	ErrImportBadStart      = fmt.Errorf("%w: starts_at is missing or not a valid date-time", apperrors.ErrInvalidInput)
	ErrImportBadKind       = fmt.Errorf("%w: event_kind must be 'social' or 'nonsocial'", apperrors.ErrInvalidInput)
	ErrImportNotCSV        = fmt.Errorf("%w: file must be a .csv", apperrors.ErrInvalidInput)
	ErrImportUnreadable    = fmt.Errorf("%w: CSV file could not be read", apperrors.ErrInvalidInput)
	ErrImportNoEmailColumn = fmt.Errorf("%w: CSV must include an email column (Email / SJSU Email / Email Address)", apperrors.ErrInvalidInput)
	ErrImportMissingFile   = fmt.Errorf("%w: missing CSV file", apperrors.ErrInvalidInput)
	ErrImportTooManyRows   = fmt.Errorf("%w: CSV has more than %d data rows", apperrors.ErrInvalidInput, MaxImportRows)

	ErrImportRosterFailed = fmt.Errorf("%w: failed to load member roster", apperrors.ErrPersistence)
	ErrImportEventFailed  = fmt.Errorf("%w: failed to insert event", apperrors.ErrPersistence)
	ErrImportWriteFailed  = fmt.Errorf("%w: failed to write attendance", apperrors.ErrPersistence)
)

// MaxImportRows caps the data rows of one upload.
const MaxImportRows = 5000

// Provenance recorded on the event row.
const importSource = "admin_import"

// ImportFile is the uploaded CSV.
type ImportFile struct {
	Name    string
	Content io.Reader
}

// ImportOptions tune one import call.
type ImportOptions struct {
	// DryRun runs validation and row processing against the live roster but writes nothing.
	DryRun bool
	// ImportedBy is recorded in the event metadata when set.
	ImportedBy string
}

// ImportService ingests event attendance exports.
type ImportService interface {
	ImportAttendance(ctx context.Context, req *dto.ImportAttendanceRequest, file ImportFile, opts ImportOptions) (*dto.ImportAttendanceResponse, error)
}

type importService struct {
	repo   *repository.Repository
	cache  Cache
	logger *zap.Logger
}

// NewImportService creates an ImportService. cache may be nil.
func NewImportService(repo *repository.Repository, cache Cache, logger *zap.Logger) ImportService {
	return &importService{repo: repo, cache: cache, logger: logger}
}

// ════════════════════════════════════════════════════════════
// ImportAttendance: validate → load roster → process rows → persist → respond
// ════════════════════════════════════════════════════════════

func (s *importService) ImportAttendance(ctx context.Context, req *dto.ImportAttendanceRequest, file ImportFile, opts ImportOptions) (*dto.ImportAttendanceResponse, error) {
	resp, err := s.importAttendance(ctx, req, file, opts)
	switch {
	case err == nil && opts.DryRun:
		metrics.ImportsTotal.WithLabelValues(metrics.OutcomeDryRun).Inc()
	case err == nil:
		metrics.ImportsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	case errors.Is(err, apperrors.ErrInvalidInput):
		metrics.ImportsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
	default:
		metrics.ImportsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
	}
	return resp, err
}

func (s *importService) importAttendance(ctx context.Context, req *dto.ImportAttendanceRequest, file ImportFile, opts ImportOptions) (*dto.ImportAttendanceResponse, error) {
	// 1. validate-request
	event, err := buildEvent(req)
	if err != nil {
		return nil, err
	}
	if file.Content == nil {
		return nil, ErrImportMissingFile
	}
	if !strings.EqualFold(filepath.Ext(file.Name), ".csv") {
		return nil, ErrImportNotCSV
	}

	table, err := readAttendanceCSV(file.Content)
	if err != nil {
		return nil, err
	}
	cols, err := resolveAttendanceColumns(table.headers)
	if err != nil {
		return nil, err
	}
	if len(table.records) > MaxImportRows {
		return nil, ErrImportTooManyRows
	}
	event.Metadata = model.JSONMap{
		"source":              importSource,
		"filename":            file.Name,
		"email_column_used":   cols.email,
		"major_column_used":   columnOrNil(cols.major),
		"program_column_used": columnOrNil(cols.classYear),
		"checkin_column_used": columnOrNil(cols.checkIn),
	}
	if opts.ImportedBy != "" {
		event.Metadata["imported_by"] = opts.ImportedBy
	}

	// 2. load-roster
	roster, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}

	// 3. process-rows
	batch := processAttendanceRows(event.ID, table.records, cols, roster)

	// 4. persist
	if !opts.DryRun {
		if err := s.persist(ctx, event, batch); err != nil {
			return nil, err
		}
		s.invalidateAnalytics(ctx)
		metrics.ImportRowsTotal.WithLabelValues("imported").Add(float64(len(batch.rows)))
		metrics.ImportRowsTotal.WithLabelValues("skipped").Add(float64(batch.counters.skipped))
		metrics.ImportRowsTotal.WithLabelValues("duplicate").Add(float64(batch.counters.duplicateEmail))
	}

	// 5. respond
	resp := batch.response(event.ID)
	if opts.DryRun {
		resp.Status = "dry_run"
		resp.DryRun = true
		resp.EventID = ""
	}

	s.logger.Info("attendance import finished",
		zap.String("event_id", resp.EventID),
		zap.String("filename", file.Name),
		zap.Bool("dry_run", opts.DryRun),
		zap.Int("rows_received", batch.counters.received),
		zap.Int("rows_imported", resp.SuccessSummary.RowsImported),
		zap.Int("rows_skipped", batch.counters.skipped),
		zap.Int("matched_members", len(batch.memberEmails())),
		zap.Int("warnings", len(resp.Warnings)),
	)
	return resp, nil
}

// buildEvent validates the form fields and returns the event to insert. The ID
// is assigned here so attendance rows can reference it before the insert.
func buildEvent(req *dto.ImportAttendanceRequest) (*model.Event, error) {
	if normalize.Text(req.ImportType) != dto.ImportTypeEventAttendance {
		return nil, ErrImportBadType
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrImportMissingTitle
	}

	startsAt, err := normalize.ParseEventStart(req.StartsAt)
	if err != nil {
		return nil, ErrImportBadStart
	}

	kind := normalize.Text(req.EventKind)
	if kind != model.EventKindSocial && kind != model.EventKindNonSocial {
		return nil, ErrImportBadKind
	}

	return &model.Event{
		ID:        uuid.NewString(),
		Title:     title,
		StartsAt:  startsAt,
		EventKind: kind,
		EventType: optionalText(req.EventType),
		Location:  optionalText(req.Location),
		Committee: optionalText(req.Committee),
	}, nil
}

// loadRoster indexes the roster by normalized email. The map lives for one request.
func (s *importService) loadRoster(ctx context.Context) (map[string]*model.Member, error) {
	members, err := s.repo.Member.ListRoster(ctx)
	if err != nil {
		s.logger.Error("load roster failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrImportRosterFailed, err)
	}
	roster := make(map[string]*model.Member, len(members))
	for i := range members {
		key := normalize.Email(members[i].Email)
		if key == "" {
			continue
		}
		roster[key] = &members[i]
	}
	return roster, nil
}

// persist writes the event, its attendance and the roster recompute in one transaction.
func (s *importService) persist(ctx context.Context, event *model.Event, batch *attendanceBatch) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("begin transaction failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrImportEventFailed, err)
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()
	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}

	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Event.Create(ctx, event); err != nil {
		rollback()
		if isDataException(err) {
			s.logger.Warn("event rejected by database", zap.String("starts_at", event.StartsAt), zap.Error(err))
			return ErrImportBadStart
		}
		s.logger.Error("insert event failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrImportEventFailed, err)
	}

	if len(batch.rows) > 0 {
		if err := txRepo.Attendance.Upsert(ctx, batch.rows); err != nil {
			rollback()
			s.logger.Error("upsert attendance failed", zap.String("event_id", event.ID), zap.Error(err))
			return fmt.Errorf("%w: %v", ErrImportWriteFailed, err)
		}

		// only roster members can become active
		if emails := batch.memberEmails(); len(emails) > 0 {
			if err := txRepo.Attendance.RecomputeActiveMembers(ctx, emails); err != nil {
				rollback()
				s.logger.Error("recompute active members failed", zap.Int("members", len(emails)), zap.Error(err))
				return fmt.Errorf("%w: %v", ErrImportWriteFailed, err)
			}
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("commit import failed", zap.Error(err))
			return fmt.Errorf("%w: %v", ErrImportWriteFailed, err)
		}
	}
	return nil
}

func (s *importService) invalidateAnalytics(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, analyticsCacheKeys...); err != nil {
		s.logger.Warn("invalidate analytics cache failed", zap.Error(err))
	}
}

// isDataException reports a Postgres class 22 error (bad date-time, bad value).
func isDataException(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "22")
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ────────────────────── Row processing ──────────────────────

type rowIssue int

const (
	issueMissingMajor rowIssue = iota
	issueMissingProgram
	issueBadCheckIn
)

// rowResult is one resolved attendee plus the non-fatal problems met on the way.
type rowResult struct {
	record model.EventAttendance
	issues []rowIssue
}

type importCounters struct {
	received       int
	skipped        int
	missingMajor   int
	missingProgram int
	badCheckIn     int
	duplicateEmail int
}

func (c *importCounters) merge(issues []rowIssue) {
	for _, issue := range issues {
		switch issue {
		case issueMissingMajor:
			c.missingMajor++
		case issueMissingProgram:
			c.missingProgram++
		case issueBadCheckIn:
			c.badCheckIn++
		}
	}
}

type attendanceBatch struct {
	rows     []model.EventAttendance
	counters importCounters
}

// processAttendanceRows resolves every record in file order. Blank rows are
// ignored, rows without an email are skipped and only the first row of each
// normalized email is kept.
func processAttendanceRows(eventID string, records []csvRecord, cols attendanceColumns, roster map[string]*model.Member) *attendanceBatch {
	batch := &attendanceBatch{}
	seen := make(map[string]struct{}, len(records))

	for _, rec := range records {
		if rec.blank() {
			continue
		}
		batch.counters.received++

		email := normalize.Email(rec.get(cols.email))
		if email == "" {
			batch.counters.skipped++
			continue
		}
		if _, dup := seen[email]; dup {
			batch.counters.duplicateEmail++
			batch.counters.skipped++
			continue
		}
		seen[email] = struct{}{}

		res := resolveRow(eventID, email, rec, cols, roster[email])
		batch.rows = append(batch.rows, res.record)
		batch.counters.merge(res.issues)
	}
	return batch
}

// resolveRow applies the program and major source priorities to one row.
func resolveRow(eventID, email string, rec csvRecord, cols attendanceColumns, member *model.Member) rowResult {
	var res rowResult

	majorRaw := rec.get(cols.major)
	classYearRaw := rec.get(cols.classYear)
	checkInRaw := rec.get(cols.checkIn)

	// check-in
	checkIn, err := normalize.ParseCheckIn(checkInRaw)
	var checkInError any
	if err != nil {
		checkInError = err.Error()
		res.issues = append(res.issues, issueBadCheckIn)
	}

	// program: class year (even when it resolves to Unknown) > major tokens > roster
	program, programSource := normalize.ProgramUnknown, model.SourceUnknown
	switch inferred, ok := normalize.InferProgramFromMajor(majorRaw); {
	case classYearRaw != "":
		program, programSource = normalize.ProgramFromClassYear(classYearRaw), model.SourceClassYear
		if program == normalize.ProgramUnknown {
			res.issues = append(res.issues, issueMissingProgram)
		}
	case ok:
		program, programSource = inferred, model.SourceInferredFromMajor
	case member != nil && strings.TrimSpace(deref(member.DegreeProgram)) != "":
		program, programSource = normalize.Program(strings.TrimSpace(*member.DegreeProgram)), model.SourceMembers
	default:
		res.issues = append(res.issues, issueMissingProgram)
	}

	// major: CSV > roster
	var (
		majorRawOut   *string
		majorLabel    = normalize.UnknownMajor
		majorCategory = string(normalize.CategoryOtherUnknown)
		majorSource   = model.SourceUnknown
	)
	switch {
	case majorRaw != "":
		label, category := normalize.ClassifyMajor(majorRaw)
		majorRawOut, majorLabel, majorCategory, majorSource = &majorRaw, label, string(category), model.SourceCSV
	case member != nil:
		majorRawOut, majorSource = member.MajorRaw, model.SourceMembers
		if v := deref(member.MajorNormalized); v != "" {
			majorLabel = v
		}
		if v := deref(member.MajorCategory); v != "" {
			majorCategory = v
		}
	default:
		res.issues = append(res.issues, issueMissingMajor)
	}

	var memberEmail *string
	if member != nil {
		memberEmail = &member.Email
	}

	rawRow := make(map[string]any, len(rec))
	extra := make(map[string]any)
	for k, v := range rec {
		rawRow[k] = v
		if !cols.recognized(k) {
			extra[k] = v
		}
	}

	var checkInRawOut any
	if checkInRaw != "" {
		checkInRawOut = checkInRaw
	}

	res.record = model.EventAttendance{
		EventID:                 eventID,
		AttendeeEmail:           email,
		MemberEmail:             memberEmail,
		AttendeeMajorRaw:        majorRawOut,
		AttendeeMajorNormalized: majorLabel,
		AttendeeMajorCategory:   majorCategory,
		AttendeeProgram:         string(program),
		CheckInAt:               checkIn,
		Metadata: model.JSONMap{
			"raw_row":              rawRow,
			"extra_columns":        extra,
			"used_major_source":    majorSource,
			"used_program_source":  programSource,
			"check_in_raw":         checkInRawOut,
			"check_in_parse_error": checkInError,
		},
	}
	return res
}

// memberEmails returns the sorted distinct roster emails among the rows.
func (b *attendanceBatch) memberEmails() []string {
	set := make(map[string]struct{})
	for _, r := range b.rows {
		if r.MemberEmail != nil && *r.MemberEmail != "" {
			set[*r.MemberEmail] = struct{}{}
		}
	}
	emails := make([]string, 0, len(set))
	for e := range set {
		emails = append(emails, e)
	}
	sort.Strings(emails)
	return emails
}

func (b *attendanceBatch) response(eventID string) *dto.ImportAttendanceResponse {
	c := b.counters
	warnings := make([]string, 0, 4)
	if c.missingMajor > 0 {
		warnings = append(warnings, fmt.Sprintf("%d rows had no major and no roster match; recorded as Unknown/Other.", c.missingMajor))
	}
	if c.missingProgram > 0 {
		warnings = append(warnings, fmt.Sprintf("%d rows had no usable program info; recorded as Unknown.", c.missingProgram))
	}
	if c.badCheckIn > 0 {
		warnings = append(warnings, fmt.Sprintf("%d rows had a check-in timestamp not in MM/DD/YYYY HH:MM:SS; check_in_at left empty.", c.badCheckIn))
	}
	if c.duplicateEmail > 0 {
		warnings = append(warnings, fmt.Sprintf("%d duplicate attendee emails in the CSV were skipped.", c.duplicateEmail))
	}

	return &dto.ImportAttendanceResponse{
		Status:  "ok",
		EventID: eventID,
		ValidationSummary: dto.ValidationSummary{
			RowsValid:      c.received - c.skipped,
			RowsWithErrors: c.skipped,
		},
		SuccessSummary: dto.SuccessSummary{
			RowsImported: len(b.rows),
			RowsSkipped:  c.skipped,
		},
		Warnings: warnings,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
