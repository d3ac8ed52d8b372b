package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dashboard-engagement/server/internal/dto"
	"dashboard-engagement/server/internal/repository"
)

// ── Export errors ──

var (
	ErrExportGenerateFail = errors.New("failed to build the Excel file")
)

// ExportService renders analytics and attendance as .xlsx workbooks. The
// workbook comes back as a buffer with a suggested filename; the handler
// writes the download headers.
type ExportService interface {
	ExportAnalytics(ctx context.Context) (*bytes.Buffer, string, error)
	ExportEventAttendance(ctx context.Context, eventID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo      *repository.Repository
	analytics AnalyticsService
	logger    *zap.Logger
}

// NewExportService creates an ExportService.
func NewExportService(repo *repository.Repository, analytics AnalyticsService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, analytics: analytics, logger: logger}
}

// sheet writes rows top-down on one worksheet.
type sheet struct {
	f    *excelize.File
	name string
	row  int
}

func newSheet(f *excelize.File, name string) *sheet {
	f.NewSheet(name)
	return &sheet{f: f, name: name, row: 1}
}

// line writes values into consecutive columns of the next row.
func (s *sheet) line(values ...any) {
	for i, v := range values {
		s.f.SetCellValue(s.name, cell(colName(i), s.row), v)
	}
	s.row++
}

// header writes a bold row.
func (s *sheet) header(style int, values ...any) {
	s.line(values...)
	last := colName(len(values) - 1)
	s.f.SetCellStyle(s.name, cell("A", s.row-1), cell(last, s.row-1), style)
}

func (s *sheet) gap() { s.row++ }

func headerStyle(f *excelize.File) int {
	id, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	return id
}

// finish drops the default sheet and serializes the workbook.
func (s *exportService) finish(f *excelize.File) (*bytes.Buffer, error) {
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(0)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write workbook failed", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return buf, nil
}

// ════════════════════════════════════════════════════════════
// ExportAnalytics: one sheet per dashboard section
// ════════════════════════════════════════════════════════════

func (s *exportService) ExportAnalytics(ctx context.Context) (*bytes.Buffer, string, error) {
	payload, err := s.analytics.Dashboard(ctx)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()
	style := headerStyle(f)

	// Overview
	ov := newSheet(f, "Overview")
	f.SetColWidth(ov.name, "A", "C", 30)
	ov.header(style, "KPI", "Value")
	ov.line("Total members", payload.Overview.KPIs.TotalMembers)
	ov.line("Active members", payload.Overview.KPIs.ActiveMembers)
	ov.line("Active members %", payload.Overview.KPIs.ActiveMembersPct)
	ov.line("Registered growth, last 30 days %", payload.Overview.KPIs.RegisteredGrowthLast30dPct)
	ov.gap()
	ov.header(style, "Period", "Registered (cumulative)", "Active (cumulative)")
	for _, p := range payload.Overview.MembersOverTime {
		ov.line(p.Period, p.RegisteredMembersCumulative, p.ActiveMembersCumulative)
	}

	// Retention
	rt := newSheet(f, "Retention")
	f.SetColWidth(rt.name, "A", "A", 28)
	header := []any{"Major category"}
	for _, b := range RetentionBuckets {
		header = append(header, b+" events")
	}
	rt.header(style, header...)
	rt.line(retentionLine("All members", payload.Retention.AttendanceCountDistributionOverall)...)
	for _, c := range payload.Retention.AttendanceCountDistributionByMajorCategory {
		rt.line(retentionLine(c.MajorCategory, c.Distribution)...)
	}

	// Mission
	ms := newSheet(f, "Mission")
	f.SetColWidth(ms.name, "A", "B", 36)
	ms.header(style, "Major category", "Members")
	for _, m := range payload.Mission.MajorCategoryDistribution {
		ms.line(m.MajorCategory, m.Members)
	}
	ms.gap()
	ms.header(style, "Class year", "Members")
	for _, y := range payload.Mission.ClassYearDistribution {
		ms.line(y.ClassYear, y.Members)
	}
	ms.gap()
	ms.header(style, "Event", "Starts at", "Total attendees", "Major category", "Count", "Share")
	for _, e := range payload.Mission.EventMajorCategoryPercent {
		for _, seg := range e.Segments {
			ms.line(e.EventTitle, deref(e.StartsAt), e.TotalAttendees, seg.MajorCategory, seg.Count, seg.Pct)
		}
	}

	buf, err := s.finish(f)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("engagement_analytics_%s.xlsx", time.Now().Format("2006-01-02")), nil
}

func retentionLine(label string, buckets []dto.RetentionBucket) []any {
	out := []any{label}
	for _, b := range buckets {
		out = append(out, b.People)
	}
	return out
}

// ════════════════════════════════════════════════════════════
// ExportEventAttendance: every attendance row of one event
// ════════════════════════════════════════════════════════════

func (s *exportService) ExportEventAttendance(ctx context.Context, eventID string) (*bytes.Buffer, string, error) {
	if _, err := uuid.Parse(eventID); err != nil {
		return nil, "", ErrEventNotFound
	}

	event, err := s.repo.Event.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrEventNotFound
		}
		s.logger.Error("get event failed", zap.String("event_id", eventID), zap.Error(err))
		return nil, "", fmt.Errorf("%w: %v", ErrEventQueryFailed, err)
	}
	rows, err := s.repo.Attendance.ListByEvent(ctx, eventID)
	if err != nil {
		s.logger.Error("list attendance failed", zap.String("event_id", eventID), zap.Error(err))
		return nil, "", fmt.Errorf("%w: %v", ErrEventQueryFailed, err)
	}

	f := excelize.NewFile()
	defer f.Close()
	style := headerStyle(f)

	sh := newSheet(f, "Attendance")
	f.SetColWidth(sh.name, "A", "A", 34)
	f.SetColWidth(sh.name, "B", "G", 22)

	sh.line(fmt.Sprintf("%s (%s)", event.Title, event.StartsAt))
	f.MergeCell(sh.name, "A1", "G1")
	f.SetCellStyle(sh.name, "A1", "A1", style)

	sh.header(style, "Email", "Member", "Major (raw)", "Major", "Major category", "Program", "Checked in")
	for _, r := range rows {
		member := "no"
		if r.MemberEmail != nil {
			member = "yes"
		}
		sh.line(r.AttendeeEmail, member, deref(r.AttendeeMajorRaw), r.AttendeeMajorNormalized,
			r.AttendeeMajorCategory, r.AttendeeProgram, deref(r.CheckInAt))
	}

	buf, err := s.finish(f)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("attendance_%s.xlsx", fileSlug(event.Title)), nil
}

// ── Helpers ──

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func fileSlug(title string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "_"), "_")
	if slug == "" {
		return "event"
	}
	return slug
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
