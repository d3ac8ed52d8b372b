package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"dashboard-engagement/server/internal/normalize"
)

// csvRecord is one data row keyed by header. Duplicate header names keep the
// right-most value, and cells missing from short rows read as "".
type csvRecord map[string]string

func (r csvRecord) get(header string) string {
	if header == "" {
		return ""
	}
	return strings.TrimSpace(r[header])
}

func (r csvRecord) blank() bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// attendanceTable is a fully read upload.
type attendanceTable struct {
	headers []string
	records []csvRecord
}

// readAttendanceCSV reads the whole upload into memory. Invalid UTF-8 is
// replaced rather than rejected and a leading byte-order mark is dropped.
func readAttendanceCSV(r io.Reader) (*attendanceTable, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportUnreadable, err)
	}
	text := strings.ToValidUTF8(string(raw), "\uFFFD")
	text = strings.TrimPrefix(text, "\uFEFF")

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &attendanceTable{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportUnreadable, err)
	}

	table := &attendanceTable{headers: headers}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImportUnreadable, err)
		}

		rec := make(csvRecord, len(headers))
		for i, h := range headers {
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		table.records = append(table.records, rec)
	}
	return table, nil
}

// attendanceColumns are the headers resolved for each logical field.
// Only email is required; an empty name means the column is absent.
type attendanceColumns struct {
	email     string
	major     string
	classYear string
	checkIn   string
}

func resolveAttendanceColumns(headers []string) (attendanceColumns, error) {
	var cols attendanceColumns
	var ok bool
	if cols.email, ok = normalize.FindHeader(headers, normalize.EmailHeaderAliases); !ok {
		return cols, ErrImportNoEmailColumn
	}
	cols.major, _ = normalize.FindHeader(headers, normalize.MajorHeaderAliases)
	cols.classYear, _ = normalize.FindHeader(headers, normalize.ClassYearHeaderAliases)
	cols.checkIn, _ = normalize.FindHeader(headers, normalize.CheckInHeaderAliases)
	return cols, nil
}

func (c attendanceColumns) recognized(header string) bool {
	return header == c.email || (header != "" && (header == c.major || header == c.classYear || header == c.checkIn))
}

// columnOrNil is used for provenance metadata, where an absent column is null.
func columnOrNil(header string) any {
	if header == "" {
		return nil
	}
	return header
}
