package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dashboard-engagement/server/internal/model"
)

const upsertBatchSize = 500

// AttendanceRepository is the data access for event_attendance.
type AttendanceRepository interface {
	// Upsert inserts rows, overwriting any existing row with the same (event_id, attendee_email).
	Upsert(ctx context.Context, rows []model.EventAttendance) error
	// RecomputeActiveMembers refreshes the active flag of the given roster emails.
	RecomputeActiveMembers(ctx context.Context, emails []string) error
	ListByEvent(ctx context.Context, eventID string) ([]model.EventAttendance, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo creates an AttendanceRepository.
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Upsert(ctx context.Context, rows []model.EventAttendance) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "event_id"}, {Name: "attendee_email"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"member_email",
				"attendee_major_raw",
				"attendee_major_normalized",
				"attendee_major_category",
				"attendee_program",
				"check_in_at",
				"metadata",
			}),
		}).
		CreateInBatches(rows, upsertBatchSize).Error
}

func (r *attendanceRepo) RecomputeActiveMembers(ctx context.Context, emails []string) error {
	if len(emails) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Exec("SELECT recompute_active_members(?::text[])", model.StringArray(emails)).Error
}

func (r *attendanceRepo) ListByEvent(ctx context.Context, eventID string) ([]model.EventAttendance, error) {
	var rows []model.EventAttendance
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("attendee_email ASC").
		Find(&rows).Error
	return rows, err
}
