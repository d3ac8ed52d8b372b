package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository groups every data-access interface behind one handle.
type Repository struct {
	db         *gorm.DB
	Event      EventRepository
	Member     MemberRepository
	Attendance AttendanceRepository
	Analytics  AnalyticsRepository
}

// NewRepository builds the aggregate on top of db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		Event:      NewEventRepo(db),
		Member:     NewMemberRepo(db),
		Attendance: NewAttendanceRepo(db),
		Analytics:  NewAnalyticsRepo(db),
	}
}

// BeginTx opens a transaction. A Repository assembled by hand (unit tests) has no
// connection and gets a nil tx, which WithTx and callers treat as "no transaction".
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx returns a copy whose repositories all run inside tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{
		db:         tx,
		Event:      NewEventRepo(tx),
		Member:     NewMemberRepo(tx),
		Attendance: NewAttendanceRepo(tx),
		Analytics:  NewAnalyticsRepo(tx),
	}
}
