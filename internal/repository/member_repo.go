package repository

import (
	"context"

	"gorm.io/gorm"

	"dashboard-engagement/server/internal/model"
)

// MemberRepository reads the member roster.
type MemberRepository interface {
	// ListRoster returns every member with the fields the import falls back on.
	ListRoster(ctx context.Context) ([]model.Member, error)
}

type memberRepo struct {
	db *gorm.DB
}

// NewMemberRepo creates a MemberRepository.
func NewMemberRepo(db *gorm.DB) MemberRepository {
	return &memberRepo{db: db}
}

func (r *memberRepo) ListRoster(ctx context.Context) ([]model.Member, error) {
	var members []model.Member
	err := r.db.WithContext(ctx).
		Select("email", "major_raw", "major_normalized", "major_category", "degree_program").
		Where("email IS NOT NULL AND email <> ''").
		Find(&members).Error
	return members, err
}
