package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"bookingform/internal/domain"
)

var (
	ErrDuplicateSubmission = errors.New("submission already recorded")
	ErrSubmissionNotFound  = errors.New("submission not found")
)

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, s *domain.Submission) error {
	if s.Status == "" {
		s.Status = domain.SubmissionPending
	}
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSubmission
		}
		return err
	}
	return nil
}

func (r *SubmissionRepository) MarkDelivered(ctx context.Context, id int64, at time.Time) error {
	return r.update(ctx, id, map[string]any{
		"status":       domain.SubmissionDelivered,
		"error":        "",
		"delivered_at": at,
	})
}

func (r *SubmissionRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	return r.update(ctx, id, map[string]any{
		"status": domain.SubmissionFailed,
		"error":  reason,
	})
}

func (r *SubmissionRepository) update(ctx context.Context, id int64, cols map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Submission{}).
		Where("id = ?", id).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

func (r *SubmissionRepository) ListByForm(ctx context.Context, formID string) ([]domain.Submission, error) {
	var out []domain.Submission
	err := r.db.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("attempt ASC").
		Find(&out).Error
	return out, err
}

func (r *SubmissionRepository) ListRecent(ctx context.Context, limit int) ([]domain.Submission, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []domain.Submission
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// PruneDelivered removes delivered rows last updated before cutoff.
func (r *SubmissionRepository) PruneDelivered(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", domain.SubmissionDelivered, cutoff).
		Delete(&domain.Submission{})
	return res.RowsAffected, res.Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
