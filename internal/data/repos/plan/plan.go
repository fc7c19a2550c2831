// Package plan is the InductionPlan repository. Uniqueness of
// FINALIZED plans per calendar date is an application-level concern
// owned by the Plan Service (spec.md §4.6 explicitly allows
// forceRegenerate to append a second FINALIZED plan for the same date
// without deleting the first); this package only translates a genuine
// database-level unique-key violation, such as a primary key collision,
// into apperr.CodeConflict.
package plan

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/kochimetro/induction-engine/internal/domain"
	"github.com/kochimetro/induction-engine/internal/platform/apperr"
	"github.com/kochimetro/induction-engine/internal/platform/logger"
)

const uniqueViolation = "23505"

// Repository is the InductionPlan persistence boundary.
type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, p *domain.InductionPlan) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.InductionPlan, error)
	FindLatestFinalized(ctx context.Context, tx *gorm.DB) (*domain.InductionPlan, error)
	FindFinalizedByDate(ctx context.Context, tx *gorm.DB, planDate time.Time) (*domain.InductionPlan, error)
	ListFinalized(ctx context.Context, tx *gorm.DB, limit int, before *time.Time) ([]domain.InductionPlan, error)
}

type repository struct {
	db  *gorm.DB
	log *logger.Logger
}

// New builds an InductionPlan repository.
func New(db *gorm.DB, baseLog *logger.Logger) Repository {
	return &repository{db: db, log: baseLog.With("repo", "plan.Repository")}
}

func (r *repository) resolve(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Insert persists p. Any unique-key violation the database reports
// (e.g. an id collision) is translated into apperr.CodeConflict rather
// than leaking a driver-specific error to callers.
func (r *repository) Insert(ctx context.Context, tx *gorm.DB, p *domain.InductionPlan) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := r.resolve(tx).WithContext(ctx).Create(p).Error
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.New(apperr.CodeConflict, "plan.Insert", "induction plan violates a uniqueness constraint", err)
	}
	return err
}

// FindByID loads one plan by its stable identifier.
func (r *repository) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.InductionPlan, error) {
	var p domain.InductionPlan
	err := r.resolve(tx).WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.NotFound("plan.FindByID", "induction plan not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindLatestFinalized returns the FINALIZED plan ordered by planDate
// DESC, then generatedAt DESC (spec.md §4.6 "Latest"), so a plan
// generated late for an earlier date can never shadow a plan for a
// later date.
func (r *repository) FindLatestFinalized(ctx context.Context, tx *gorm.DB) (*domain.InductionPlan, error) {
	var p domain.InductionPlan
	err := r.resolve(tx).WithContext(ctx).
		Where("status = ?", domain.PlanFinalized).
		Order("plan_date DESC, generated_at DESC").
		First(&p).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.NotFound("plan.FindLatestFinalized", "no finalized induction plan exists yet")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindFinalizedByDate returns the FINALIZED plan for one calendar date,
// if any. Used by Generate's idempotency check.
func (r *repository) FindFinalizedByDate(ctx context.Context, tx *gorm.DB, planDate time.Time) (*domain.InductionPlan, error) {
	var p domain.InductionPlan
	err := r.resolve(tx).WithContext(ctx).
		Where("status = ? AND plan_date = ?", domain.PlanFinalized, planDate.Format("2006-01-02")).
		First(&p).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.NotFound("plan.FindFinalizedByDate", "no finalized induction plan for this date")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListFinalized returns up to limit FINALIZED plans ordered newest
// first, optionally excluding anything generated at or after before, for
// cursor-based history pagination (spec.md §4.6 "History").
func (r *repository) ListFinalized(ctx context.Context, tx *gorm.DB, limit int, before *time.Time) ([]domain.InductionPlan, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := r.resolve(tx).WithContext(ctx).
		Where("status = ?", domain.PlanFinalized).
		Order("generated_at DESC").
		Limit(limit)
	if before != nil {
		q = q.Where("generated_at < ?", *before)
	}
	var plans []domain.InductionPlan
	if err := q.Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}
