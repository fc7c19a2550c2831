// Package train is the Train repository: plain CRUD over the train
// table with no business logic, matching spec.md §4.8's separation of
// persistence from the pure engine packages.
package train

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kochimetro/induction-engine/internal/domain"
	"github.com/kochimetro/induction-engine/internal/platform/apperr"
	"github.com/kochimetro/induction-engine/internal/platform/logger"
)

// Repository is the Train persistence boundary.
type Repository interface {
	ListAll(ctx context.Context, tx *gorm.DB) ([]domain.Train, error)
	FindByCode(ctx context.Context, tx *gorm.DB, code string) (*domain.Train, error)
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Train, error)
	Upsert(ctx context.Context, tx *gorm.DB, t *domain.Train) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type repository struct {
	db  *gorm.DB
	log *logger.Logger
}

// New builds a Train repository.
func New(db *gorm.DB, baseLog *logger.Logger) Repository {
	return &repository{db: db, log: baseLog.With("repo", "train.Repository")}
}

func (r *repository) resolve(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ListAll returns every non-deleted train, ordered by code for stable
// pagination-free listing.
func (r *repository) ListAll(ctx context.Context, tx *gorm.DB) ([]domain.Train, error) {
	var trains []domain.Train
	if err := r.resolve(tx).WithContext(ctx).Order("code ASC").Find(&trains).Error; err != nil {
		return nil, err
	}
	return trains, nil
}

// FindByCode looks up a train by its trainset code.
func (r *repository) FindByCode(ctx context.Context, tx *gorm.DB, code string) (*domain.Train, error) {
	var t domain.Train
	err := r.resolve(tx).WithContext(ctx).Where("code = ?", code).First(&t).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.NotFound("train.FindByCode", "train not found")
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindByID looks up a train by its stable identifier.
func (r *repository) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Train, error) {
	var t domain.Train
	err := r.resolve(tx).WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.NotFound("train.FindByID", "train not found")
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Upsert inserts t or, if its code already exists, updates every column
// in place. Trains are identified by code, not the generated id, so a
// re-import of the same fleet roster never creates duplicates.
func (r *repository) Upsert(ctx context.Context, tx *gorm.DB, t *domain.Train) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return r.resolve(tx).WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		UpdateAll: true,
	}).Create(t).Error
}

// Delete soft-deletes a train. Existing InductionPlan rows keep their
// weak TrainRef and remain readable (spec.md §3 "Ownership").
func (r *repository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.resolve(tx).WithContext(ctx).Where("id = ?", id).Delete(&domain.Train{}).Error
}
