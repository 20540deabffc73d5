package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/academy-api/internal/models"
)

// AcademyRepository exposes academy lookups needed outside the withdrawal flow.
type AcademyRepository interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

type academyRepository struct {
	db *gorm.DB
}

// NewAcademyRepository constructs the academy repository.
func NewAcademyRepository(db *gorm.DB) AcademyRepository {
	return &academyRepository{db: db}
}

func (r *academyRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Academy{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
