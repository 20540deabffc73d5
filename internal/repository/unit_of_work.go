package repository

import (
	"context"

	"gorm.io/gorm"
)

// Stores exposes both schemas bound to the same transaction.
type Stores struct {
	Live      LiveRepository
	Retention RetentionRepository
}

// UnitOfWork runs a closure atomically across the live and retention schemas.
// The closure's error is returned unchanged after rollback.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(stores Stores) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork constructs a gorm backed unit of work.
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Within(ctx context.Context, fn func(stores Stores) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Stores{
			Live:      NewLiveRepository(tx),
			Retention: NewRetentionRepository(tx),
		})
	})
}
