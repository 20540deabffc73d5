package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/academy-api/internal/models"
)

const retentionInsertBatchSize = 200

// ErrAnonymousIDConflict indicates a generated anonymous identifier already exists.
var ErrAnonymousIDConflict = errors.New("anonymous id already exists")

// RetentionRepository appends anonymized rows to the retention schema. Bulk
// inserts skip rows whose natural key is already present.
type RetentionRepository interface {
	CreateAnonymizedUser(ctx context.Context, user *models.AnonymizedUser) error
	InsertPayments(ctx context.Context, rows []models.AnonymizedPayment) (int64, error)
	InsertRefunds(ctx context.Context, rows []models.AnonymizedRefund) (int64, error)
	InsertSessionEnrollments(ctx context.Context, rows []models.AnonymizedSessionEnrollment) (int64, error)
	InsertAttendances(ctx context.Context, rows []models.AnonymizedAttendance) (int64, error)
	InsertTeacherActivities(ctx context.Context, rows []models.AnonymizedTeacherActivity) (int64, error)
	InsertPrincipalActivities(ctx context.Context, rows []models.AnonymizedPrincipalActivity) (int64, error)
	CreateWithdrawalHistory(ctx context.Context, entry *models.WithdrawalHistory) error
}

type retentionRepository struct {
	db *gorm.DB
}

// NewRetentionRepository constructs the retention schema repository.
func NewRetentionRepository(db *gorm.DB) RetentionRepository {
	return &retentionRepository{db: db}
}

func (r *retentionRepository) CreateAnonymizedUser(ctx context.Context, user *models.AnonymizedUser) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrAnonymousIDConflict, user.AnonymousID)
		}
		return err
	}
	return nil
}

func (r *retentionRepository) InsertPayments(ctx context.Context, rows []models.AnonymizedPayment) (int64, error) {
	return insertSkippingDuplicates(ctx, r.db, rows, "source_id")
}

func (r *retentionRepository) InsertRefunds(ctx context.Context, rows []models.AnonymizedRefund) (int64, error) {
	return insertSkippingDuplicates(ctx, r.db, rows, "source_id")
}

func (r *retentionRepository) InsertSessionEnrollments(ctx context.Context, rows []models.AnonymizedSessionEnrollment) (int64, error) {
	return insertSkippingDuplicates(ctx, r.db, rows, "source_id")
}

func (r *retentionRepository) InsertAttendances(ctx context.Context, rows []models.AnonymizedAttendance) (int64, error) {
	return insertSkippingDuplicates(ctx, r.db, rows, "source_id")
}

func (r *retentionRepository) InsertTeacherActivities(ctx context.Context, rows []models.AnonymizedTeacherActivity) (int64, error) {
	return insertSkippingDuplicates(ctx, r.db, rows, "source_id")
}

func (r *retentionRepository) InsertPrincipalActivities(ctx context.Context, rows []models.AnonymizedPrincipalActivity) (int64, error) {
	return insertSkippingDuplicates(ctx, r.db, rows, "activity_type", "source_id", "academy_id")
}

func (r *retentionRepository) CreateWithdrawalHistory(ctx context.Context, entry *models.WithdrawalHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func insertSkippingDuplicates[T any](ctx context.Context, db *gorm.DB, rows []T, conflictColumns ...string) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	columns := make([]clause.Column, 0, len(conflictColumns))
	for _, name := range conflictColumns {
		columns = append(columns, clause.Column{Name: name})
	}

	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: columns, DoNothing: true}).
		CreateInBatches(rows, retentionInsertBatchSize)
	return result.RowsAffected, result.Error
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint") || strings.Contains(message, "duplicate key")
}
