package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/academy-api/internal/models"
)

// RetentionRecordCounts tallies the rows owned by one anonymized user.
type RetentionRecordCounts struct {
	Payments            int64
	Refunds             int64
	SessionEnrollments  int64
	Attendances         int64
	TeacherActivities   int64
	PrincipalActivities int64
}

// WithdrawalHistoryFilter narrows withdrawal history listings.
type WithdrawalHistoryFilter struct {
	Role     string
	Page     int
	PageSize int
}

// RetentionAuditRepository serves compliance lookups over the retention schema.
type RetentionAuditRepository interface {
	GetAnonymizedUser(ctx context.Context, anonymousID string) (models.AnonymizedUser, error)
	CountRecords(ctx context.Context, anonymousUserID uint) (RetentionRecordCounts, error)
	RecordAccess(ctx context.Context, id uint, at time.Time) error
	ListHistory(ctx context.Context, filter WithdrawalHistoryFilter) ([]models.WithdrawalHistory, int64, error)
}

type retentionAuditRepository struct {
	db *gorm.DB
}

// NewRetentionAuditRepository constructs the retention audit repository.
func NewRetentionAuditRepository(db *gorm.DB) RetentionAuditRepository {
	return &retentionAuditRepository{db: db}
}

func (r *retentionAuditRepository) GetAnonymizedUser(ctx context.Context, anonymousID string) (models.AnonymizedUser, error) {
	var user models.AnonymizedUser
	if err := r.db.WithContext(ctx).Where("anonymous_id = ?", anonymousID).First(&user).Error; err != nil {
		return models.AnonymizedUser{}, err
	}
	return user, nil
}

func (r *retentionAuditRepository) CountRecords(ctx context.Context, anonymousUserID uint) (RetentionRecordCounts, error) {
	db := r.db.WithContext(ctx)

	var counts RetentionRecordCounts
	targets := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.AnonymizedPayment{}, &counts.Payments},
		{&models.AnonymizedRefund{}, &counts.Refunds},
		{&models.AnonymizedSessionEnrollment{}, &counts.SessionEnrollments},
		{&models.AnonymizedAttendance{}, &counts.Attendances},
		{&models.AnonymizedTeacherActivity{}, &counts.TeacherActivities},
		{&models.AnonymizedPrincipalActivity{}, &counts.PrincipalActivities},
	}
	for _, target := range targets {
		if err := db.Model(target.model).Where("anonymous_user_id = ?", anonymousUserID).Count(target.dest).Error; err != nil {
			return RetentionRecordCounts{}, err
		}
	}

	return counts, nil
}

func (r *retentionAuditRepository) RecordAccess(ctx context.Context, id uint, at time.Time) error {
	update := r.db.WithContext(ctx).Model(&models.AnonymizedUser{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"access_count":     gorm.Expr("access_count + ?", 1),
			"last_accessed_at": at,
		})
	if update.Error != nil {
		return update.Error
	}
	if update.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *retentionAuditRepository) ListHistory(ctx context.Context, filter WithdrawalHistoryFilter) ([]models.WithdrawalHistory, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.WithdrawalHistory{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var entries []models.WithdrawalHistory
	if err := query.Order("withdrawn_at DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
