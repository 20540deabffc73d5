package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/academy-api/internal/privacy"
	"github.com/noah-isme/academy-api/internal/repository"
	"github.com/noah-isme/academy-api/internal/retention"
)

// studentWithdrawal has no eligibility rule; every payment, refund, enrollment
// and attendance row is retained.
type studentWithdrawal struct{}

func (studentWithdrawal) collect(ctx context.Context, live repository.LiveRepository, userID uint, _ time.Time) (withdrawalPlan, error) {
	student, err := live.GetStudentByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return withdrawalPlan{}, errProfileNotFound()
		}
		return withdrawalPlan{}, err
	}

	payments, err := live.ListStudentPayments(ctx, student.ID)
	if err != nil {
		return withdrawalPlan{}, fmt.Errorf("load payments: %w", err)
	}
	refunds, err := live.ListStudentRefunds(ctx, student.ID)
	if err != nil {
		return withdrawalPlan{}, fmt.Errorf("load refunds: %w", err)
	}
	enrollments, err := live.ListStudentEnrollments(ctx, student.ID)
	if err != nil {
		return withdrawalPlan{}, fmt.Errorf("load enrollments: %w", err)
	}
	attendances, err := live.ListStudentAttendances(ctx, student.ID)
	if err != nil {
		return withdrawalPlan{}, fmt.Errorf("load attendances: %w", err)
	}

	return withdrawalPlan{
		validate: func(context.Context, repository.LiveRepository) error {
			return nil
		},
		migrate: func(ctx context.Context, store repository.RetentionRepository, anonymousUserID uint, withdrawalDate time.Time) (migrationCounts, error) {
			counts := migrationCounts{}

			migrated, err := retention.MigratePayments(ctx, store, payments, anonymousUserID, withdrawalDate)
			if err != nil {
				return nil, fmt.Errorf("migrate payments: %w", err)
			}
			counts["payments"] = migrated

			migrated, err = retention.MigrateRefunds(ctx, store, refunds, anonymousUserID, withdrawalDate)
			if err != nil {
				return nil, fmt.Errorf("migrate refunds: %w", err)
			}
			counts["refunds"] = migrated

			migrated, err = retention.MigrateSessionEnrollments(ctx, store, enrollments, anonymousUserID, withdrawalDate)
			if err != nil {
				return nil, fmt.Errorf("migrate enrollments: %w", err)
			}
			counts["session_enrollments"] = migrated

			migrated, err = retention.MigrateAttendances(ctx, store, attendances, anonymousUserID, withdrawalDate)
			if err != nil {
				return nil, fmt.Errorf("migrate attendances: %w", err)
			}
			counts["attendances"] = migrated

			return counts, nil
		},
		mask: func(ctx context.Context, live repository.LiveRepository, masker *privacy.Masker) error {
			mask, err := masker.Student(student.ID)
			if err != nil {
				return err
			}
			if err := live.MaskStudent(ctx, student.ID, mask); err != nil {
				return fmt.Errorf("mask student: %w", err)
			}
			return nil
		},
	}, nil
}
