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

// principalWithdrawal closes the academy as well: students and teachers are
// detached and the academy row is masked but kept.
type principalWithdrawal struct{}

func (principalWithdrawal) collect(ctx context.Context, live repository.LiveRepository, userID uint, today time.Time) (withdrawalPlan, error) {
	principal, err := live.GetPrincipalByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return withdrawalPlan{}, errProfileNotFound()
		}
		return withdrawalPlan{}, err
	}

	var history retention.PrincipalHistory
	if principal.Academy != nil {
		academyID := principal.Academy.ID
		history.AcademyID = academyID

		if history.RefundDecisions, err = live.ListAcademyRefundDecisions(ctx, academyID); err != nil {
			return withdrawalPlan{}, fmt.Errorf("load refund decisions: %w", err)
		}
		if history.RejectedEnrollments, err = live.ListAcademyRejectedEnrollments(ctx, academyID); err != nil {
			return withdrawalPlan{}, fmt.Errorf("load rejected enrollments: %w", err)
		}
		if history.Teachers, err = live.ListAcademyTeachers(ctx, academyID); err != nil {
			return withdrawalPlan{}, fmt.Errorf("load academy teachers: %w", err)
		}
	}
	hasAcademy := principal.Academy != nil

	return withdrawalPlan{
		photoURL: principal.PhotoURL,
		validate: func(ctx context.Context, live repository.LiveRepository) error {
			if !hasAcademy {
				return nil
			}
			return validateAcademyClosable(ctx, live, history.AcademyID, today)
		},
		migrate: func(ctx context.Context, store repository.RetentionRepository, anonymousUserID uint, withdrawalDate time.Time) (migrationCounts, error) {
			migrated, err := retention.MigratePrincipalActivities(ctx, store, history, anonymousUserID, withdrawalDate)
			if err != nil {
				return nil, fmt.Errorf("migrate principal activities: %w", err)
			}
			return migrationCounts{"principal_activities": migrated}, nil
		},
		mask: func(ctx context.Context, live repository.LiveRepository, masker *privacy.Masker) error {
			if hasAcademy {
				if _, err := live.DetachAcademyStudents(ctx, history.AcademyID); err != nil {
					return fmt.Errorf("detach academy students: %w", err)
				}
				if _, err := live.DetachAcademyTeachers(ctx, history.AcademyID); err != nil {
					return fmt.Errorf("detach academy teachers: %w", err)
				}
				if err := live.MaskAcademy(ctx, history.AcademyID, masker.Academy()); err != nil {
					return fmt.Errorf("mask academy: %w", err)
				}
			}

			mask, err := masker.Principal(principal.ID)
			if err != nil {
				return err
			}
			if err := live.MaskPrincipal(ctx, principal.ID, mask); err != nil {
				return fmt.Errorf("mask principal: %w", err)
			}
			return nil
		},
	}, nil
}

func validateAcademyClosable(ctx context.Context, live repository.LiveRepository, academyID uint, today time.Time) error {
	ongoing, err := live.CountOngoingClassesByAcademy(ctx, academyID, today)
	if err != nil {
		return fmt.Errorf("count ongoing classes: %w", err)
	}
	if ongoing > 0 {
		return errOngoingClasses()
	}

	refunds, err := live.CountPendingRefundsByAcademy(ctx, academyID)
	if err != nil {
		return fmt.Errorf("count pending refunds: %w", err)
	}
	if refunds > 0 {
		return errPendingRefunds()
	}

	enrollments, err := live.CountPendingEnrollmentsByAcademy(ctx, academyID)
	if err != nil {
		return fmt.Errorf("count pending enrollments: %w", err)
	}
	if enrollments > 0 {
		return errPendingEnrollments()
	}
	return nil
}
