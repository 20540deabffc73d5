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

// teacherWithdrawal refuses while any class of the teacher ends today or later.
type teacherWithdrawal struct{}

func (teacherWithdrawal) collect(ctx context.Context, live repository.LiveRepository, userID uint, today time.Time) (withdrawalPlan, error) {
	teacher, err := live.GetTeacherByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return withdrawalPlan{}, errProfileNotFound()
		}
		return withdrawalPlan{}, err
	}

	classes, err := live.ListTeacherClassStats(ctx, teacher.ID)
	if err != nil {
		return withdrawalPlan{}, fmt.Errorf("load classes: %w", err)
	}

	return withdrawalPlan{
		photoURL: teacher.PhotoURL,
		validate: func(ctx context.Context, live repository.LiveRepository) error {
			ongoing, err := live.CountOngoingClassesByTeacher(ctx, teacher.ID, today)
			if err != nil {
				return fmt.Errorf("count ongoing classes: %w", err)
			}
			if ongoing > 0 {
				return errOngoingClasses()
			}
			return nil
		},
		migrate: func(ctx context.Context, store repository.RetentionRepository, anonymousUserID uint, withdrawalDate time.Time) (migrationCounts, error) {
			migrated, err := retention.MigrateTeacherActivities(ctx, store, classes, anonymousUserID, withdrawalDate)
			if err != nil {
				return nil, fmt.Errorf("migrate teacher activities: %w", err)
			}
			return migrationCounts{"teacher_activities": migrated}, nil
		},
		mask: func(ctx context.Context, live repository.LiveRepository, masker *privacy.Masker) error {
			mask, err := masker.Teacher(teacher.ID)
			if err != nil {
				return err
			}
			if err := live.MaskTeacher(ctx, teacher.ID, mask); err != nil {
				return fmt.Errorf("mask teacher: %w", err)
			}
			return nil
		},
	}, nil
}
