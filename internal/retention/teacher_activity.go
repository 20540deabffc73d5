package retention

import (
	"context"
	"time"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/privacy"
	"github.com/noah-isme/academy-api/internal/repository"
)

// ToAnonymizedTeacherActivity keeps the shape of a taught class without any
// student or teacher identity.
func ToAnonymizedTeacherActivity(stats repository.ClassStats, anonymousUserID uint, withdrawalDate time.Time) models.AnonymizedTeacherActivity {
	return models.AnonymizedTeacherActivity{
		SourceID:           stats.Class.ID,
		AnonymousUserID:    anonymousUserID,
		AcademyID:          stats.Class.AcademyID,
		ClassID:            stats.Class.ID,
		ClassStartDate:     stats.Class.StartDate,
		ClassEndDate:       stats.Class.EndDate,
		SessionCount:       stats.SessionCount,
		StudentCount:       stats.StudentCount,
		DataRetentionUntil: privacy.RetentionUntil(withdrawalDate, privacy.TeacherActivityRetentionYears),
	}
}

// MigrateTeacherActivities appends one activity row per class taught.
func MigrateTeacherActivities(ctx context.Context, store repository.RetentionRepository, classes []repository.ClassStats, anonymousUserID uint, withdrawalDate time.Time) (int64, error) {
	return migrate(ctx, classes, func(stats repository.ClassStats) models.AnonymizedTeacherActivity {
		return ToAnonymizedTeacherActivity(stats, anonymousUserID, withdrawalDate)
	}, store.InsertTeacherActivities)
}
