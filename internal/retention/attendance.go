package retention

import (
	"context"
	"time"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/privacy"
	"github.com/noah-isme/academy-api/internal/repository"
)

func ToAnonymizedAttendance(attendance models.Attendance, anonymousUserID uint, withdrawalDate time.Time) models.AnonymizedAttendance {
	return models.AnonymizedAttendance{
		SourceID:           attendance.ID,
		AnonymousUserID:    anonymousUserID,
		AcademyID:          attendance.Session.Class.AcademyID,
		ClassID:            attendance.Session.ClassID,
		SessionDate:        attendance.Session.Date,
		Status:             MapAttendanceStatus(attendance.Status),
		Note:               privacy.AnonymizeTextPtr(attendance.Note),
		CheckedAt:          attendance.CheckedAt,
		DataRetentionUntil: privacy.RetentionUntil(withdrawalDate, privacy.AttendanceRetentionYears),
	}
}

// MigrateAttendances appends anonymized attendance marks.
func MigrateAttendances(ctx context.Context, store repository.RetentionRepository, attendances []models.Attendance, anonymousUserID uint, withdrawalDate time.Time) (int64, error) {
	return migrate(ctx, attendances, func(attendance models.Attendance) models.AnonymizedAttendance {
		return ToAnonymizedAttendance(attendance, anonymousUserID, withdrawalDate)
	}, store.InsertAttendances)
}
