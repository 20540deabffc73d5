package retention

import (
	"context"
	"time"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/privacy"
	"github.com/noah-isme/academy-api/internal/repository"
)

// ToAnonymizedSessionEnrollment re-maps the status and infers approval and
// completion times from it, since the live schema does not store them.
// Approved and completed enrollments are stamped with their enrolled-at time.
func ToAnonymizedSessionEnrollment(enrollment models.SessionEnrollment, anonymousUserID uint, withdrawalDate time.Time) models.AnonymizedSessionEnrollment {
	status := MapEnrollmentStatus(enrollment.Status)
	row := models.AnonymizedSessionEnrollment{
		SourceID:           enrollment.ID,
		AnonymousUserID:    anonymousUserID,
		AcademyID:          enrollment.Session.Class.AcademyID,
		ClassID:            enrollment.Session.ClassID,
		SessionDate:        enrollment.Session.Date,
		Status:             status,
		EnrolledAt:         enrollment.EnrolledAt,
		DataRetentionUntil: privacy.RetentionUntil(withdrawalDate, privacy.EnrollmentRetentionYears),
	}

	enrolledAt := enrollment.EnrolledAt
	switch status {
	case models.RetentionEnrollmentApproved:
		row.ApprovedAt = &enrolledAt
	case models.RetentionEnrollmentCompleted:
		row.ApprovedAt = &enrolledAt
		row.CompletedAt = &enrolledAt
	case models.RetentionEnrollmentCancelled:
		if enrollment.CancelledAt != nil {
			cancelledAt := *enrollment.CancelledAt
			row.CancelledAt = &cancelledAt
		} else {
			row.CancelledAt = &enrolledAt
		}
	}

	return row
}

// MigrateSessionEnrollments appends anonymized session enrollments.
func MigrateSessionEnrollments(ctx context.Context, store repository.RetentionRepository, enrollments []models.SessionEnrollment, anonymousUserID uint, withdrawalDate time.Time) (int64, error) {
	return migrate(ctx, enrollments, func(enrollment models.SessionEnrollment) models.AnonymizedSessionEnrollment {
		return ToAnonymizedSessionEnrollment(enrollment, anonymousUserID, withdrawalDate)
	}, store.InsertSessionEnrollments)
}
