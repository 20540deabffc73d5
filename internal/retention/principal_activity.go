package retention

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/privacy"
	"github.com/noah-isme/academy-api/internal/repository"
)

// PrincipalHistory is the management history collected for a principal's academy.
type PrincipalHistory struct {
	AcademyID           uint
	RefundDecisions     []models.RefundRequest
	RejectedEnrollments []models.SessionEnrollment
	Teachers            []models.Teacher
}

// Len reports how many activity rows the history will produce.
func (h PrincipalHistory) Len() int {
	return len(h.RefundDecisions) + len(h.RejectedEnrollments) + len(h.Teachers)
}

// ToAnonymizedPrincipalActivities flattens the history into activity rows.
// Processors are reduced to their role and free text is masked.
func ToAnonymizedPrincipalActivities(history PrincipalHistory, anonymousUserID uint, withdrawalDate time.Time) []models.AnonymizedPrincipalActivity {
	until := privacy.RetentionUntil(withdrawalDate, privacy.PrincipalActivityRetentionYears)
	rows := make([]models.AnonymizedPrincipalActivity, 0, history.Len())

	for _, refund := range history.RefundDecisions {
		occurredAt := refund.CreatedAt
		if refund.ProcessedAt != nil {
			occurredAt = *refund.ProcessedAt
		}
		details := datatypes.JSONMap{
			"class_id":      refund.Payment.ClassID,
			"refund_amount": refund.RefundAmount,
		}
		if refund.ProcessorRole != nil {
			details["processor_role"] = string(*refund.ProcessorRole)
		}
		if refund.RejectionReason != nil {
			details["rejection_reason"] = privacy.AnonymizeText(*refund.RejectionReason)
		}
		rows = append(rows, models.AnonymizedPrincipalActivity{
			ActivityType:       models.PrincipalActivityRefundDecision,
			SourceID:           refund.ID,
			AnonymousUserID:    anonymousUserID,
			AcademyID:          history.AcademyID,
			Status:             string(MapRefundStatus(refund.Status)),
			OccurredAt:         occurredAt,
			Details:            details,
			DataRetentionUntil: until,
		})
	}

	for _, enrollment := range history.RejectedEnrollments {
		rows = append(rows, models.AnonymizedPrincipalActivity{
			ActivityType:    models.PrincipalActivityEnrollmentRejection,
			SourceID:        enrollment.ID,
			AnonymousUserID: anonymousUserID,
			AcademyID:       history.AcademyID,
			Status:          string(MapEnrollmentStatus(enrollment.Status)),
			OccurredAt:      enrollment.EnrolledAt,
			Details: datatypes.JSONMap{
				"class_id":     enrollment.Session.ClassID,
				"session_date": enrollment.Session.Date.Format(time.DateOnly),
			},
			DataRetentionUntil: until,
		})
	}

	for _, teacher := range history.Teachers {
		rows = append(rows, models.AnonymizedPrincipalActivity{
			ActivityType:    models.PrincipalActivityTeacherAffiliation,
			SourceID:        teacher.ID,
			AnonymousUserID: anonymousUserID,
			AcademyID:       history.AcademyID,
			Status:          "AFFILIATED",
			OccurredAt:      teacher.CreatedAt,
			Details: datatypes.JSONMap{
				"class_count": len(teacher.Classes),
			},
			DataRetentionUntil: until,
		})
	}

	return rows
}

// MigratePrincipalActivities appends the academy management history.
func MigratePrincipalActivities(ctx context.Context, store repository.RetentionRepository, history PrincipalHistory, anonymousUserID uint, withdrawalDate time.Time) (int64, error) {
	if history.Len() == 0 {
		return 0, nil
	}
	return store.InsertPrincipalActivities(ctx, ToAnonymizedPrincipalActivities(history, anonymousUserID, withdrawalDate))
}
