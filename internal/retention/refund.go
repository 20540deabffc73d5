package retention

import (
	"context"
	"time"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/privacy"
	"github.com/noah-isme/academy-api/internal/repository"
)

// ToAnonymizedRefund masks free text and keeps only the processor's role.
func ToAnonymizedRefund(refund models.RefundRequest, anonymousUserID uint, withdrawalDate time.Time) models.AnonymizedRefund {
	return models.AnonymizedRefund{
		SourceID:           refund.ID,
		AnonymousUserID:    anonymousUserID,
		AcademyID:          refund.Payment.Class.AcademyID,
		ClassID:            refund.Payment.ClassID,
		RefundAmount:       refund.RefundAmount,
		Reason:             privacy.AnonymizeText(refund.Reason),
		Status:             MapRefundStatus(refund.Status),
		ProcessorRole:      refund.ProcessorRole,
		ProcessedAt:        refund.ProcessedAt,
		RejectionReason:    privacy.AnonymizeTextPtr(refund.RejectionReason),
		RequestedAt:        refund.CreatedAt,
		DataRetentionUntil: privacy.RetentionUntil(withdrawalDate, privacy.FinancialRetentionYears),
	}
}

// MigrateRefunds appends anonymized refund requests.
func MigrateRefunds(ctx context.Context, store repository.RetentionRepository, refunds []models.RefundRequest, anonymousUserID uint, withdrawalDate time.Time) (int64, error) {
	return migrate(ctx, refunds, func(refund models.RefundRequest) models.AnonymizedRefund {
		return ToAnonymizedRefund(refund, anonymousUserID, withdrawalDate)
	}, store.InsertRefunds)
}
