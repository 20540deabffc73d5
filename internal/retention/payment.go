package retention

import (
	"context"
	"time"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/privacy"
	"github.com/noah-isme/academy-api/internal/repository"
)

// ToAnonymizedPayment drops the receipt number and keeps the amounts.
func ToAnonymizedPayment(payment models.Payment, anonymousUserID uint, withdrawalDate time.Time) models.AnonymizedPayment {
	return models.AnonymizedPayment{
		SourceID:           payment.ID,
		AnonymousUserID:    anonymousUserID,
		AcademyID:          payment.Class.AcademyID,
		ClassID:            payment.ClassID,
		Amount:             payment.Amount,
		Status:             MapPaymentStatus(payment.Status),
		Method:             payment.Method,
		ReceiptNumber:      nil,
		PaidAt:             payment.PaidAt,
		OriginalCreatedAt:  payment.CreatedAt,
		DataRetentionUntil: privacy.RetentionUntil(withdrawalDate, privacy.FinancialRetentionYears),
	}
}

// MigratePayments appends anonymized payments and returns how many rows were inserted.
func MigratePayments(ctx context.Context, store repository.RetentionRepository, payments []models.Payment, anonymousUserID uint, withdrawalDate time.Time) (int64, error) {
	return migrate(ctx, payments, func(payment models.Payment) models.AnonymizedPayment {
		return ToAnonymizedPayment(payment, anonymousUserID, withdrawalDate)
	}, store.InsertPayments)
}
