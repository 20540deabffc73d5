// Package retention converts live history rows into their anonymized
// retention-schema counterparts and appends them in bulk.
package retention

import "github.com/noah-isme/academy-api/internal/models"

// Unknown or legacy statuses fall back to a conservative value instead of
// failing the migration.

var paymentStatuses = map[models.PaymentStatus]models.RetentionPaymentStatus{
	models.PaymentStatusPending:         models.RetentionPaymentPending,
	models.PaymentStatusCompleted:       models.RetentionPaymentCompleted,
	models.PaymentStatusFailed:          models.RetentionPaymentFailed,
	models.PaymentStatusCancelled:       models.RetentionPaymentCancelled,
	models.PaymentStatusRefunded:        models.RetentionPaymentRefunded,
	models.PaymentStatusPartialRefunded: models.RetentionPaymentRefunded,
}

var refundStatuses = map[models.RefundStatus]models.RetentionRefundStatus{
	models.RefundStatusPending:   models.RetentionRefundPending,
	models.RefundStatusApproved:  models.RetentionRefundApproved,
	models.RefundStatusRejected:  models.RetentionRefundRejected,
	models.RefundStatusCompleted: models.RetentionRefundCompleted,
	models.RefundStatusCancelled: models.RetentionRefundCancelled,
}

var enrollmentStatuses = map[models.EnrollmentStatus]models.RetentionEnrollmentStatus{
	models.EnrollmentStatusPending:         models.RetentionEnrollmentPending,
	models.EnrollmentStatusConfirmed:       models.RetentionEnrollmentApproved,
	models.EnrollmentStatusAttended:        models.RetentionEnrollmentCompleted,
	models.EnrollmentStatusRejected:        models.RetentionEnrollmentRejected,
	models.EnrollmentStatusCancelled:       models.RetentionEnrollmentCancelled,
	models.EnrollmentStatusRefundRequested: models.RetentionEnrollmentCancelled,
}

var attendanceStatuses = map[models.AttendanceStatus]models.RetentionAttendanceStatus{
	models.AttendanceStatusPresent: models.RetentionAttendancePresent,
	models.AttendanceStatusAbsent:  models.RetentionAttendanceAbsent,
	models.AttendanceStatusLate:    models.RetentionAttendanceLate,
	models.AttendanceStatusExcused: models.RetentionAttendanceExcused,
}

// MapPaymentStatus maps a live payment status, defaulting to PENDING.
func MapPaymentStatus(status models.PaymentStatus) models.RetentionPaymentStatus {
	if mapped, ok := paymentStatuses[status]; ok {
		return mapped
	}
	return models.RetentionPaymentPending
}

// MapRefundStatus maps a live refund status, defaulting to PENDING.
func MapRefundStatus(status models.RefundStatus) models.RetentionRefundStatus {
	if mapped, ok := refundStatuses[status]; ok {
		return mapped
	}
	return models.RetentionRefundPending
}

// MapEnrollmentStatus maps a live enrollment status, defaulting to PENDING.
func MapEnrollmentStatus(status models.EnrollmentStatus) models.RetentionEnrollmentStatus {
	if mapped, ok := enrollmentStatuses[status]; ok {
		return mapped
	}
	return models.RetentionEnrollmentPending
}

// MapAttendanceStatus maps a live attendance mark, defaulting to ABSENT.
func MapAttendanceStatus(status models.AttendanceStatus) models.RetentionAttendanceStatus {
	if mapped, ok := attendanceStatuses[status]; ok {
		return mapped
	}
	return models.RetentionAttendanceAbsent
}
