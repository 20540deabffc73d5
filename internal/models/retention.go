package models

import (
	"time"

	"gorm.io/datatypes"
)

// Retention tables live beside the operational ones under the retention_ prefix.
// Rows are written once at withdrawal time and never updated, except for the
// access audit counters on AnonymizedUser.

// RetentionPaymentStatus is the payment status vocabulary of the retention schema.
type RetentionPaymentStatus string

const (
	RetentionPaymentPending   RetentionPaymentStatus = "PENDING"
	RetentionPaymentCompleted RetentionPaymentStatus = "COMPLETED"
	RetentionPaymentFailed    RetentionPaymentStatus = "FAILED"
	RetentionPaymentCancelled RetentionPaymentStatus = "CANCELLED"
	RetentionPaymentRefunded  RetentionPaymentStatus = "REFUNDED"
)

// RetentionRefundStatus is the refund status vocabulary of the retention schema.
type RetentionRefundStatus string

const (
	RetentionRefundPending   RetentionRefundStatus = "PENDING"
	RetentionRefundApproved  RetentionRefundStatus = "APPROVED"
	RetentionRefundRejected  RetentionRefundStatus = "REJECTED"
	RetentionRefundCompleted RetentionRefundStatus = "COMPLETED"
	RetentionRefundCancelled RetentionRefundStatus = "CANCELLED"
)

// RetentionEnrollmentStatus is the enrollment status vocabulary of the retention schema.
type RetentionEnrollmentStatus string

const (
	RetentionEnrollmentPending   RetentionEnrollmentStatus = "PENDING"
	RetentionEnrollmentApproved  RetentionEnrollmentStatus = "APPROVED"
	RetentionEnrollmentRejected  RetentionEnrollmentStatus = "REJECTED"
	RetentionEnrollmentCancelled RetentionEnrollmentStatus = "CANCELLED"
	RetentionEnrollmentCompleted RetentionEnrollmentStatus = "COMPLETED"
)

// RetentionAttendanceStatus is the attendance vocabulary of the retention schema.
type RetentionAttendanceStatus string

const (
	RetentionAttendancePresent RetentionAttendanceStatus = "PRESENT"
	RetentionAttendanceAbsent  RetentionAttendanceStatus = "ABSENT"
	RetentionAttendanceLate    RetentionAttendanceStatus = "LATE"
	RetentionAttendanceExcused RetentionAttendanceStatus = "EXCUSED"
)

// PrincipalActivityType classifies rows of AnonymizedPrincipalActivity.
type PrincipalActivityType string

const (
	PrincipalActivityRefundDecision      PrincipalActivityType = "REFUND_DECISION"
	PrincipalActivityEnrollmentRejection PrincipalActivityType = "ENROLLMENT_REJECTION"
	PrincipalActivityTeacherAffiliation  PrincipalActivityType = "TEACHER_AFFILIATION"
)

// ReasonCategoryOther is the only withdrawal reason category recorded today.
const ReasonCategoryOther = "OTHER"

// AnonymizedUser is the fan-in target of every retention row produced by one withdrawal.
type AnonymizedUser struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	AnonymousID        string     `gorm:"size:64;uniqueIndex;not null" json:"anonymous_id"`
	Role               Role       `gorm:"size:16;not null" json:"role"`
	WithdrawalDate     time.Time  `gorm:"not null" json:"withdrawal_date"`
	DataRetentionUntil time.Time  `gorm:"index;not null" json:"data_retention_until"`
	AccessCount        int        `gorm:"not null;default:0" json:"access_count"`
	LastAccessedAt     *time.Time `json:"last_accessed_at"`
	CreatedAt          time.Time  `json:"created_at"`
}

func (AnonymizedUser) TableName() string { return "retention_anonymized_users" }

type AnonymizedPayment struct {
	ID                 uint                   `gorm:"primaryKey" json:"id"`
	SourceID           uint                   `gorm:"uniqueIndex;not null" json:"-"`
	AnonymousUserID    uint                   `gorm:"index;not null" json:"anonymous_user_id"`
	AcademyID          uint                   `gorm:"index" json:"academy_id"`
	ClassID            uint                   `json:"class_id"`
	Amount             int64                  `gorm:"not null" json:"amount"`
	Status             RetentionPaymentStatus `gorm:"size:32;not null" json:"status"`
	Method             string                 `gorm:"size:32" json:"method"`
	ReceiptNumber      *string                `gorm:"size:64" json:"receipt_number"`
	PaidAt             *time.Time             `json:"paid_at"`
	OriginalCreatedAt  time.Time              `json:"original_created_at"`
	DataRetentionUntil time.Time              `gorm:"index;not null" json:"data_retention_until"`
	CreatedAt          time.Time              `json:"created_at"`
}

func (AnonymizedPayment) TableName() string { return "retention_anonymized_payments" }

type AnonymizedRefund struct {
	ID                 uint                  `gorm:"primaryKey" json:"id"`
	SourceID           uint                  `gorm:"uniqueIndex;not null" json:"-"`
	AnonymousUserID    uint                  `gorm:"index;not null" json:"anonymous_user_id"`
	AcademyID          uint                  `gorm:"index" json:"academy_id"`
	ClassID            uint                  `json:"class_id"`
	RefundAmount       int64                 `gorm:"not null" json:"refund_amount"`
	Reason             string                `gorm:"type:text" json:"reason"`
	Status             RetentionRefundStatus `gorm:"size:32;not null" json:"status"`
	ProcessorRole      *Role                 `gorm:"size:16" json:"processor_role"`
	ProcessedAt        *time.Time            `json:"processed_at"`
	RejectionReason    *string               `gorm:"type:text" json:"rejection_reason"`
	RequestedAt        time.Time             `json:"requested_at"`
	DataRetentionUntil time.Time             `gorm:"index;not null" json:"data_retention_until"`
	CreatedAt          time.Time             `json:"created_at"`
}

func (AnonymizedRefund) TableName() string { return "retention_anonymized_refunds" }

type AnonymizedSessionEnrollment struct {
	ID                 uint                      `gorm:"primaryKey" json:"id"`
	SourceID           uint                      `gorm:"uniqueIndex;not null" json:"-"`
	AnonymousUserID    uint                      `gorm:"index;not null" json:"anonymous_user_id"`
	AcademyID          uint                      `gorm:"index" json:"academy_id"`
	ClassID            uint                      `json:"class_id"`
	SessionDate        time.Time                 `json:"session_date"`
	Status             RetentionEnrollmentStatus `gorm:"size:32;not null" json:"status"`
	EnrolledAt         time.Time                 `json:"enrolled_at"`
	ApprovedAt         *time.Time                `json:"approved_at"`
	CompletedAt        *time.Time                `json:"completed_at"`
	CancelledAt        *time.Time                `json:"cancelled_at"`
	DataRetentionUntil time.Time                 `gorm:"index;not null" json:"data_retention_until"`
	CreatedAt          time.Time                 `json:"created_at"`
}

func (AnonymizedSessionEnrollment) TableName() string {
	return "retention_anonymized_session_enrollments"
}

type AnonymizedAttendance struct {
	ID                 uint                      `gorm:"primaryKey" json:"id"`
	SourceID           uint                      `gorm:"uniqueIndex;not null" json:"-"`
	AnonymousUserID    uint                      `gorm:"index;not null" json:"anonymous_user_id"`
	AcademyID          uint                      `gorm:"index" json:"academy_id"`
	ClassID            uint                      `json:"class_id"`
	SessionDate        time.Time                 `json:"session_date"`
	Status             RetentionAttendanceStatus `gorm:"size:16;not null" json:"status"`
	Note               *string                   `gorm:"type:text" json:"note"`
	CheckedAt          time.Time                 `json:"checked_at"`
	DataRetentionUntil time.Time                 `gorm:"index;not null" json:"data_retention_until"`
	CreatedAt          time.Time                 `json:"created_at"`
}

func (AnonymizedAttendance) TableName() string { return "retention_anonymized_attendances" }

// AnonymizedTeacherActivity summarises one class taught by a withdrawn teacher.
type AnonymizedTeacherActivity struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	SourceID           uint      `gorm:"uniqueIndex;not null" json:"-"`
	AnonymousUserID    uint      `gorm:"index;not null" json:"anonymous_user_id"`
	AcademyID          uint      `gorm:"index" json:"academy_id"`
	ClassID            uint      `json:"class_id"`
	ClassStartDate     time.Time `json:"class_start_date"`
	ClassEndDate       time.Time `json:"class_end_date"`
	SessionCount       int       `json:"session_count"`
	StudentCount       int       `json:"student_count"`
	DataRetentionUntil time.Time `gorm:"index;not null" json:"data_retention_until"`
	CreatedAt          time.Time `json:"created_at"`
}

func (AnonymizedTeacherActivity) TableName() string { return "retention_anonymized_teacher_activities" }

// AnonymizedPrincipalActivity records one management decision taken inside a withdrawn principal's academy.
type AnonymizedPrincipalActivity struct {
	ID                 uint                  `gorm:"primaryKey" json:"id"`
	ActivityType       PrincipalActivityType `gorm:"size:32;uniqueIndex:idx_principal_activity_source;not null" json:"activity_type"`
	SourceID           uint                  `gorm:"uniqueIndex:idx_principal_activity_source;not null" json:"-"`
	AnonymousUserID    uint                  `gorm:"index;not null" json:"anonymous_user_id"`
	AcademyID          uint                  `gorm:"uniqueIndex:idx_principal_activity_source;index" json:"academy_id"`
	Status             string                `gorm:"size:32" json:"status"`
	OccurredAt         time.Time             `json:"occurred_at"`
	Details            datatypes.JSONMap     `gorm:"type:json" json:"details"`
	DataRetentionUntil time.Time             `gorm:"index;not null" json:"data_retention_until"`
	CreatedAt          time.Time             `json:"created_at"`
}

func (AnonymizedPrincipalActivity) TableName() string {
	return "retention_anonymized_principal_activities"
}

// WithdrawalHistory is the append-only audit log of account closures.
type WithdrawalHistory struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         string    `gorm:"size:255;index;not null" json:"user_id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Role           Role      `gorm:"size:16;not null" json:"role"`
	Reason         string    `gorm:"type:text" json:"reason"`
	ReasonCategory string    `gorm:"size:32;not null" json:"reason_category"`
	WithdrawnAt    time.Time `gorm:"not null" json:"withdrawn_at"`
}

func (WithdrawalHistory) TableName() string { return "retention_withdrawal_histories" }

// LiveModels lists the operational tables in migration order.
func LiveModels() []interface{} {
	return []interface{}{
		&User{}, &Student{}, &Teacher{}, &Principal{}, &Academy{}, &AcademyStudent{},
		&Class{}, &ClassSession{}, &Payment{}, &RefundRequest{}, &SessionEnrollment{}, &Attendance{},
	}
}

// RetentionModels lists the retention tables in migration order.
func RetentionModels() []interface{} {
	return []interface{}{
		&AnonymizedUser{}, &AnonymizedPayment{}, &AnonymizedRefund{}, &AnonymizedSessionEnrollment{},
		&AnonymizedAttendance{}, &AnonymizedTeacherActivity{}, &AnonymizedPrincipalActivity{},
		&WithdrawalHistory{},
	}
}
