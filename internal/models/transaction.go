package models

import "time"

// PaymentStatus enumerates live payment states.
type PaymentStatus string

const (
	PaymentStatusPending         PaymentStatus = "PENDING"
	PaymentStatusCompleted       PaymentStatus = "COMPLETED"
	PaymentStatusFailed          PaymentStatus = "FAILED"
	PaymentStatusCancelled       PaymentStatus = "CANCELLED"
	PaymentStatusRefunded        PaymentStatus = "REFUNDED"
	PaymentStatusPartialRefunded PaymentStatus = "PARTIAL_REFUNDED"
)

// RefundStatus enumerates live refund request states.
type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "PENDING"
	RefundStatusApproved  RefundStatus = "APPROVED"
	RefundStatusRejected  RefundStatus = "REJECTED"
	RefundStatusCompleted RefundStatus = "COMPLETED"
	RefundStatusCancelled RefundStatus = "CANCELLED"
)

// EnrollmentStatus enumerates live session enrollment states.
type EnrollmentStatus string

const (
	EnrollmentStatusPending         EnrollmentStatus = "PENDING"
	EnrollmentStatusConfirmed       EnrollmentStatus = "CONFIRMED"
	EnrollmentStatusAttended        EnrollmentStatus = "ATTENDED"
	EnrollmentStatusRejected        EnrollmentStatus = "REJECTED"
	EnrollmentStatusCancelled       EnrollmentStatus = "CANCELLED"
	EnrollmentStatusRefundRequested EnrollmentStatus = "REFUND_REQUESTED"
)

// AttendanceStatus enumerates live attendance marks.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "PRESENT"
	AttendanceStatusAbsent  AttendanceStatus = "ABSENT"
	AttendanceStatusLate    AttendanceStatus = "LATE"
	AttendanceStatusExcused AttendanceStatus = "EXCUSED"
)

// Payment is a tuition payment made by a student for a class.
type Payment struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	StudentID     uint          `gorm:"index;not null" json:"student_id"`
	ClassID       uint          `gorm:"index;not null" json:"class_id"`
	Class         Class         `gorm:"foreignKey:ClassID" json:"-"`
	Amount        int64         `gorm:"not null" json:"amount"`
	Status        PaymentStatus `gorm:"size:32;not null" json:"status"`
	Method        string        `gorm:"size:32" json:"method"`
	ReceiptNumber *string       `gorm:"size:64" json:"receipt_number"`
	PaidAt        *time.Time    `json:"paid_at"`
	CreatedAt     time.Time     `json:"created_at"`
}

// RefundRequest asks for money back on a payment.
type RefundRequest struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	StudentID       uint         `gorm:"index;not null" json:"student_id"`
	PaymentID       uint         `gorm:"index;not null" json:"payment_id"`
	Payment         Payment      `gorm:"foreignKey:PaymentID" json:"-"`
	RefundAmount    int64        `gorm:"not null" json:"refund_amount"`
	Reason          string       `gorm:"type:text" json:"reason"`
	Status          RefundStatus `gorm:"size:32;not null" json:"status"`
	ProcessedBy     *uint        `json:"processed_by"`
	ProcessorRole   *Role        `gorm:"size:16" json:"processor_role"`
	ProcessedAt     *time.Time   `json:"processed_at"`
	RejectionReason *string      `gorm:"type:text" json:"rejection_reason"`
	CreatedAt       time.Time    `json:"created_at"`
}

// SessionEnrollment is a student's seat in a class session.
type SessionEnrollment struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	StudentID   uint             `gorm:"index;not null" json:"student_id"`
	SessionID   uint             `gorm:"index;not null" json:"session_id"`
	Session     ClassSession     `gorm:"foreignKey:SessionID" json:"-"`
	Status      EnrollmentStatus `gorm:"size:32;not null" json:"status"`
	EnrolledAt  time.Time        `gorm:"not null" json:"enrolled_at"`
	CancelledAt *time.Time       `json:"cancelled_at"`
}

// Attendance is a check-in mark for a student in a class session.
type Attendance struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	StudentID uint             `gorm:"index;not null" json:"student_id"`
	SessionID uint             `gorm:"index;not null" json:"session_id"`
	Session   ClassSession     `gorm:"foreignKey:SessionID" json:"-"`
	Status    AttendanceStatus `gorm:"size:16;not null" json:"status"`
	Note      *string          `gorm:"type:text" json:"note"`
	CheckedAt time.Time        `gorm:"not null" json:"checked_at"`
}
