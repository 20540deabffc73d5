package service

import "errors"

// WithdrawalErrorKind classifies why a withdrawal was refused.
type WithdrawalErrorKind string

const (
	WithdrawalNotFound           WithdrawalErrorKind = "NOT_FOUND"
	WithdrawalPreconditionFailed WithdrawalErrorKind = "PRECONDITION_FAILED"
)

var (
	ErrWithdrawalUserNotFound    = errors.New("withdrawal user not found")
	ErrWithdrawalRoleMismatch    = errors.New("withdrawal role mismatch")
	ErrWithdrawalProfileNotFound = errors.New("withdrawal profile not found")
	ErrOngoingClasses            = errors.New("ongoing classes block withdrawal")
	ErrPendingRefunds            = errors.New("pending refunds block withdrawal")
	ErrPendingEnrollments        = errors.New("pending enrollments block withdrawal")
	ErrWithdrawalInProgress      = errors.New("withdrawal already in progress")
	ErrUnsupportedWithdrawalRole = errors.New("unsupported withdrawal role")
)

// WithdrawalError carries a user facing message next to the matchable cause.
type WithdrawalError struct {
	Kind    WithdrawalErrorKind
	Message string
	Err     error
}

func (e *WithdrawalError) Error() string {
	return e.Message
}

func (e *WithdrawalError) Unwrap() error {
	return e.Err
}

func notFound(err error, message string) error {
	return &WithdrawalError{Kind: WithdrawalNotFound, Message: message, Err: err}
}

func preconditionFailed(err error, message string) error {
	return &WithdrawalError{Kind: WithdrawalPreconditionFailed, Message: message, Err: err}
}

func errUserNotFound() error {
	return notFound(ErrWithdrawalUserNotFound, "사용자를 찾을 수 없습니다.")
}

func errRoleMismatch() error {
	return notFound(ErrWithdrawalRoleMismatch, "요청한 역할의 회원이 아닙니다.")
}

func errProfileNotFound() error {
	return notFound(ErrWithdrawalProfileNotFound, "회원 프로필을 찾을 수 없습니다.")
}

func errOngoingClasses() error {
	return preconditionFailed(ErrOngoingClasses, "진행 중인 수업이 있어 탈퇴할 수 없습니다.")
}

func errPendingRefunds() error {
	return preconditionFailed(ErrPendingRefunds, "처리되지 않은 환불 요청이 있어 탈퇴할 수 없습니다.")
}

func errPendingEnrollments() error {
	return preconditionFailed(ErrPendingEnrollments, "승인 대기 중인 수강 신청이 있어 탈퇴할 수 없습니다.")
}

func errWithdrawalInProgress() error {
	return preconditionFailed(ErrWithdrawalInProgress, "이미 탈퇴 처리가 진행 중입니다.")
}
