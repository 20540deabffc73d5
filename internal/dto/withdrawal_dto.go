package dto

import (
	"time"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/repository"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginationMeta derives the page count from the total.
func NewPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return PaginationMeta{Page: page, PageSize: pageSize, TotalItems: total, TotalPages: pages}
}

// WithdrawAccountRequest is the body of DELETE /api/v2/account.
type WithdrawAccountRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

// AcademyCodeResponse carries a freshly issued academy join code.
type AcademyCodeResponse struct {
	Code string `json:"code"`
}

// RetentionRecordCountsResponse lists how many retained rows exist per entity.
type RetentionRecordCountsResponse struct {
	Payments            int64 `json:"payments"`
	Refunds             int64 `json:"refunds"`
	SessionEnrollments  int64 `json:"session_enrollments"`
	Attendances         int64 `json:"attendances"`
	TeacherActivities   int64 `json:"teacher_activities"`
	PrincipalActivities int64 `json:"principal_activities"`
}

// RetentionInspectionResponse is the admin view of one anonymized user.
type RetentionInspectionResponse struct {
	AnonymousID        string                        `json:"anonymous_id"`
	Role               models.Role                   `json:"role"`
	WithdrawalDate     time.Time                     `json:"withdrawal_date"`
	DataRetentionUntil time.Time                     `json:"data_retention_until"`
	AccessCount        int                           `json:"access_count"`
	LastAccessedAt     *time.Time                    `json:"last_accessed_at"`
	Records            RetentionRecordCountsResponse `json:"records"`
}

// WithdrawalHistoryResponse serializes a withdrawal audit row.
type WithdrawalHistoryResponse struct {
	ID             uint        `json:"id"`
	UserID         string      `json:"user_id"`
	Name           string      `json:"name"`
	Role           models.Role `json:"role"`
	Reason         string      `json:"reason"`
	ReasonCategory string      `json:"reason_category"`
	WithdrawnAt    time.Time   `json:"withdrawn_at"`
}

// NewRetentionInspectionResponse maps an anonymized user and its counts.
func NewRetentionInspectionResponse(user models.AnonymizedUser, counts repository.RetentionRecordCounts) RetentionInspectionResponse {
	return RetentionInspectionResponse{
		AnonymousID:        user.AnonymousID,
		Role:               user.Role,
		WithdrawalDate:     user.WithdrawalDate,
		DataRetentionUntil: user.DataRetentionUntil,
		AccessCount:        user.AccessCount,
		LastAccessedAt:     user.LastAccessedAt,
		Records: RetentionRecordCountsResponse{
			Payments:            counts.Payments,
			Refunds:             counts.Refunds,
			SessionEnrollments:  counts.SessionEnrollments,
			Attendances:         counts.Attendances,
			TeacherActivities:   counts.TeacherActivities,
			PrincipalActivities: counts.PrincipalActivities,
		},
	}
}

// NewWithdrawalHistoryResponses maps withdrawal audit rows.
func NewWithdrawalHistoryResponses(entries []models.WithdrawalHistory) []WithdrawalHistoryResponse {
	items := make([]WithdrawalHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, WithdrawalHistoryResponse{
			ID:             entry.ID,
			UserID:         entry.UserID,
			Name:           entry.Name,
			Role:           entry.Role,
			Reason:         entry.Reason,
			ReasonCategory: entry.ReasonCategory,
			WithdrawnAt:    entry.WithdrawnAt,
		})
	}
	return items
}
