package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/repository"
)

var (
	// ErrRetentionRecordNotFound indicates no anonymized user matches the lookup.
	ErrRetentionRecordNotFound = errors.New("retention record not found")
	// ErrInvalidRoleFilter is returned when the role filter is not a known role.
	ErrInvalidRoleFilter = errors.New("invalid role filter")
)

const (
	defaultHistoryPageSize = 20
	maxHistoryPageSize     = 100
)

// RetentionInspection is the compliance view of one anonymized user.
type RetentionInspection struct {
	User   models.AnonymizedUser
	Counts repository.RetentionRecordCounts
}

// WithdrawalHistoryPage is one page of withdrawal audit rows.
type WithdrawalHistoryPage struct {
	Items    []models.WithdrawalHistory
	Total    int64
	Page     int
	PageSize int
}

// RetentionAuditService serves audited reads over the retention schema.
type RetentionAuditService interface {
	Inspect(ctx context.Context, anonymousID string) (RetentionInspection, error)
	ListHistory(ctx context.Context, role string, page, pageSize int) (WithdrawalHistoryPage, error)
}

type retentionAuditService struct {
	repo   repository.RetentionAuditRepository
	logger zerolog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewRetentionAuditService constructs the retention audit service.
func NewRetentionAuditService(repo repository.RetentionAuditRepository, logger zerolog.Logger) RetentionAuditService {
	return &retentionAuditService{
		repo:   repo,
		logger: logger.With().Str("component", "retention_audit_service").Logger(),
		tracer: otel.Tracer("github.com/noah-isme/academy-api/internal/service/retention_audit"),
		now:    time.Now,
	}
}

// Inspect counts as an access: access_count and last_accessed_at are bumped.
func (s *retentionAuditService) Inspect(ctx context.Context, anonymousID string) (RetentionInspection, error) {
	ctx, span := s.tracer.Start(ctx, "retention.inspect")
	span.SetAttributes(attribute.String("retention.anonymous_id", anonymousID))
	defer span.End()

	user, err := s.repo.GetAnonymizedUser(ctx, strings.TrimSpace(anonymousID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RetentionInspection{}, ErrRetentionRecordNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup_failed")
		return RetentionInspection{}, err
	}

	counts, err := s.repo.CountRecords(ctx, user.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_failed")
		return RetentionInspection{}, err
	}

	accessedAt := s.now().UTC()
	if err := s.repo.RecordAccess(ctx, user.ID, accessedAt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record_access_failed")
		return RetentionInspection{}, err
	}
	user.AccessCount++
	user.LastAccessedAt = &accessedAt

	s.logger.Info().Str("anonymous_id", user.AnonymousID).Int("access_count", user.AccessCount).Msg("retention record inspected")

	return RetentionInspection{User: user, Counts: counts}, nil
}

func (s *retentionAuditService) ListHistory(ctx context.Context, role string, page, pageSize int) (WithdrawalHistoryPage, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultHistoryPageSize
	}
	if pageSize > maxHistoryPageSize {
		pageSize = maxHistoryPageSize
	}

	filter := repository.WithdrawalHistoryFilter{Page: page, PageSize: pageSize}
	if role != "" {
		parsed, ok := models.ParseRole(role)
		if !ok {
			return WithdrawalHistoryPage{}, ErrInvalidRoleFilter
		}
		filter.Role = string(parsed)
	}

	items, total, err := s.repo.ListHistory(ctx, filter)
	if err != nil {
		return WithdrawalHistoryPage{}, err
	}

	return WithdrawalHistoryPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}
