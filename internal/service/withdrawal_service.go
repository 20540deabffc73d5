package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/observability"
	"github.com/noah-isme/academy-api/internal/privacy"
	"github.com/noah-isme/academy-api/internal/repository"
)

const defaultWithdrawalAttempts = 3

// WithdrawalService closes accounts: it checks eligibility, moves statutory
// history into the retention schema and masks the live rows in one transaction.
type WithdrawalService interface {
	Withdraw(ctx context.Context, role models.Role, userID uint, reason string) error
}

// WithdrawalDependencies groups the collaborators of the withdrawal service.
// Photos, Guard and Events are optional.
type WithdrawalDependencies struct {
	Live       repository.LiveRepository
	UnitOfWork repository.UnitOfWork
	Photos     ProfilePhotoDeleter
	Guard      WithdrawalGuard
	Events     WithdrawalEventPublisher
	Masker     *privacy.Masker
}

// WithdrawalOptions tunes the withdrawal service.
type WithdrawalOptions struct {
	// MaxAttempts bounds retries after an anonymous id collision.
	MaxAttempts int
	// Location defines the calendar day used for class end dates.
	Location *time.Location
}

// migrationCounts records how many retention rows each migrator appended.
type migrationCounts map[string]int64

func (c migrationCounts) total() int64 {
	var total int64
	for _, count := range c {
		total += count
	}
	return total
}

// withdrawalPlan is what a role strategy collected during the read phase.
// Its steps are replayed against the transaction's stores.
type withdrawalPlan struct {
	photoURL *string
	validate func(ctx context.Context, live repository.LiveRepository) error
	migrate  func(ctx context.Context, store repository.RetentionRepository, anonymousUserID uint, withdrawalDate time.Time) (migrationCounts, error)
	mask     func(ctx context.Context, live repository.LiveRepository, masker *privacy.Masker) error
}

// withdrawalStrategy loads the role profile and its history for one user.
type withdrawalStrategy interface {
	collect(ctx context.Context, live repository.LiveRepository, userID uint, today time.Time) (withdrawalPlan, error)
}

type withdrawalService struct {
	live           repository.LiveRepository
	uow            repository.UnitOfWork
	photos         ProfilePhotoDeleter
	guard          WithdrawalGuard
	events         WithdrawalEventPublisher
	masker         *privacy.Masker
	strategies     map[models.Role]withdrawalStrategy
	maxAttempts    int
	location       *time.Location
	sanitizer      *bluemonday.Policy
	logger         zerolog.Logger
	tracer         trace.Tracer
	now            func() time.Time
	newAnonymousID func(role models.Role, at time.Time) string
}

// NewWithdrawalService constructs the withdrawal orchestrator.
func NewWithdrawalService(deps WithdrawalDependencies, opts WithdrawalOptions, logger zerolog.Logger) WithdrawalService {
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = defaultWithdrawalAttempts
	}
	location := opts.Location
	if location == nil {
		location = time.UTC
	}
	masker := deps.Masker
	if masker == nil {
		masker = privacy.NewMasker()
	}

	return &withdrawalService{
		live:   deps.Live,
		uow:    deps.UnitOfWork,
		photos: deps.Photos,
		guard:  deps.Guard,
		events: deps.Events,
		masker: masker,
		strategies: map[models.Role]withdrawalStrategy{
			models.RoleStudent:   studentWithdrawal{},
			models.RoleTeacher:   teacherWithdrawal{},
			models.RolePrincipal: principalWithdrawal{},
		},
		maxAttempts: attempts,
		location:    location,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "withdrawal_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/academy-api/internal/service/withdrawal"),
		now:         time.Now,
		newAnonymousID: func(role models.Role, at time.Time) string {
			return privacy.NewAnonymousID(string(role), at)
		},
	}
}

func (s *withdrawalService) Withdraw(ctx context.Context, role models.Role, userID uint, reason string) error {
	ctx, span := s.tracer.Start(ctx, "withdrawal.withdraw", trace.WithAttributes(
		attribute.String("withdrawal.role", string(role)),
		attribute.Int("withdrawal.user_id", int(userID)),
	))
	defer span.End()

	started := s.now()
	err := s.withdraw(ctx, role, userID, reason)

	observability.WithdrawalDuration().WithLabelValues(string(role)).Observe(s.now().Sub(started).Seconds())
	observability.Withdrawals().WithLabelValues(string(role), withdrawalOutcome(err)).Inc()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, withdrawalOutcome(err))
	}
	return err
}

func (s *withdrawalService) withdraw(ctx context.Context, role models.Role, userID uint, reason string) error {
	strategy, ok := s.strategies[role]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedWithdrawalRole, role)
	}

	if s.guard != nil {
		release, err := s.guard.Acquire(ctx, userID)
		if err != nil {
			return err
		}
		defer release()
	}

	user, err := s.live.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errUserNotFound()
		}
		return err
	}
	if strings.HasPrefix(user.UserID, privacy.WithdrawnUserIDPrefix) {
		return errUserNotFound()
	}
	if user.Role != role {
		return errRoleMismatch()
	}

	today := s.today()
	plan, err := strategy.collect(ctx, s.live, user.ID, today)
	if err != nil {
		return err
	}
	if err := plan.validate(ctx, s.live); err != nil {
		s.logger.Info().Uint("user_id", userID).Str("role", string(role)).Err(err).Msg("withdrawal rejected")
		return err
	}

	history := models.WithdrawalHistory{
		UserID:         user.UserID,
		Name:           user.Name,
		Role:           role,
		Reason:         strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(reason))),
		ReasonCategory: models.ReasonCategoryOther,
	}

	var (
		anonymized models.AnonymizedUser
		counts     migrationCounts
	)
	for attempt := 1; ; attempt++ {
		withdrawnAt := s.now().UTC()
		anonymized = models.AnonymizedUser{
			AnonymousID:        s.newAnonymousID(role, withdrawnAt),
			Role:               role,
			WithdrawalDate:     withdrawnAt,
			DataRetentionUntil: privacy.RetentionUntil(withdrawnAt, privacy.AnonymizedUserRetentionYears),
		}
		history.ID = 0
		history.WithdrawnAt = withdrawnAt

		counts, err = s.commit(ctx, user.ID, plan, &anonymized, &history)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrAnonymousIDConflict) || attempt >= s.maxAttempts {
			return err
		}
		s.logger.Warn().Uint("user_id", userID).Int("attempt", attempt).Msg("anonymous id collision, retrying")
	}

	for entity, count := range counts {
		observability.RetentionRowsMigrated().WithLabelValues(entity).Add(float64(count))
	}
	s.logger.Info().
		Uint("user_id", userID).
		Str("role", string(role)).
		Str("anonymous_id", anonymized.AnonymousID).
		Int64("retained_rows", counts.total()).
		Msg("account withdrawn")

	s.afterCommit(ctx, plan, anonymized, counts)
	return nil
}

// commit runs the atomic phase. Preconditions are checked again inside the
// transaction so changes made since the read phase are not missed.
func (s *withdrawalService) commit(ctx context.Context, userID uint, plan withdrawalPlan, anonymized *models.AnonymizedUser, history *models.WithdrawalHistory) (migrationCounts, error) {
	var counts migrationCounts
	err := s.uow.Within(ctx, func(stores repository.Stores) error {
		if err := plan.validate(ctx, stores.Live); err != nil {
			return err
		}

		if err := stores.Retention.CreateAnonymizedUser(ctx, anonymized); err != nil {
			return err
		}

		migrated, err := plan.migrate(ctx, stores.Retention, anonymized.ID, anonymized.WithdrawalDate)
		if err != nil {
			return err
		}

		if err := plan.mask(ctx, stores.Live, s.masker); err != nil {
			return err
		}

		userMask, err := s.masker.User(userID)
		if err != nil {
			return err
		}
		if err := stores.Live.MaskUser(ctx, userID, userMask); err != nil {
			return fmt.Errorf("mask user: %w", err)
		}

		if err := stores.Retention.CreateWithdrawalHistory(ctx, history); err != nil {
			return fmt.Errorf("record withdrawal history: %w", err)
		}

		counts = migrated
		return nil
	})
	return counts, err
}

func (s *withdrawalService) afterCommit(ctx context.Context, plan withdrawalPlan, anonymized models.AnonymizedUser, counts migrationCounts) {
	ctx = context.WithoutCancel(ctx)

	if s.photos != nil && plan.photoURL != nil && *plan.photoURL != "" {
		if !s.photos.DeleteProfilePhoto(ctx, plan.photoURL) {
			observability.SideEffectFailures().WithLabelValues("profile_photo").Inc()
			s.logger.Warn().Str("anonymous_id", anonymized.AnonymousID).Msg("profile photo was not deleted")
		}
	}

	if s.events != nil {
		event := WithdrawalEvent{
			AnonymousID: anonymized.AnonymousID,
			Role:        anonymized.Role,
			WithdrawnAt: anonymized.WithdrawalDate,
			Migrated:    counts,
		}
		if err := s.events.PublishWithdrawn(ctx, event); err != nil {
			observability.SideEffectFailures().WithLabelValues("event").Inc()
			s.logger.Warn().Err(err).Str("anonymous_id", anonymized.AnonymousID).Msg("failed to publish withdrawal event")
		}
	}
}

// today is midnight of the current day in the configured location, in UTC.
func (s *withdrawalService) today() time.Time {
	now := s.now().In(s.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location).UTC()
}

func withdrawalOutcome(err error) string {
	if err == nil {
		return "committed"
	}
	var withdrawalErr *WithdrawalError
	if errors.As(err, &withdrawalErr) {
		if withdrawalErr.Kind == WithdrawalNotFound {
			return "not_found"
		}
		return "rejected"
	}
	return "failed"
}
