package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/noah-isme/academy-api/internal/privacy"
	"github.com/noah-isme/academy-api/internal/repository"
)

const (
	academyCodeLength          = 8
	defaultAcademyCodeAttempts = 10
)

// ErrAcademyCodeExhausted is returned when every generated code collided.
var ErrAcademyCodeExhausted = errors.New("could not generate a unique academy code")

// AcademyCodeService issues join codes for new academies.
type AcademyCodeService interface {
	Generate(ctx context.Context) (string, error)
}

type academyCodeService struct {
	repo        repository.AcademyRepository
	maxAttempts int
	logger      zerolog.Logger
	newCode     func() string
}

// NewAcademyCodeService constructs the academy code generator.
func NewAcademyCodeService(repo repository.AcademyRepository, maxAttempts int, logger zerolog.Logger) AcademyCodeService {
	if maxAttempts <= 0 {
		maxAttempts = defaultAcademyCodeAttempts
	}
	return &academyCodeService{
		repo:        repo,
		maxAttempts: maxAttempts,
		logger:      logger.With().Str("component", "academy_code_service").Logger(),
		newCode: func() string {
			return privacy.RandomBase36(academyCodeLength)
		},
	}
}

func (s *academyCodeService) Generate(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code := s.newCode()
		exists, err := s.repo.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
		s.logger.Debug().Int("attempt", attempt).Msg("academy code collision")
	}

	s.logger.Error().Int("attempts", s.maxAttempts).Msg("academy code space exhausted")
	return "", ErrAcademyCodeExhausted
}
