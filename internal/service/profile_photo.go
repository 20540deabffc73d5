package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// ProfilePhotoDeleter removes stored profile photos. It reports success
// instead of failing so callers can treat deletion as best-effort.
type ProfilePhotoDeleter interface {
	DeleteProfilePhoto(ctx context.Context, url *string) bool
}

// AssetDestroyer deletes a stored file by its public URL.
type AssetDestroyer interface {
	DestroyByURL(ctx context.Context, url string) error
}

type profilePhotoDeleter struct {
	storage AssetDestroyer
	logger  zerolog.Logger
}

// NewProfilePhotoDeleter adapts an asset store to ProfilePhotoDeleter.
func NewProfilePhotoDeleter(storage AssetDestroyer, logger zerolog.Logger) ProfilePhotoDeleter {
	return &profilePhotoDeleter{
		storage: storage,
		logger:  logger.With().Str("component", "profile_photo").Logger(),
	}
}

func (d *profilePhotoDeleter) DeleteProfilePhoto(ctx context.Context, url *string) bool {
	if url == nil || strings.TrimSpace(*url) == "" {
		return true
	}
	if d.storage == nil {
		d.logger.Warn().Msg("asset storage not configured, photo left in place")
		return false
	}

	if err := d.storage.DestroyByURL(ctx, *url); err != nil {
		d.logger.Error().Err(err).Msg("failed to delete profile photo")
		return false
	}
	return true
}
