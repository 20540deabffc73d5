package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// ErrForeignAsset is returned for URLs that do not point at the configured cloud.
var ErrForeignAsset = errors.New("asset does not belong to this cloudinary account")

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Asset identifies a stored file by its Cloudinary coordinates.
type Asset struct {
	ResourceType string
	PublicID     string
}

// Service deletes profile assets stored in Cloudinary.
type Service struct {
	client    *cloudinary.Cloudinary
	cloudName string
	logger    zerolog.Logger
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Service{
		client:    cld,
		cloudName: cfg.CloudName,
		logger:    logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// DestroyByURL removes the asset behind a delivery URL. A missing asset is not an error.
func (s *Service) DestroyByURL(ctx context.Context, rawURL string) error {
	asset, err := ParseDeliveryURL(rawURL, s.cloudName)
	if err != nil {
		return err
	}

	result, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     asset.PublicID,
		ResourceType: asset.ResourceType,
	})
	if err != nil {
		return fmt.Errorf("failed to destroy asset: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("failed to destroy asset: %s", result.Error.Message)
	}

	s.logger.Info().Str("public_id", asset.PublicID).Str("result", result.Result).Msg("asset destroyed")
	return nil
}

// ParseDeliveryURL extracts the resource type and public id from a URL shaped
// like https://res.cloudinary.com/{cloud}/{type}/upload/[transformations/][v123/]{public_id}.{ext}.
func ParseDeliveryURL(rawURL, cloudName string) (Asset, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Asset{}, fmt.Errorf("invalid asset url: %w", err)
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) < 4 || segments[2] != "upload" {
		return Asset{}, fmt.Errorf("invalid asset url: %q", rawURL)
	}
	if cloudName != "" && segments[0] != cloudName {
		return Asset{}, ErrForeignAsset
	}

	rest := segments[3:]
	for i, segment := range rest {
		if isVersionSegment(segment) {
			rest = rest[i+1:]
			break
		}
	}
	if len(rest) == 0 {
		return Asset{}, fmt.Errorf("invalid asset url: %q", rawURL)
	}

	publicID := strings.Join(rest, "/")
	publicID = strings.TrimSuffix(publicID, path.Ext(publicID))
	if publicID == "" {
		return Asset{}, fmt.Errorf("invalid asset url: %q", rawURL)
	}

	return Asset{ResourceType: segments[1], PublicID: publicID}, nil
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
