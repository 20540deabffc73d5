package cloudinary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDeliveryURL(t *testing.T) {
	asset, err := ParseDeliveryURL("https://res.cloudinary.com/academy/image/upload/v1712345678/profiles/teacher-7.jpg", "academy")
	require.NoError(t, err)
	require.Equal(t, "image", asset.ResourceType)
	require.Equal(t, "profiles/teacher-7", asset.PublicID)
}

func TestParseDeliveryURLWithoutVersion(t *testing.T) {
	asset, err := ParseDeliveryURL("https://res.cloudinary.com/academy/image/upload/profile.png", "")
	require.NoError(t, err)
	require.Equal(t, "profile", asset.PublicID)
}

func TestParseDeliveryURLSkipsTransformations(t *testing.T) {
	asset, err := ParseDeliveryURL("https://res.cloudinary.com/academy/image/upload/c_fill,w_200/v3/profiles/p.webp", "academy")
	require.NoError(t, err)
	require.Equal(t, "profiles/p", asset.PublicID)
}

func TestParseDeliveryURLRejectsForeignCloud(t *testing.T) {
	_, err := ParseDeliveryURL("https://res.cloudinary.com/other/image/upload/v1/p.jpg", "academy")
	require.ErrorIs(t, err, ErrForeignAsset)
}

func TestParseDeliveryURLRejectsMalformed(t *testing.T) {
	_, err := ParseDeliveryURL("https://example.com/photo.jpg", "")
	require.Error(t, err)
}
