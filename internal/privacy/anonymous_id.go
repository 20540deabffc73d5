package privacy

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const (
	anonymousIDSuffixLength = 8
	base36Alphabet          = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// GenerateAnonymousID returns ANON_{ROLE}_{epoch-ms}_{8 random base36 chars}.
// Uniqueness is enforced by the retention schema, not here.
func GenerateAnonymousID(role string) string {
	return NewAnonymousID(role, time.Now())
}

// NewAnonymousID is GenerateAnonymousID with an explicit creation time.
func NewAnonymousID(role string, at time.Time) string {
	return fmt.Sprintf("ANON_%s_%d_%s",
		strings.ToUpper(strings.TrimSpace(role)),
		at.UnixMilli(),
		RandomBase36(anonymousIDSuffixLength),
	)
}

// RandomBase36 draws n uppercase base36 characters from crypto/rand.
func RandomBase36(n int) string {
	limit := big.NewInt(int64(len(base36Alphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken.
			panic(fmt.Sprintf("privacy: read random: %v", err))
		}
		b.WriteByte(base36Alphabet[idx.Int64()])
	}
	return b.String()
}
