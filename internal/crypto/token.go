package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// SessionTokenBytes is the amount of randomness in a session token.
const SessionTokenBytes = 48

type randomTokenGenerator struct {
	size int
}

func NewTokenGenerator() TokenGenerator {
	return &randomTokenGenerator{size: SessionTokenBytes}
}

// Generate reads size bytes from the OS CSPRNG and encodes them with the
// unpadded URL-safe base64 alphabet.
func (g *randomTokenGenerator) Generate() (string, error) {
	buf := make([]byte, g.size)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneratingToken, err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
