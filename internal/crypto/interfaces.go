package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/crypto_mock.go -package=mock

// PasswordHasher turns plaintext secrets into one-way digests and checks
// candidates against them. Digests are self-describing: the cost and salt
// travel inside the string, so a stored digest stays verifiable after the
// configured cost changes.
type PasswordHasher interface {
	// Hash returns a fresh digest of secret. Two calls with the same input
	// return different digests.
	Hash(secret string) (string, error)

	// Verify reports whether secret matches digest. A malformed digest is a
	// mismatch, not an error.
	Verify(secret, digest string) bool
}

// TokenGenerator issues opaque session tokens.
type TokenGenerator interface {
	// Generate returns a URL-safe token carrying at least 256 bits of entropy.
	Generate() (string, error)
}
