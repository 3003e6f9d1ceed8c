package crypto

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	d1, err := h.Hash("Abcdefgh1!")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	d2, err := h.Hash("Abcdefgh1!")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if d1 == d2 {
		t.Fatalf("expected digests of the same secret to differ")
	}
	if strings.Contains(d1, "Abcdefgh1!") {
		t.Fatalf("digest contains plaintext")
	}
	if !h.Verify("Abcdefgh1!", d1) || !h.Verify("Abcdefgh1!", d2) {
		t.Fatalf("Verify rejected the correct secret")
	}
	if h.Verify("Abcdefgh1?", d1) {
		t.Fatalf("Verify accepted a wrong secret")
	}
}

func TestBcryptHasher_VerifyMalformedDigest(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	if h.Verify("anything", "not-a-digest") {
		t.Fatalf("Verify accepted a malformed digest")
	}
	if h.Verify("anything", "") {
		t.Fatalf("Verify accepted an empty digest")
	}
}

func TestNewBcryptHasher_CostFallback(t *testing.T) {
	h := NewBcryptHasher(0).(*bcryptHasher)
	if h.cost != bcrypt.DefaultCost {
		t.Fatalf("cost = %d, want %d", h.cost, bcrypt.DefaultCost)
	}

	h = NewBcryptHasher(bcrypt.MaxCost + 1).(*bcryptHasher)
	if h.cost != bcrypt.DefaultCost {
		t.Fatalf("cost = %d, want %d", h.cost, bcrypt.DefaultCost)
	}
}

func TestBcryptHasher_DigestKeepsCost(t *testing.T) {
	digest, err := NewBcryptHasher(bcrypt.MinCost).Hash("Abcdefgh1!")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	// a hasher configured with another cost still verifies older digests
	if !NewBcryptHasher(bcrypt.MinCost+1).Verify("Abcdefgh1!", digest) {
		t.Fatalf("digest produced with a different cost was rejected")
	}
}
