package models

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// AdminToken is a signed administrator bearer token. Field actors never hold
// one; they authenticate with opaque session tokens instead.
//
// The "sub" claim carries the administrator actor id, which is recorded as the
// acting party in the audit trail.
type AdminToken struct {
	*jwt.Token `json:"-"`

	jwt.RegisteredClaims

	// SignedString is the compact JWS form sent in the Authorization header.
	SignedString string `json:"-"`

	// AdminID is the parsed subject.
	AdminID int64 `json:"-"`
}

// GetAdminID parses the subject claim as a base-10 int64.
func (t *AdminToken) GetAdminID() (int64, error) {
	subject, err := t.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("error extracting admin id from token: %w", err)
	}

	adminID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error converting admin id from token to int64: %w", err)
	}

	return adminID, nil
}

func (t *AdminToken) String() string {
	return t.SignedString
}
