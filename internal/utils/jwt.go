package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-field-keeper/models"
	"github.com/golang-jwt/jwt/v5"
)

var (
	errInvalidTokenParams = errors.New("invalid params for generating admin token")
	errEmptySubject       = errors.New("empty subject error")
)

// GenerateAdminToken signs an HS256 administrator token whose subject is
// adminID.
func GenerateAdminToken(issuer string, adminID int64, tokenDuration time.Duration, signKey string) (models.AdminToken, error) {
	if issuer == "" || tokenDuration == 0 || signKey == "" {
		return models.AdminToken{}, errInvalidTokenParams
	}

	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.FormatInt(adminID, 10),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(signKey))
	if err != nil {
		return models.AdminToken{}, fmt.Errorf("error occurred during signing admin token: %w", err)
	}

	return models.AdminToken{Token: token, SignedString: tokenString, AdminID: adminID}, nil
}

// ValidateAndParseAdminToken verifies signature, expiry and issuer and
// extracts the administrator id. Only HS256 is accepted.
func ValidateAndParseAdminToken(tokenString, tokenSignKey, tokenIssuer string) (models.AdminToken, error) {
	parsed := &models.AdminToken{}
	token, err := jwt.ParseWithClaims(tokenString, parsed, func(token *jwt.Token) (any, error) {
		return []byte(tokenSignKey), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.AdminToken{}, fmt.Errorf("error occurred validating and parsing token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return models.AdminToken{}, fmt.Errorf("error occurred during getting subject from token: %w", err)
	}
	if subject == "" {
		return models.AdminToken{}, errEmptySubject
	}

	adminID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return models.AdminToken{}, fmt.Errorf("error occurred during converting subject to admin id: %w", err)
	}

	return models.AdminToken{
		Token:            token,
		RegisteredClaims: parsed.RegisteredClaims,
		SignedString:     tokenString,
		AdminID:          adminID,
	}, nil
}

// ParseBearerToken extracts the credential from an "Authorization: Bearer x"
// header value. The scheme is matched case-insensitively.
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Fields(authorizationHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}
