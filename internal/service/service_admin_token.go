package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-field-keeper/internal/config"
	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/utils"
	"github.com/MKhiriev/go-field-keeper/models"
)

type adminTokenService struct {
	// tokenSignKey is the HMAC secret used to sign and verify admin tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued token. Tokens
	// whose issuer does not match are rejected during parsing.
	tokenIssuer string

	tokenDuration time.Duration

	logger *logger.Logger
}

func NewAdminTokenService(cfg config.App, logger *logger.Logger) AdminTokenService {
	return &adminTokenService{
		tokenSignKey:  cfg.TokenSignKey,
		tokenIssuer:   cfg.TokenIssuer,
		tokenDuration: cfg.TokenDuration,
		logger:        logger,
	}
}

// CreateToken issues a signed administrator token for adminID.
func (a *adminTokenService) CreateToken(ctx context.Context, adminID int64) (models.AdminToken, error) {
	if adminID <= 0 {
		return models.AdminToken{}, fmt.Errorf("%w: admin id must be positive", ErrInvalidInput)
	}

	token, err := utils.GenerateAdminToken(a.tokenIssuer, adminID, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.AdminToken{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken normalises every validation failure (expired, wrong issuer,
// bad signature, malformed) to ErrTokenIsExpiredOrInvalid.
func (a *adminTokenService) ParseToken(ctx context.Context, tokenString string) (models.AdminToken, error) {
	token, err := utils.ValidateAndParseAdminToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		logger.FromContext(ctx).Debug().Err(err).Str("func", "*adminTokenService.ParseToken").Msg("admin token rejected")
		return models.AdminToken{}, ErrTokenIsExpiredOrInvalid
	}
	if token.AdminID <= 0 {
		return models.AdminToken{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}
