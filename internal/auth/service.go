package auth

import (
	"context"
	"fmt"
	"time"

	pkgauth "github.com/kioskworks/counter-backend/pkg/auth"
	"github.com/kioskworks/counter-backend/pkg/config"
	pkgerrors "github.com/kioskworks/counter-backend/pkg/errors"
	"github.com/kioskworks/counter-backend/pkg/logger"
	"github.com/kioskworks/counter-backend/pkg/security"
)

// LoginResult carries the minted staff token.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service authenticates kitchen staff against the shared passcode.
type Service struct {
	staff config.StaffConfig
	jwt   config.JWTConfig
	logg  *logger.Logger
}

// NewService builds the staff auth service.
func NewService(staff config.StaffConfig, jwtCfg config.JWTConfig, logg *logger.Logger) (*Service, error) {
	if staff.PasscodeHash == "" {
		return nil, fmt.Errorf("staff passcode hash required")
	}
	return &Service{staff: staff, jwt: jwtCfg, logg: logg}, nil
}

// Login verifies the passcode and mints a staff token.
func (s *Service) Login(ctx context.Context, passcode string) (*LoginResult, error) {
	if passcode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "passcode required")
	}

	ok, err := security.VerifyPasscode(passcode, s.staff.PasscodeHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify passcode")
	}
	if !ok {
		if s.logg != nil {
			s.logg.Warn(ctx, "staff login rejected")
		}
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid passcode")
	}

	token, expiresAt, err := pkgauth.MintStaffToken(s.jwt, time.Now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint staff token")
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

// Verify parses and validates a staff token.
func (s *Service) Verify(ctx context.Context, token string) (*pkgauth.StaffTokenClaims, error) {
	claims, err := pkgauth.ParseStaffToken(s.jwt, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid staff token")
	}
	if claims.Role != pkgauth.RoleStaff {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	return claims, nil
}
