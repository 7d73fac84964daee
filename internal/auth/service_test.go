package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/kioskworks/counter-backend/pkg/auth"
	"github.com/kioskworks/counter-backend/pkg/config"
	pkgerrors "github.com/kioskworks/counter-backend/pkg/errors"
	"github.com/kioskworks/counter-backend/pkg/security"
)

func testStaffConfig(t *testing.T, passcode string) config.StaffConfig {
	t.Helper()
	cfg := config.StaffConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
	hash, err := security.HashPasscode(passcode, cfg)
	require.NoError(t, err)
	cfg.PasscodeHash = hash
	return cfg
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "counter-backend-test",
		ExpirationMinutes: 60,
	}
}

func TestLoginSuccess(t *testing.T) {
	svc, err := NewService(testStaffConfig(t, "1234"), testJWTConfig(), nil)
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), "1234")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.ExpiresAt.After(time.Now()))

	claims, err := svc.Verify(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, pkgauth.RoleStaff, claims.Role)
}

func TestLoginWrongPasscode(t *testing.T) {
	svc, err := NewService(testStaffConfig(t, "1234"), testJWTConfig(), nil)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "9999")
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
}

func TestLoginEmptyPasscode(t *testing.T) {
	svc, err := NewService(testStaffConfig(t, "1234"), testJWTConfig(), nil)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "")
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestVerifyRejectsGarbageToken(t *testing.T) {
	svc, err := NewService(testStaffConfig(t, "1234"), testJWTConfig(), nil)
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), "not-a-token")
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	staff := testStaffConfig(t, "1234")

	minter, err := NewService(staff, config.JWTConfig{
		Secret:            "other-secret",
		Issuer:            "counter-backend-test",
		ExpirationMinutes: 60,
	}, nil)
	require.NoError(t, err)

	result, err := minter.Login(context.Background(), "1234")
	require.NoError(t, err)

	svc, err := NewService(staff, testJWTConfig(), nil)
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), result.Token)
	require.Error(t, err)
}
