package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revisehq/revise-api/internal/config"
)

func newTestConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            "test-secret-thats-at-least-32-characters",
		TokenLifetimeMinutes: 60,
	}
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()

		service, err := NewJWTService(newTestConfig())
		require.NoError(t, err)
		assert.NotNil(t, service)
	})

	t.Run("secret too short", func(t *testing.T) {
		t.Parallel()

		cfg := newTestConfig()
		cfg.JWTSecret = "too-short"

		_, err := NewJWTService(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	learnerID := uuid.New()

	service, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	token, err := service.GenerateToken(ctx, learnerID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, learnerID, claims.LearnerID)
	assert.Equal(t, learnerID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
}

func TestValidateToken_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	learnerID := uuid.New()

	t.Run("malformed token", func(t *testing.T) {
		t.Parallel()

		service, err := NewJWTService(newTestConfig())
		require.NoError(t, err)

		_, err = service.ValidateToken(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		t.Parallel()

		service, err := NewJWTService(newTestConfig())
		require.NoError(t, err)

		otherCfg := newTestConfig()
		otherCfg.JWTSecret = "another-secret-thats-32-characters-long"
		otherService, err := NewJWTService(otherCfg)
		require.NoError(t, err)

		token, err := otherService.GenerateToken(ctx, learnerID)
		require.NoError(t, err)

		_, err = service.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()

		service, err := NewJWTService(newTestConfig())
		require.NoError(t, err)

		impl, ok := service.(*hmacJWTService)
		require.True(t, ok)

		// Issue the token far enough in the past that lifetime plus clock
		// skew have both elapsed.
		issuedAt := time.Now().Add(-2 * time.Hour)
		impl.timeFunc = func() time.Time { return issuedAt }

		token, err := service.GenerateToken(ctx, learnerID)
		require.NoError(t, err)

		impl.timeFunc = time.Now

		_, err = service.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}
