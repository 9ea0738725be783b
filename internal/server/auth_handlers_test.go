package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waveline/internal/config"
	"waveline/internal/models"
)

func newTokenServer(t *testing.T) *Server {
	t.Helper()
	return &Server{
		config: &config.Config{
			JWTSecret:       "test-secret-for-token-round-trips",
			AccessTokenMin:  30,
			RefreshTokenHrs: 168,
		},
	}
}

func TestGenerateToken_RoundTrip(t *testing.T) {
	s := newTokenServer(t)

	tests := []struct {
		name      string
		tokenType string
	}{
		{"Access", tokenTypeAccess},
		{"Refresh", tokenTypeRefresh},
		{"Verification", tokenTypeVerification},
		{"Reset", tokenTypeReset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed, err := s.generateToken(42, "ada", tt.tokenType, time.Hour)
			require.NoError(t, err)

			userID, err := s.parseTypedToken(signed, tt.tokenType)
			require.NoError(t, err)
			assert.Equal(t, uint(42), userID)
		})
	}
}

func TestGenerateToken_MissingSecret(t *testing.T) {
	s := &Server{config: &config.Config{}}
	_, err := s.generateToken(1, "ada", tokenTypeAccess, time.Hour)
	assert.Error(t, err)
}

func TestParseTypedToken_Rejections(t *testing.T) {
	s := newTokenServer(t)

	t.Run("TypeMismatch", func(t *testing.T) {
		refresh, err := s.generateToken(7, "ada", tokenTypeRefresh, time.Hour)
		require.NoError(t, err)

		_, err = s.parseTypedToken(refresh, tokenTypeAccess)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "INVALID_TOKEN", appErr.Code)
		assert.Equal(t, "Invalid token type", appErr.Message)
	})

	t.Run("Expired", func(t *testing.T) {
		stale, err := s.generateToken(7, "ada", tokenTypeAccess, -time.Minute)
		require.NoError(t, err)

		_, err = s.parseTypedToken(stale, tokenTypeAccess)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "Invalid or expired token", appErr.Message)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		signed, err := s.generateToken(7, "ada", tokenTypeAccess, time.Hour)
		require.NoError(t, err)

		other := &Server{config: &config.Config{JWTSecret: "a-different-secret-entirely!!"}}
		_, err = other.parseTypedToken(signed, tokenTypeAccess)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "INVALID_TOKEN", appErr.Code)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := s.parseTypedToken("not.a.token", tokenTypeAccess)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "INVALID_TOKEN", appErr.Code)
	})
}

func TestAuthRequired(t *testing.T) {
	s := newTokenServer(t)

	newApp := func() *fiber.App {
		app := fiber.New()
		app.Get("/me", s.AuthRequired(), func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"user_id": currentUserID(c)})
		})
		return app
	}

	t.Run("MissingHeader", func(t *testing.T) {
		app := newApp()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("ValidAccessToken", func(t *testing.T) {
		app := newApp()
		token, err := s.generateToken(42, "ada", tokenTypeAccess, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("RefreshTokenRejected", func(t *testing.T) {
		app := newApp()
		token, err := s.generateToken(42, "ada", tokenTypeRefresh, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("BlacklistedJTIRejected", func(t *testing.T) {
		mr := miniredis.RunT(t)
		blacklisting := newTokenServer(t)
		blacklisting.redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})

		app := fiber.New()
		app.Get("/me", blacklisting.AuthRequired(), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})

		token, err := blacklisting.generateToken(42, "ada", tokenTypeAccess, time.Hour)
		require.NoError(t, err)

		// Pull the jti out of the freshly minted token and revoke it.
		parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
		require.NoError(t, err)
		jti := parsed.Claims.(jwt.MapClaims)["jti"].(string)
		require.NoError(t, blacklisting.redis.Set(context.Background(), "blacklist:"+jti, "1", time.Hour).Err())

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
