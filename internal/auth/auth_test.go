package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345"

func TestHashPassword(t *testing.T) {
	t.Run("Successfully hash password", func(t *testing.T) {
		password := "mySecurePassword123"
		hashed, err := HashPassword(password)

		assert.NoError(t, err)
		assert.NotEmpty(t, hashed)
		assert.NotEqual(t, password, hashed)
	})

	t.Run("Different hashes for same password", func(t *testing.T) {
		hash1, _ := HashPassword("samePassword")
		hash2, _ := HashPassword("samePassword")

		assert.NotEqual(t, hash1, hash2)
	})
}

func TestCheckPassword(t *testing.T) {
	hashed, _ := HashPassword("correctPassword")

	assert.True(t, CheckPassword(hashed, "correctPassword"))
	assert.False(t, CheckPassword(hashed, "wrongPassword"))
	assert.False(t, CheckPassword(hashed, ""))
}

func TestRoleFor(t *testing.T) {
	assert.Equal(t, RoleAdmin, RoleFor(true))
	assert.Equal(t, RoleUser, RoleFor(false))
}

func TestGenerateAccessToken(t *testing.T) {
	t.Run("Successfully generate access token", func(t *testing.T) {
		token, err := GenerateAccessToken(1, "driver", RoleUser, testSecret)

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("Empty secret", func(t *testing.T) {
		token, err := GenerateAccessToken(1, "driver", RoleUser, "")

		assert.ErrorIs(t, err, ErrEmptyJWTSecret)
		assert.Empty(t, token)
	})
}

func TestGenerateTokens(t *testing.T) {
	access, refresh, err := GenerateTokens(7, "driver", RoleUser, testSecret, testSecret)
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	accessClaims, err := ValidateToken(access, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "access", accessClaims.TokenType)
	assert.Equal(t, 7, accessClaims.UserID)
	assert.Equal(t, "driver", accessClaims.Username)

	refreshClaims, err := ValidateToken(refresh, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.TokenType)
}

func TestValidateToken(t *testing.T) {
	t.Run("Valid token", func(t *testing.T) {
		token, _ := GenerateAccessToken(3, "admin", RoleAdmin, testSecret)

		claims, err := ValidateToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, claims.Role)
		assert.Equal(t, jwtIssuer, claims.Issuer)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		token, _ := GenerateAccessToken(3, "admin", RoleAdmin, testSecret)

		_, err := ValidateToken(token, "other-secret")
		assert.Error(t, err)
	})

	t.Run("Malformed token", func(t *testing.T) {
		_, err := ValidateToken("not.a.token", testSecret)
		assert.Error(t, err)
	})

	t.Run("Empty secret", func(t *testing.T) {
		_, err := ValidateToken("anything", "")
		assert.ErrorIs(t, err, ErrEmptyJWTSecret)
	})
}

func TestRefreshAccessToken(t *testing.T) {
	t.Run("Refresh token accepted", func(t *testing.T) {
		refresh, _ := GenerateRefreshToken(5, "driver", RoleUser, testSecret)

		claims, err := RefreshAccessToken(refresh, testSecret)
		require.NoError(t, err)
		assert.Equal(t, 5, claims.UserID)
	})

	t.Run("Access token rejected", func(t *testing.T) {
		access, _ := GenerateAccessToken(5, "driver", RoleUser, testSecret)

		_, err := RefreshAccessToken(access, testSecret)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})
}

func TestTokenExpiration(t *testing.T) {
	claims := &JWTClaims{
		UserID:    1,
		Username:  "driver",
		Role:      RoleUser,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Audience:  []string{jwtAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
