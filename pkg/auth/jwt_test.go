package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken("merchant-1", RoleMerchant)
	require.NoError(t, err)

	claims, err := ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "merchant-1", claims.Subject)
	assert.Equal(t, RoleMerchant, claims.Role)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	tok, err := GenerateToken("c-1", RoleCustomer)
	require.NoError(t, err)

	_, err = ValidateToken(tok + "x")
	assert.Error(t, err)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "c-1",
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("some-other-secret"))
	require.NoError(t, err)
	_, err = ValidateToken(forged)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: RoleCustomer,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "c-1",
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString(secret())
	require.NoError(t, err)

	_, err = ValidateToken(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestGenerateTokenNeedsSubject(t *testing.T) {
	_, err := GenerateToken("", RoleAdmin)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "S3cret!"))
}

func TestPrincipalContext(t *testing.T) {
	_, ok := FromCtx(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), Principal{ID: "a", Role: RoleAdmin})
	p, ok := FromCtx(ctx)
	require.True(t, ok)
	assert.True(t, p.IsAdmin())
	assert.True(t, p.Is(RoleAdmin))
	assert.True(t, Equal("x", "x"))
	assert.False(t, Equal("x", "y"))
}
