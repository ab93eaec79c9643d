package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/izposoja/internal/model"
)

var ana = &model.User{ID: 1, Username: "ana", Role: model.RoleAdmin}

func TestIssueAndValidateToken(t *testing.T) {
	iss := NewIssuer("test-secret-key")

	token, issued, err := iss.Issue(ana)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := iss.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.Equal(t, issued.ID, claims.ID)

	_, err = uuid.Parse(claims.ID)
	assert.NoError(t, err, "token IDs are UUIDs")
}

func TestTokenIDsAreUnique(t *testing.T) {
	iss := NewIssuer("s")
	_, a, err := iss.Issue(ana)
	require.NoError(t, err)
	_, b, err := iss.Issue(ana)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _, err := NewIssuer("secret1").Issue(ana)
	require.NoError(t, err)

	_, err = NewIssuer("secret2").Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := NewIssuer("secret").Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsOtherMethods(t *testing.T) {
	claims := Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewIssuer("secret").Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpiry(t *testing.T) {
	iss := NewIssuer("test")
	start := time.Now()
	iss.now = func() time.Time { return start }

	token, claims, err := iss.Issue(ana)
	require.NoError(t, err)
	assert.WithinDuration(t, start.Add(TokenExpiry), claims.ExpiresAt.Time, time.Second)

	iss.now = func() time.Time { return start.Add(TokenExpiry + time.Minute) }
	_, err = iss.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
