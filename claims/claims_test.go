package claims_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/opencustody/consolekit/claims"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, mapClaims jwtlib.MapClaims) string {
	t.Helper()
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, mapClaims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestParseFullClaims(t *testing.T) {
	issued := time.Now().Truncate(time.Second)
	raw := signToken(t, jwtlib.MapClaims{
		"iat":  issued.Unix(),
		"exp":  issued.Add(time.Hour).Unix(),
		"sub":  "user-1",
		"role": "admin",
	})

	c, err := claims.Parse(raw)
	require.NoError(t, err)
	require.NotNil(t, c.IssuedAt)
	require.Equal(t, issued.Unix(), c.IssuedAt.Unix())
	require.NotNil(t, c.ExpiresAt)
	require.Equal(t, issued.Add(time.Hour).Unix(), c.ExpiresAt.Unix())
	require.Equal(t, "user-1", c.Subject)
	require.Equal(t, "admin", c.Role)
	require.False(t, c.SecondFactor())
}

func TestParseMissingClaims(t *testing.T) {
	raw := signToken(t, jwtlib.MapClaims{"sub": "user-2"})

	c, err := claims.Parse(raw)
	require.NoError(t, err)
	require.Nil(t, c.IssuedAt)
	require.Nil(t, c.ExpiresAt)
	require.Equal(t, "user-2", c.Subject)
}

func TestParseSecondFactorToken(t *testing.T) {
	raw := signToken(t, jwtlib.MapClaims{
		"sub":  "user-3",
		"type": claims.TypeSecondFactor,
	})

	c, err := claims.Parse(raw)
	require.NoError(t, err)
	require.True(t, c.SecondFactor())
}

func TestParseMalformedToken(t *testing.T) {
	_, err := claims.Parse("not-a-jwt")
	require.Error(t, err)

	_, err = claims.Parse("")
	require.Error(t, err)
}
