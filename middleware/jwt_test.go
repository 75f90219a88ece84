package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-32bytes-padded!!"

func signRaw(t *testing.T, method jwt.SigningMethod, claims jwt.Claims, key interface{}) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func TestParseToken_RoundTrip(t *testing.T) {
	tok, err := GenerateToken(99, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(99), claims.UserID)
	assert.Equal(t, "99", claims.Subject)
	assert.Equal(t, TokenIssuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestParseToken_WrongSecret(t *testing.T) {
	tok, err := GenerateToken(1, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, "wrong-secret")
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestParseToken_Expired(t *testing.T) {
	tok, err := GenerateToken(1, testSecret, -time.Second)
	require.NoError(t, err)

	_, err = ParseToken(tok, testSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseToken_Malformed(t *testing.T) {
	for _, tok := range []string{"", "not.a.jwt"} {
		_, err := ParseToken(tok, testSecret)
		assert.Error(t, err, "token %q", tok)
	}
}

func TestParseToken_RejectsForeignIssuer(t *testing.T) {
	tok := signRaw(t, jwt.SigningMethodHS256, &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, []byte(testSecret))

	_, err := ParseToken(tok, testSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestParseToken_RequiresExpiry(t *testing.T) {
	tok := signRaw(t, jwt.SigningMethodHS256, &Claims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: TokenIssuer, Subject: "1"},
	}, []byte(testSecret))

	_, err := ParseToken(tok, testSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenRequiredClaimMissing)
}

func TestParseToken_RejectsOtherHMAC(t *testing.T) {
	tok := signRaw(t, jwt.SigningMethodHS512, &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, []byte(testSecret))

	_, err := ParseToken(tok, testSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestParseToken_SubjectMismatch(t *testing.T) {
	tok := signRaw(t, jwt.SigningMethodHS256, &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   "2",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, []byte(testSecret))

	_, err := ParseToken(tok, testSecret)
	assert.ErrorIs(t, err, errTokenSubject)
}

func TestGenerateToken_UniquePerCall(t *testing.T) {
	t1, err := GenerateToken(1, testSecret, time.Hour)
	require.NoError(t, err)
	t2, err := GenerateToken(1, testSecret, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)
}
