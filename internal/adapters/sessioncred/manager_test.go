package sessioncred

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager("")
	assert.Error(t, err)

	m, err := NewManager("test-secret")
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestManager_MintAndVerify(t *testing.T) {
	m, err := NewManager("test-secret")
	require.NoError(t, err)

	before := time.Now().Add(-time.Second)
	credential, err := m.Mint("user-1", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, credential)

	claims, err := m.Verify(credential)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.True(t, claims.IssuedAt.After(before))
	assert.True(t, claims.IssuedAt.Before(time.Now().Add(time.Second)))
}

func TestManager_Mint_Validation(t *testing.T) {
	m, err := NewManager("test-secret")
	require.NoError(t, err)

	_, err = m.Mint("", time.Hour)
	assert.Error(t, err)

	_, err = m.Mint("user-1", 0)
	assert.Error(t, err)
}

func TestManager_Verify_RejectsTampering(t *testing.T) {
	m, err := NewManager("test-secret")
	require.NoError(t, err)

	credential, err := m.Mint("user-1", time.Hour)
	require.NoError(t, err)

	// Flip a character in the signature segment.
	parts := strings.Split(credential, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = m.Verify(tampered)
	assert.Error(t, err)
}

func TestManager_Verify_RejectsWrongKey(t *testing.T) {
	m1, err := NewManager("key-one")
	require.NoError(t, err)
	m2, err := NewManager("key-two")
	require.NoError(t, err)

	credential, err := m1.Mint("user-1", time.Hour)
	require.NoError(t, err)

	_, err = m2.Verify(credential)
	assert.Error(t, err)
}

func TestManager_Verify_RejectsExpired(t *testing.T) {
	m, err := NewManager("test-secret")
	require.NoError(t, err)

	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "classauth",
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.Verify(expired)
	assert.Error(t, err)
}

func TestManager_Verify_RejectsForeignIssuerAndAlg(t *testing.T) {
	m, err := NewManager("test-secret")
	require.NoError(t, err)

	foreign := jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "someone-else",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, foreign).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = m.Verify(signed)
	assert.Error(t, err, "issuer is enforced")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "classauth",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Verify(unsigned)
	assert.Error(t, err, "only HMAC is accepted")
}

func TestManager_Verify_Empty(t *testing.T) {
	m, err := NewManager("test-secret")
	require.NoError(t, err)

	_, err = m.Verify("")
	assert.Error(t, err)
}
