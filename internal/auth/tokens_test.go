package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "707172737475767778797a7b7c7d7e7f808182838485868788898a8b8c8d8e8f"

func TestTokenService_RoundTrip(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken("user-42")
	require.NoError(t, err)
	assert.Contains(t, token, "v4.local.")

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID())
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, claims.IssuedAt.Add(time.Hour), claims.Expiration, time.Second)
}

func TestTokenService_RejectsExpiredToken(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, time.Minute)
	require.NoError(t, err)

	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }
	token, err := svc.GenerateAccessToken("user-1")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestTokenService_RejectsForeignKey(t *testing.T) {
	issuer, err := NewTokenService(testKeyHex, time.Hour)
	require.NoError(t, err)
	other, err := NewTokenService("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f", time.Hour)
	require.NoError(t, err)

	token, err := issuer.GenerateAccessToken("user-1")
	require.NoError(t, err)

	_, err = other.VerifyAccessToken(token)
	assert.Error(t, err)

	_, err = issuer.VerifyAccessToken("not-a-token")
	assert.Error(t, err)
}

func TestTokenService_RequiresUserID(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, time.Hour)
	require.NoError(t, err)

	_, err = svc.GenerateAccessToken("")
	assert.Error(t, err)
}

func TestNewTokenService_InvalidKey(t *testing.T) {
	_, err := NewTokenService("abcd", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenService("zz"+testKeyHex[2:], time.Hour)
	assert.Error(t, err)
}

func TestLoadOrGenerateKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	first, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, first, keyHexLength)

	info, err := os.Stat(filepath.Join(dir, keyFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = NewTokenService(first, time.Hour)
	assert.NoError(t, err)
}

func TestLoadOrGenerateKey_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, keyFileName), []byte("short"), 0o600))

	_, err := LoadOrGenerateKey(dir)
	assert.Error(t, err)
}
