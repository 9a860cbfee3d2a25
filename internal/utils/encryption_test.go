package utils

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f1011121314151617" // 24 bytes

func TestTokenCipherRoundTrip(t *testing.T) {
	c, err := NewTokenCipher(testKey)
	require.NoError(t, err)
	require.NotNil(t, c)

	sealed, err := c.Seal("T1-access-token")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, sealedPrefix))
	assert.NotContains(t, sealed, "T1-access-token")

	opened, err := c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "T1-access-token", opened)
}

func TestTokenCipherNonceDiffers(t *testing.T) {
	c, err := NewTokenCipher(testKey)
	require.NoError(t, err)

	a, _ := c.Seal("same")
	b, _ := c.Seal("same")
	assert.NotEqual(t, a, b)
}

func TestTokenCipherPassThrough(t *testing.T) {
	c, err := NewTokenCipher("")
	require.NoError(t, err)
	assert.Nil(t, c)

	sealed, err := c.Seal("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", sealed)

	keyed, err := NewTokenCipher(testKey)
	require.NoError(t, err)
	legacy, err := keyed.Open("legacy-plaintext")
	require.NoError(t, err)
	assert.Equal(t, "legacy-plaintext", legacy)
}

func TestTokenCipherRejectsTampering(t *testing.T) {
	c, err := NewTokenCipher(testKey)
	require.NoError(t, err)

	sealed, _ := c.Seal("secret")
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(sealed, sealedPrefix))
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	tampered := sealedPrefix + base64.RawURLEncoding.EncodeToString(raw)

	_, err = c.Open(tampered)
	assert.Error(t, err)
}

func TestNewTokenCipherBadKey(t *testing.T) {
	_, err := NewTokenCipher("zz")
	assert.Error(t, err)

	_, err = NewTokenCipher("0011")
	assert.Error(t, err)
}

