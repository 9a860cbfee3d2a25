package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// sealedPrefix marks values produced by TokenCipher.Seal
const sealedPrefix = "enc:v1:"

// TokenCipher encrypts marketplace credentials at rest (AES-GCM).
// A nil *TokenCipher is valid and passes values through unchanged.
type TokenCipher struct {
	aead cipher.AEAD
}

// NewTokenCipher builds a cipher from a hex key (16, 24 or 32 bytes).
// An empty key yields a nil cipher.
func NewTokenCipher(encKeyHex string) (*TokenCipher, error) {
	if encKeyHex == "" {
		return nil, nil
	}

	key, err := hex.DecodeString(encKeyHex)
	if err != nil {
		return nil, errors.New("invalid ENC_KEY format")
	}

	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("ENC_KEY must be 16, 24 or 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &TokenCipher{aead: aesGCM}, nil
}

// Seal encrypts plaintext into a printable string
func (c *TokenCipher) Seal(plaintext string) (string, error) {
	if c == nil || plaintext == "" {
		return plaintext, nil
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	// nonce || ciphertext || tag
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal. Values without the prefix are
// returned as-is so rows written before ENC_KEY was set stay readable.
func (c *TokenCipher) Open(value string) (string, error) {
	if c == nil || !strings.HasPrefix(value, sealedPrefix) {
		return value, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", errors.New("decryption failed: invalid encoding")
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", errors.New("decryption failed: value too short")
	}

	plaintext, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", errors.New("decryption failed: invalid auth tag or corrupted data")
	}

	return string(plaintext), nil
}
