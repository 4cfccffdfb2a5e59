package security

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the size in bytes of a state sealing key.
const KeySize = chacha20poly1305.KeySize

var (
	// ErrInvalidSealedState is returned for values that were not produced by
	// the sealer or were tampered with.
	ErrInvalidSealedState = errors.New("invalid sealed state")

	// ErrSealedStateExpired is returned for values past their expiry.
	ErrSealedStateExpired = errors.New("sealed state expired")
)

// StateSealer encrypts short values, such as CSRF state, into opaque
// URL-safe strings with XChaCha20-Poly1305. Each sealed value embeds its
// expiry in the authenticated plaintext.
type StateSealer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewStateSealer creates a sealer. The key must be KeySize bytes.
func NewStateSealer(key []byte, ttl time.Duration) (*StateSealer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("state sealing key must be exactly %d bytes, got %d", KeySize, len(key))
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("state sealing ttl must be positive, got %s", ttl)
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &StateSealer{key: k, ttl: ttl, now: time.Now}, nil
}

// TTL returns how long sealed values remain valid.
func (s *StateSealer) TTL() time.Duration {
	return s.ttl
}

// Seal encrypts value. The result is base64url without padding.
func (s *StateSealer) Seal(value string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+8+len(value)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	plaintext := make([]byte, 8, 8+len(value))
	binary.BigEndian.PutUint64(plaintext, uint64(s.now().Add(s.ttl).Unix()))
	plaintext = append(plaintext, value...)

	sealed := aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal.
func (s *StateSealer) Open(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrInvalidSealedState
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	if len(raw) < aead.NonceSize()+aead.Overhead()+8 {
		return "", ErrInvalidSealedState
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrInvalidSealedState
	}

	expiry := time.Unix(int64(binary.BigEndian.Uint64(plaintext[:8])), 0)
	if s.now().After(expiry) {
		return "", ErrSealedStateExpired
	}
	return string(plaintext[8:]), nil
}

// GenerateKey returns a new random sealing key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// KeyFromBase64 decodes a standard base64 sealing key and checks its size.
func KeyFromBase64(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode key: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	return key, nil
}
