// Package auth hashes passwords and signs session cookie values.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidSession is returned for tampered or malformed session values.
var ErrInvalidSession = errors.New("auth: invalid session")

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Signer creates and verifies HMAC-signed session values carrying an email.
type Signer struct {
	secret []byte
}

// NewSigner returns a Signer keyed by secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign encodes email into a session value.
func (s *Signer) Sign(email string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(email))
	return payload + "." + hex.EncodeToString(s.mac(payload))
}

// Verify returns the email carried by value.
func (s *Signer) Verify(value string) (string, error) {
	payload, signature, ok := strings.Cut(value, ".")
	if !ok || strings.Contains(signature, ".") {
		return "", ErrInvalidSession
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return "", ErrInvalidSession
	}
	if !hmac.Equal(provided, s.mac(payload)) {
		return "", ErrInvalidSession
	}

	decoded, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil || len(decoded) == 0 {
		return "", ErrInvalidSession
	}

	return string(decoded), nil
}

func (s *Signer) mac(payload string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	return mac.Sum(nil)
}
