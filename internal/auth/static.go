// ABOUTME: Static API tokens of the form wdn_<id>_<secret>.
// ABOUTME: Secrets are bcrypt-hashed at rest and compared on each request.

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// tokenPrefix marks warden static API tokens.
const tokenPrefix = "wdn"

// secretBytes is the entropy of the secret half of a static token.
const secretBytes = 24

// GenerateStaticToken creates a fresh static token for the given ID. It
// returns the full token (shown to the operator exactly once) and the bcrypt
// hash of the secret half for storage.
func GenerateStaticToken(id string) (token, hash string, err error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generating token secret: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(buf)

	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("hashing token secret: %w", err)
	}

	return fmt.Sprintf("%s_%s_%s", tokenPrefix, id, secret), string(hashed), nil
}

// ParseStaticToken splits a static token into its ID and secret halves.
func ParseStaticToken(token string) (id, secret string, err error) {
	parts := strings.SplitN(token, "_", 3)
	if len(parts) != 3 || parts[0] != tokenPrefix || parts[1] == "" || parts[2] == "" {
		return "", "", ErrInvalidToken
	}
	return parts[1], parts[2], nil
}

// VerifyStaticSecret compares a presented secret against its stored bcrypt hash.
func VerifyStaticSecret(hash, secret string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		return ErrInvalidToken
	}
	return nil
}

// IsStaticToken reports whether the bearer token looks like a warden static
// token rather than a JWT.
func IsStaticToken(token string) bool {
	return strings.HasPrefix(token, tokenPrefix+"_")
}
