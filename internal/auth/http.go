// ABOUTME: HTTP middleware for bearer-token authentication on API endpoints.
// ABOUTME: Accepts HS256 JWTs or static wdn_ tokens checked against stored hashes.

package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wardenhq/warden/internal/store"
)

// TokenLookup resolves stored static-token records by ID.
type TokenLookup interface {
	GetToken(ctx context.Context, id string) (*store.APIToken, error)
}

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// Middleware returns an HTTP middleware that requires a valid bearer token.
// Static wdn_ tokens are checked against the lookup's bcrypt hashes; anything
// else is treated as a JWT and checked against the verifier. Either verifier
// or tokens may be nil when that mechanism is not configured.
func Middleware(verifier TokenVerifier, tokens TokenLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				http.Error(w, errMsg, http.StatusUnauthorized)
				return
			}

			if err := verify(r.Context(), token, verifier, tokens); err != nil {
				logger.Warn("rejected API request", "path", r.URL.Path, "error", err)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func verify(ctx context.Context, token string, verifier TokenVerifier, tokens TokenLookup) error {
	if IsStaticToken(token) {
		if tokens == nil {
			return ErrInvalidToken
		}
		id, secret, err := ParseStaticToken(token)
		if err != nil {
			return err
		}
		rec, err := tokens.GetToken(ctx, id)
		if err != nil {
			return ErrInvalidToken
		}
		return VerifyStaticSecret(rec.SecretHash, secret)
	}

	if verifier == nil {
		return ErrInvalidToken
	}
	_, err := verifier.Verify(token)
	return err
}
