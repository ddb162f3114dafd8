package client

import (
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/xwartz/cursor-api/pkg/api"
	"github.com/xwartz/cursor-api/pkg/debug"
)

// NormalizeToken reduces a session token to its JWT tail. Tokens copied
// from browser sessions arrive as "<user>::<jwt>", sometimes with the
// separator URL-encoded as "%3A%3A"; only the JWT part is sent upstream.
func NormalizeToken(raw string) (string, error) {
	token := strings.TrimSpace(raw)
	if token == "" {
		return "", api.NewValidationError("token", "token must not be empty")
	}

	token = strings.ReplaceAll(token, "%3A%3A", "::")
	if idx := strings.LastIndex(token, "::"); idx >= 0 {
		token = token[idx+2:]
	}
	if token == "" {
		return "", api.NewValidationError("token", "token has no JWT segment")
	}
	return token, nil
}

// warnIfExpired parses the token's claims without verifying the signature
// and warns when the expiry has passed. An unparsable token is only a
// debug-level event; the backend is the authority on validity.
func warnIfExpired(token string) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		debug.Log("client", "token is not a parsable JWT", "error", err.Error())
		return
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}
	if exp.Before(time.Now()) {
		slog.Warn("session token is expired; requests will likely be rejected",
			"expired_at", exp.Time.Format(time.RFC3339))
	}
}
