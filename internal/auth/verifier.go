// Package auth resolves bearer credentials to caller identities.
package auth

import (
	"context"
	"strings"

	"hunarscan/internal/apperr"
	"hunarscan/internal/models"
)

const (
	MsgNoToken      = "Unauthorized: No token provided"
	MsgTokenExpired = "Unauthorized: Token expired"
	MsgInvalidToken = "Unauthorized: Invalid token"
)

// Verifier is the identity provider contract. Verify fails closed with an
// apperr Unauthenticated error; Lookup is best-effort and callers must not
// abort on its failure.
type Verifier interface {
	Verify(ctx context.Context, token string) (*models.Identity, error)
	Lookup(ctx context.Context, uid string) (*models.IdentityProfile, error)
}

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", apperr.Unauthenticated("auth.BearerToken", MsgNoToken, nil)
	}
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", apperr.Unauthenticated("auth.BearerToken", MsgNoToken, nil)
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", apperr.Unauthenticated("auth.BearerToken", MsgNoToken, nil)
	}
	return token, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
