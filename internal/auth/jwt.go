package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hunarscan/internal/apperr"
	"hunarscan/internal/models"
)

// Claims is the HS256 token body used by local and test deployments.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier validates locally signed HS256 tokens. It has no user
// directory, so Lookup always reports the uid as unknown.
type JWTVerifier struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTVerifier(secret, issuer string, ttl time.Duration) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// IssueToken signs an access token for uid.
func (v *JWTVerifier) IssueToken(uid, email, name string) (string, error) {
	now := v.now()
	claims := &Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    v.issuer,
			Subject:   uid,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (*models.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.Unauthenticated("auth.Verify", MsgNoToken, nil)
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now), jwt.WithIssuer(v.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Expired("auth.Verify", MsgTokenExpired, err)
		}
		return nil, apperr.Unauthenticated("auth.Verify", MsgInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, apperr.Unauthenticated("auth.Verify", MsgInvalidToken, nil)
	}
	return &models.Identity{UID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}

func (v *JWTVerifier) Lookup(ctx context.Context, uid string) (*models.IdentityProfile, error) {
	return nil, fmt.Errorf("user %s: no user directory for jwt provider", uid)
}
