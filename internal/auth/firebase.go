package auth

import (
	"context"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	"hunarscan/internal/apperr"
	"hunarscan/internal/models"
)

// tokenClient is the subset of *auth.Client used here.
type tokenClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
	GetUser(ctx context.Context, uid string) (*fbauth.UserRecord, error)
}

type FirebaseVerifier struct {
	client    tokenClient
	isExpired func(error) bool
}

func NewFirebaseVerifier(client *fbauth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client, isExpired: fbauth.IsIDTokenExpired}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*models.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.Unauthenticated("auth.Verify", MsgNoToken, nil)
	}
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		if v.isExpired != nil && v.isExpired(err) {
			return nil, apperr.Expired("auth.Verify", MsgTokenExpired, err)
		}
		return nil, apperr.Unauthenticated("auth.Verify", MsgInvalidToken, err)
	}
	if decoded == nil || decoded.UID == "" {
		return nil, apperr.Unauthenticated("auth.Verify", MsgInvalidToken, nil)
	}
	return &models.Identity{
		UID:   decoded.UID,
		Email: claimString(decoded.Claims, "email"),
		Name:  claimString(decoded.Claims, "name"),
	}, nil
}

func (v *FirebaseVerifier) Lookup(ctx context.Context, uid string) (*models.IdentityProfile, error) {
	user, err := v.client.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil || user.UserInfo == nil {
		return &models.IdentityProfile{}, nil
	}
	return &models.IdentityProfile{
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}, nil
}
