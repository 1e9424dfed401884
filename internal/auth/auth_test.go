package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"

	"hunarscan/internal/apperr"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer   abc  ", "abc", true},
		{"", "", false},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
	}
	for _, tc := range cases {
		got, err := BearerToken(tc.header)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("header %q: want=%q got=%q err=%v", tc.header, tc.want, got, err)
			}
			continue
		}
		if !apperr.Is(err, apperr.CodeUnauthenticated) {
			t.Fatalf("header %q: want unauthenticated, got %v", tc.header, err)
		}
	}
}

func TestJWTVerifierRoundTrip(t *testing.T) {
	v := NewJWTVerifier("secret", "HunarScan", time.Hour)
	token, err := v.IssueToken("uid-1", "a@example.com", "Asha")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	id, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.UID != "uid-1" || id.Email != "a@example.com" || id.Name != "Asha" {
		t.Fatalf("identity: %+v", id)
	}
}

func TestJWTVerifierExpired(t *testing.T) {
	v := NewJWTVerifier("secret", "HunarScan", time.Hour)
	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return issuedAt }
	token, err := v.IssueToken("uid-1", "", "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	v.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }

	_, err = v.Verify(context.Background(), token)
	if !apperr.Is(err, apperr.CodeUnauthenticated) {
		t.Fatalf("want unauthenticated, got %v", err)
	}
	if apperr.ReasonOf(err) != apperr.ReasonExpired {
		t.Fatalf("want expired reason, got %q", apperr.ReasonOf(err))
	}
	if apperr.PublicMessage(err) != MsgTokenExpired {
		t.Fatalf("message: %q", apperr.PublicMessage(err))
	}
}

func TestJWTVerifierRejectsForeignTokens(t *testing.T) {
	v := NewJWTVerifier("secret", "HunarScan", time.Hour)
	other := NewJWTVerifier("other-secret", "HunarScan", time.Hour)
	forged, err := other.IssueToken("uid-1", "", "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "uid-1", Issuer: "HunarScan"}})
	none, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	for name, token := range map[string]string{"wrong secret": forged, "alg none": none, "garbage": "not.a.token", "empty": ""} {
		_, err := v.Verify(context.Background(), token)
		if !apperr.Is(err, apperr.CodeUnauthenticated) {
			t.Fatalf("%s: want unauthenticated, got %v", name, err)
		}
		if apperr.ReasonOf(err) == apperr.ReasonExpired {
			t.Fatalf("%s: must not be reported as expired", name)
		}
	}
}

func TestJWTVerifierLookupFails(t *testing.T) {
	v := NewJWTVerifier("secret", "", time.Hour)
	if _, err := v.Lookup(context.Background(), "uid-1"); err == nil {
		t.Fatalf("lookup must fail without a user directory")
	}
}

type fakeTokenClient struct {
	token   *fbauth.Token
	err     error
	user    *fbauth.UserRecord
	userErr error
}

func (f *fakeTokenClient) VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error) {
	return f.token, f.err
}

func (f *fakeTokenClient) GetUser(ctx context.Context, uid string) (*fbauth.UserRecord, error) {
	return f.user, f.userErr
}

var errExpiredToken = errors.New("ID token has expired")

func newTestFirebaseVerifier(c *fakeTokenClient) *FirebaseVerifier {
	return &FirebaseVerifier{
		client:    c,
		isExpired: func(err error) bool { return errors.Is(err, errExpiredToken) },
	}
}

func TestFirebaseVerifierVerify(t *testing.T) {
	c := &fakeTokenClient{token: &fbauth.Token{UID: "u1", Claims: map[string]interface{}{"email": "u1@example.com", "name": "Uma"}}}
	v := newTestFirebaseVerifier(c)

	id, err := v.Verify(context.Background(), "tok")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.UID != "u1" || id.Email != "u1@example.com" || id.Name != "Uma" {
		t.Fatalf("identity: %+v", id)
	}

	c.err = errExpiredToken
	_, err = v.Verify(context.Background(), "tok")
	if apperr.ReasonOf(err) != apperr.ReasonExpired {
		t.Fatalf("want expired, got %v", err)
	}

	c.err = errors.New("bad signature")
	_, err = v.Verify(context.Background(), "tok")
	if !apperr.Is(err, apperr.CodeUnauthenticated) || apperr.ReasonOf(err) != "" {
		t.Fatalf("want plain unauthenticated, got %v", err)
	}

	if _, err := v.Verify(context.Background(), "  "); !apperr.Is(err, apperr.CodeUnauthenticated) {
		t.Fatalf("empty token: got %v", err)
	}
}

func TestFirebaseVerifierLookup(t *testing.T) {
	c := &fakeTokenClient{user: &fbauth.UserRecord{UserInfo: &fbauth.UserInfo{Email: "x@example.com", DisplayName: "Xavier"}}}
	v := newTestFirebaseVerifier(c)

	p, err := v.Lookup(context.Background(), "u1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if p.Email != "x@example.com" || p.DisplayName != "Xavier" {
		t.Fatalf("profile: %+v", p)
	}

	c.userErr = errors.New("user not found")
	if _, err := v.Lookup(context.Background(), "u1"); err == nil {
		t.Fatalf("want lookup error")
	}
}
