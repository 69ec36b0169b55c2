package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/helpdesk-platform/helpdesk-service/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:    "2f6d1c6a-8e0b-4b6f-9f3a-9a1d52a9b001",
		Email: "a@x.com",
		Role:  domain.RoleAgent,
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("test-secret", time.Hour)
	token, exp, err := tm.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if time.Until(exp) < 59*time.Minute {
		t.Errorf("expiry too close: %v", exp)
	}

	claims, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "2f6d1c6a-8e0b-4b6f-9f3a-9a1d52a9b001" {
		t.Errorf("user id mismatch: %q", claims.UserID)
	}
	if claims.Email != "a@x.com" {
		t.Errorf("email mismatch: %q", claims.Email)
	}
	if claims.Role != domain.RoleAgent {
		t.Errorf("role mismatch: %q", claims.Role)
	}
}

func TestVerifyUniformFailure(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("test-secret", time.Hour)

	otherTM := NewTokenManager("other-secret", time.Hour)
	wrongSig, _, err := otherTM.Issue(testUser())
	if err != nil {
		t.Fatalf("issue with other secret: %v", err)
	}

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"malformed", "not-a-jwt"},
		{"truncated", "aaaa.bbbb"},
		{"wrong signature", wrongSig},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := tm.Verify(tc.token)
			if err != ErrInvalidToken {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
			if claims != nil {
				t.Errorf("expected nil claims, got %+v", claims)
			}
		})
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("test-secret", time.Hour)

	// Sign a token that expired an hour ago with the same secret.
	claims := &Claims{
		UserID: "u1",
		Email:  "a@x.com",
		Role:   domain.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := tm.Verify(expired); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestDefaultTTLIsSevenDays(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("test-secret", 0)
	_, exp, err := tm.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	want := time.Now().Add(7 * 24 * time.Hour)
	if diff := exp.Sub(want); diff > time.Minute || diff < -time.Minute {
		t.Errorf("expected ~7 day expiry, got %v", exp)
	}
}
