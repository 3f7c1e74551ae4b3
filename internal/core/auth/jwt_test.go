package auth_test

import (
	"errors"
	"testing"
	"time"

	"sticky-notes-api/internal/core/auth"
	"sticky-notes-api/internal/domain"
)

func newTestJWTer() *auth.JWTer {
	return &auth.JWTer{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		Issuer:        "sticky-notes-test",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	}
}

func testUser() *domain.User {
	return &domain.User{
		ID:        "user-1",
		Name:      "Alice",
		Email:     "alice@example.com",
		AvatarURL: "https://cdn.example.com/a.png",
	}
}

func TestIssuePairAndParse(t *testing.T) {
	j := newTestJWTer()
	pair, err := j.IssuePair(testUser())
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens to be set")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}

	claims, err := j.ParseAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccess: %v", err)
	}
	if claims.UID != "user-1" || claims.Email != "alice@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Avatar.URL != "https://cdn.example.com/a.png" {
		t.Fatalf("expected avatar url in claims, got %q", claims.Avatar.URL)
	}

	if _, err := j.ParseRefresh(pair.RefreshToken); err != nil {
		t.Fatalf("ParseRefresh: %v", err)
	}
}

func TestParseRejectsCrossSecretTokens(t *testing.T) {
	j := newTestJWTer()
	pair, err := j.IssuePair(testUser())
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	// access token 不能当 refresh token 用，反之亦然
	if _, err := j.ParseRefresh(pair.AccessToken); !errors.Is(err, auth.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if _, err := j.ParseAccess(pair.RefreshToken); !errors.Is(err, auth.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParseExpired(t *testing.T) {
	j := newTestJWTer()
	j.AccessTTL = -2 * time.Hour // 超出 60s leeway

	pair, err := j.IssuePair(testUser())
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if _, err := j.ParseAccess(pair.AccessToken); !errors.Is(err, auth.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseGarbage(t *testing.T) {
	j := newTestJWTer()
	if _, err := j.ParseAccess("not.a.token"); !errors.Is(err, auth.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParseWithoutSecret(t *testing.T) {
	j := newTestJWTer()
	j.AccessSecret = nil
	if _, err := j.ParseAccess("whatever"); !errors.Is(err, auth.ErrNoSecret) {
		t.Fatalf("expected ErrNoSecret, got %v", err)
	}
}

func TestIssueWithoutSecret(t *testing.T) {
	j := newTestJWTer()
	j.RefreshSecret = nil
	if _, err := j.IssuePair(testUser()); !errors.Is(err, auth.ErrGenerate) {
		t.Fatalf("expected ErrGenerate, got %v", err)
	}
}
