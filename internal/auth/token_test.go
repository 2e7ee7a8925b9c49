package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIssueAndParseToken(t *testing.T) {
	secret := []byte("secret")
	issued, err := IssueToken(secret, Claims{
		Sub:  "user-1",
		Name: "Avery",
		JTI:  "jti-1",
		Exp:  time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	claims, err := ParseToken(secret, issued)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Sub != "user-1" || claims.Name != "Avery" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	secret := []byte("secret")
	issued, err := IssueToken(secret, Claims{
		Sub:  "user-1",
		Name: "Avery",
		JTI:  "jti-1",
		Exp:  time.Now().Add(-time.Minute).Unix(),
	})
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	_, err = ParseToken(secret, issued)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("ParseToken() error = %v, want ErrExpiredToken", err)
	}
}

func TestParseTokenRejectsTampering(t *testing.T) {
	issued, err := IssueToken([]byte("secret"), NewClaims("user-1", "", "jti-1", time.Now(), time.Hour))
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	unsigned, _, _ := strings.Cut(issued, ".")
	cases := map[string]string{
		"wrong secret": issued,
		"no signature": unsigned,
		"extra part":   issued + ".x",
		"garbage":      "not-a-token",
	}
	for name, token := range cases {
		secret := []byte("secret")
		if name == "wrong secret" {
			secret = []byte("other")
		}
		if _, err := ParseToken(secret, token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: ParseToken() error = %v, want ErrInvalidToken", name, err)
		}
	}
}

func TestNewClaimsDefaultsName(t *testing.T) {
	now := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	claims := NewClaims("user-1", "", "jti-1", now, time.Minute)
	if claims.Name != "user-1" {
		t.Fatalf("Name = %q, want user-1", claims.Name)
	}
	if claims.Exp != now.Add(time.Minute).Unix() {
		t.Fatalf("Exp = %d", claims.Exp)
	}
}

func TestIssueTokenRequiresSubject(t *testing.T) {
	if _, err := IssueToken([]byte("secret"), Claims{JTI: "j", Exp: 1}); err == nil {
		t.Fatal("expected IssueToken() to fail without a subject")
	}
}

func TestUserIDFromContext(t *testing.T) {
	if _, err := UserID(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("UserID() error = %v, want ErrUnauthenticated", err)
	}
	if _, err := UserID(WithUser(context.Background(), "  ")); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("UserID(blank) error = %v, want ErrUnauthenticated", err)
	}
	got, err := UserID(WithUser(context.Background(), "user-1"))
	if err != nil || got != "user-1" {
		t.Fatalf("UserID() = %q, %v", got, err)
	}
	if ErrUnauthenticated.Error() != "login required" {
		t.Fatalf("unexpected message %q", ErrUnauthenticated.Error())
	}
}
