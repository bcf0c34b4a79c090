package utils

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", 42, "maria", "MANAGER", 60, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseAccessToken("s3cret", tok.Token)
	if err != nil {
		t.Fatal(err)
	}
	if id, _ := claims.UserID(); id != 42 || claims.Role != "MANAGER" || claims.Username != "maria" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestAccessTokenRejected(t *testing.T) {
	good, _ := NewAccessToken("s3cret", 1, "a", "STAFF", 60, time.Now())
	expired, _ := NewAccessToken("s3cret", 1, "a", "STAFF", 60, time.Now().Add(-2*time.Hour))
	cases := map[string]struct{ secret, raw string }{
		"wrong secret": {"other", good.Token},
		"expired":      {"s3cret", expired.Token},
		"garbage":      {"s3cret", "not.a.jwt"},
	}
	for name, tc := range cases {
		if _, err := ParseAccessToken(tc.secret, tc.raw); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckPassword(hash, "hunter2"); err != nil {
		t.Fatalf("correct password: %v", err)
	}
	if err := CheckPassword(hash, "hunter3"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("wrong password: %v", err)
	}
}
