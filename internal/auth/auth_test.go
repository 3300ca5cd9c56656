package auth

import (
	"errors"
	"testing"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "s3cret-password" {
		t.Fatal("HashPassword() returned the plaintext")
	}

	if err := VerifyPassword(hash, "s3cret-password"); err != nil {
		t.Errorf("VerifyPassword() error = %v, want nil", err)
	}
	if err := VerifyPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("VerifyPassword(wrong) error = %v, want ErrInvalidCredentials", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := SignToken(testSecret, "u1", "user@example.com")
	if err != nil {
		t.Fatalf("SignToken() error = %v", err)
	}

	claims, err := VerifyToken(testSecret, token)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if claims.Subject != "u1" {
		t.Errorf("Subject = %q, want u1", claims.Subject)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("Email = %q, want user@example.com", claims.Email)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Fatal("missing issued-at or expiry claim")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != TokenTTL {
		t.Errorf("token lifetime = %v, want %v", got, TokenTTL)
	}
}

func TestVerifyTokenRejectsBadInput(t *testing.T) {
	token, err := SignToken(testSecret, "u1", "user@example.com")
	if err != nil {
		t.Fatalf("SignToken() error = %v", err)
	}

	if _, err := VerifyToken("another-secret-another-secret-xx", token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyToken(wrong secret) error = %v, want ErrInvalidToken", err)
	}
	if _, err := VerifyToken(testSecret, "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyToken(garbage) error = %v, want ErrInvalidToken", err)
	}
	if _, err := VerifyToken(testSecret, ""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyToken(empty) error = %v, want ErrInvalidToken", err)
	}
}
