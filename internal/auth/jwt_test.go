package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-jwt-secret-that-is-32-chars-!"

func newTestTokenService(t *testing.T, issuer string) *TokenService {
	t.Helper()
	s, err := NewTokenService(testSecret, issuer)
	if err != nil {
		t.Fatalf("NewTokenService() error: %v", err)
	}
	return s
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	if _, err := NewTokenService("", ""); err == nil {
		t.Error("NewTokenService() expected error without secret")
	}
}

func TestGenerateAndValidate(t *testing.T) {
	s := newTestTokenService(t, "c4")

	token, err := s.Generate("user-1", "Alice", time.Minute)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	claims, err := s.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("Subject = %q, want user-1", claims.Subject)
	}
	if claims.Name != "Alice" {
		t.Errorf("Name = %q, want Alice", claims.Name)
	}
}

func TestValidate_Expired(t *testing.T) {
	s := newTestTokenService(t, "")

	token, err := s.Generate("user-1", "", -time.Minute)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if _, err := s.Validate(token); err == nil {
		t.Error("Validate() expected error for expired token")
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := newTestTokenService(t, "").Generate("user-1", "", time.Minute)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	other, err := NewTokenService("another-secret-that-is-32-chars-long", "")
	if err != nil {
		t.Fatalf("NewTokenService() error: %v", err)
	}
	if _, err := other.Validate(token); err == nil {
		t.Error("Validate() expected error for foreign signature")
	}
}

func TestValidate_WrongIssuer(t *testing.T) {
	token, err := newTestTokenService(t, "elsewhere").Generate("user-1", "", time.Minute)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if _, err := newTestTokenService(t, "c4").Validate(token); err == nil {
		t.Error("Validate() expected error for wrong issuer")
	}
}

func TestValidate_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error: %v", err)
	}
	if _, err := newTestTokenService(t, "").Validate(token); err == nil {
		t.Error("Validate() expected error for HS512 token")
	}
}

func TestValidate_RequiresSubject(t *testing.T) {
	s := newTestTokenService(t, "")
	token, err := s.Generate("", "Nobody", time.Minute)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if _, err := s.Validate(token); err == nil {
		t.Error("Validate() expected error without subject")
	}
}
