package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestJWTManager_GenerateAndParse(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)
	userID := uuid.New()
	token, err := manager.GenerateToken(userID, "user@example.com", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := manager.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	got, err := claims.UserID()
	if err != nil || got != userID {
		t.Fatalf("expected user id %s, got %s (%v)", userID, got, err)
	}
	if claims.Email != "user@example.com" || claims.Role != "admin" || claims.Issuer != Issuer {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := manager.ParseToken(token + "tampered"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestJWTManager_EmptySecret(t *testing.T) {
	manager := NewJWTManager("", time.Hour)
	if _, err := manager.GenerateToken(uuid.New(), "user@example.com", "user"); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
}

func TestJWTManager_DefaultTTL(t *testing.T) {
	if got := NewJWTManager("secret", 0).TTL(); got != 24*time.Hour {
		t.Fatalf("expected default ttl of 24h, got %s", got)
	}
}

func TestJWTManager_Expired(t *testing.T) {
	manager := NewJWTManager("secret", time.Minute)
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return issued }

	token, err := manager.GenerateToken(uuid.New(), "user@example.com", "user")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := manager.ParseToken(token); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}

	manager.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := manager.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestJWTManager_RejectsForeignClaims(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)
	sign := func(claims Claims) string {
		t.Helper()
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return token
	}
	expiry := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := map[string]string{
		"other issuer": sign(Claims{RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "someone-else", Subject: uuid.NewString(), ExpiresAt: expiry,
		}}),
		"subject not a uuid": sign(Claims{RegisteredClaims: jwt.RegisteredClaims{
			Issuer: Issuer, Subject: "user-1", ExpiresAt: expiry,
		}}),
		"no expiry": sign(Claims{RegisteredClaims: jwt.RegisteredClaims{
			Issuer: Issuer, Subject: uuid.NewString(),
		}}),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := manager.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
