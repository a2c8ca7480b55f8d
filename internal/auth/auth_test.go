package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestJWTRoundTrip(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New()

	token, err := GenerateJWT(secret, userID, "alice@example.com", "bidder", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	claims, err := ParseJWT(secret, token)
	if err != nil {
		t.Fatalf("ParseJWT failed: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user id = %s, want %s", claims.UserID, userID)
	}
	if claims.Email != "alice@example.com" || claims.Role != "bidder" {
		t.Errorf("unexpected claims %+v", claims)
	}
	if claims.SessionID == "" {
		t.Error("token should carry a session id")
	}
}

func TestParseJWTRejects(t *testing.T) {
	token, err := GenerateJWT("secret-a", uuid.New(), "a@example.com", "bidder", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	t.Run("wrong secret", func(t *testing.T) {
		if _, err := ParseJWT("secret-b", token); err == nil {
			t.Error("token signed with a different secret should fail")
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if _, err := ParseJWT("secret-a", "not.a.token"); err == nil {
			t.Error("malformed token should fail")
		}
	})

	t.Run("expired", func(t *testing.T) {
		claims := Claims{
			UserID: uuid.New(),
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}
		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret-a"))
		if err != nil {
			t.Fatalf("signing failed: %v", err)
		}
		if _, err := ParseJWT("secret-a", expired); err == nil {
			t.Error("expired token should fail")
		}
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPassword(hash, "correct-horse") {
		t.Error("correct password should verify")
	}
	if CheckPassword(hash, "wrong-horse") {
		t.Error("wrong password should not verify")
	}
}

func TestPasswordTooShort(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Error("passwords under the minimum length should be rejected")
	}
}
