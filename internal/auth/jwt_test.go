package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erazemk/najdeno/internal/model"
)

var alice = model.Identity{UserID: 7, Username: "alice", Role: model.RoleStaff}

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, alice, time.Now())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if got := claims.Identity(); got != alice {
		t.Errorf("expected identity %+v, got %+v", alice, got)
	}
	if claims.Subject != "7" {
		t.Errorf("expected subject '7', got %q", claims.Subject)
	}
	if claims.ID == "" {
		t.Error("expected a token ID")
	}
}

func TestTokensHaveDistinctIDs(t *testing.T) {
	now := time.Now()
	t1, _ := GenerateToken("s", alice, now)
	t2, _ := GenerateToken("s", alice, now)

	c1, _ := ValidateToken("s", t1)
	c2, _ := ValidateToken("s", t2)
	if c1.ID == c2.ID {
		t.Error("expected distinct token IDs")
	}
}

func TestValidateTokenRejects(t *testing.T) {
	valid, _ := GenerateToken("secret1", alice, time.Now())
	expired, _ := GenerateToken("secret1", alice, time.Now().Add(-2*TokenTTL))

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	foreignSigned, _ := foreign.SignedString([]byte("secret1"))

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", "secret2", valid},
		{"expired", "secret1", expired},
		{"other issuer", "secret1", foreignSigned},
		{"garbage", "secret1", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateToken(tt.secret, tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestGenerateTokenRequiresUser(t *testing.T) {
	if _, err := GenerateToken("s", model.Identity{}, time.Now()); err == nil {
		t.Error("expected error for empty identity")
	}
}

func TestTokenExpiry(t *testing.T) {
	now := time.Now()
	token, _ := GenerateToken("s", alice, now)
	claims, _ := ValidateToken("s", token)

	diff := now.Add(TokenTTL).Sub(claims.ExpiresAt.Time)
	if diff < -time.Second || diff > time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}
