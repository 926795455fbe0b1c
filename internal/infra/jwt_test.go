package infra

import (
	"errors"
	"testing"
	"time"

	"cabcab/internal/types"
)

func TestJWTRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	userID := types.NewID()

	token, err := manager.Issue(userID, UserTypeDriver)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	identity, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if identity.UserID != userID {
		t.Errorf("user id = %s, want %s", identity.UserID, userID)
	}
	if identity.UserType != UserTypeDriver {
		t.Errorf("user type = %s, want driver", identity.UserType)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a", time.Hour).Issue(types.NewID(), UserTypePassenger)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := NewJWTManager("secret-b", time.Hour).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestJWTRejectsExpired(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute)
	token, err := manager.Issue(types.NewID(), UserTypePassenger)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := manager.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestJWTRejectsGarbage(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := manager.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("token %q: err = %v, want ErrInvalidToken", token, err)
		}
	}
}
