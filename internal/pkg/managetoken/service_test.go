package managetoken

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGenerateValidateRoundTrip(t *testing.T) {
	svc := NewHMACService("test-secret", time.Hour)
	id := uuid.New()

	token, err := svc.Generate(id)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	got, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got != id {
		t.Errorf("subscription id = %s, want %s", got, id)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewHMACService("secret-a", time.Hour).Generate(uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewHMACService("secret-b", time.Hour).Validate(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("error = %v, want ErrTokenInvalid", err)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := NewHMACService("test-secret", time.Hour)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := svc.Generate(uuid.New())
	if err != nil {
		t.Fatal(err)
	}

	fresh := NewHMACService("test-secret", time.Hour)
	if _, err := fresh.Validate(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("error = %v, want ErrTokenExpired", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewHMACService("test-secret", time.Hour)
	if _, err := svc.Validate("not.a.token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("error = %v, want ErrTokenInvalid", err)
	}
}
