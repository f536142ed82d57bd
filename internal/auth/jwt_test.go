package auth_test

import (
	"testing"
	"time"

	"github.com/projectsoft/obras-api/internal/auth"
)

const testSecret = "test-secret-at-least-32-characters!"

func TestTokenRoundTrip(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)

	signed, err := tokens.Generate("user-123", []string{"supervisor"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	subject, err := tokens.Verify(signed)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if subject != "user-123" {
		t.Errorf("Subject = %q, want %q", subject, "user-123")
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, -time.Minute)

	signed, err := tokens.Generate("user-123", nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := tokens.Verify(signed); err == nil {
		t.Error("Expired token verified")
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	other := auth.NewTokenManager("another-secret-at-least-32-chars!!", time.Hour)

	signed, err := tokens.Generate("user-123", nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := other.Verify(signed); err == nil {
		t.Error("Token signed with a different secret verified")
	}
}

func TestVerify_Garbage(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := tokens.Verify(token); err == nil {
			t.Errorf("Verify(%q) succeeded, want error", token)
		}
	}
}
