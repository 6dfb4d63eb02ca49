package auth

import (
	"errors"
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Hash must not equal the plaintext password")
	}

	if !CheckPassword("correct horse battery staple", hash) {
		t.Error("Expected matching password to verify")
	}
	if CheckPassword("wrong password", hash) {
		t.Error("Expected non-matching password to fail")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := New("test-secret", time.Hour)

	token, err := svc.Token("user-123")
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}

	userID, err := svc.Authenticate("Bearer " + token)
	if err != nil {
		t.Fatalf("Authenticate() failed: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("Expected user-123, got %s", userID)
	}

	// Scheme is case-insensitive.
	if _, err := svc.Authenticate("bearer " + token); err != nil {
		t.Errorf("Expected lowercase scheme to be accepted: %v", err)
	}
}

func TestAuthenticate_Failures(t *testing.T) {
	svc := New("test-secret", time.Hour)
	token, err := svc.Token("user-123")
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}

	other := New("other-secret", time.Hour)
	foreign, err := other.Token("user-123")
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}

	tests := []struct {
		name       string
		credential string
	}{
		{"empty credential", ""},
		{"missing scheme", token},
		{"wrong scheme", "Basic " + token},
		{"garbage token", "Bearer not.a.token"},
		{"wrong secret", "Bearer " + foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(tt.credential)
			if !errors.Is(err, ErrUnauthenticated) {
				t.Errorf("Expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestAuthenticate_Expired(t *testing.T) {
	svc := New("test-secret", time.Hour)

	minted := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return minted }

	token, err := svc.Token("user-123")
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}

	// Still valid just before expiry.
	svc.now = func() time.Time { return minted.Add(59 * time.Minute) }
	if _, err := svc.Authenticate("Bearer " + token); err != nil {
		t.Errorf("Expected token to be valid before expiry: %v", err)
	}

	// Rejected after expiry.
	svc.now = func() time.Time { return minted.Add(2 * time.Hour) }
	if _, err := svc.Authenticate("Bearer " + token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated for expired token, got %v", err)
	}
}
