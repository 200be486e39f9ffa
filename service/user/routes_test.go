package user

import (
	"strings"
	"testing"
)

func TestGenerateRefreshTokenFormat(t *testing.T) {
	token, err := generateRefreshToken(42)
	if err != nil {
		t.Fatalf("generating refresh token: %v", err)
	}

	parts := strings.SplitN(token, "_", 3)
	if len(parts) != 3 {
		t.Fatalf("expected userID_random_signature, got %q", token)
	}
	if parts[0] != "42" {
		t.Errorf("expected user ID prefix 42, got %q", parts[0])
	}
	// 32 random bytes hex-encoded
	if len(parts[1]) != 64 {
		t.Errorf("expected 64 hex chars of entropy, got %d", len(parts[1]))
	}
	if len(parts[2]) != 64 {
		t.Errorf("expected 64 hex chars of HMAC-SHA256, got %d", len(parts[2]))
	}
}

func TestGenerateRefreshTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := generateRefreshToken(7)
		if err != nil {
			t.Fatalf("generating refresh token: %v", err)
		}
		if seen[token] {
			t.Fatal("duplicate refresh token generated")
		}
		seen[token] = true
	}
}

func TestValidateWorkingHours(t *testing.T) {
	tests := []struct {
		hours   string
		wantErr bool
	}{
		{"", false},
		{"09:00", false},
		{"09:00,10:30,14:00", false},
		{"9am", true},
		{"09:00,25:00", true},
		{"09:00,,10:00", true},
	}
	for _, tt := range tests {
		err := validateWorkingHours(tt.hours)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateWorkingHours(%q) error = %v, want error %v", tt.hours, err, tt.wantErr)
		}
	}
}
