package validators

import (
	"context"
	"testing"
)

func TestEmailDomain(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"user@example.com", "example.com", true},
		{"a@b@example.org", "example.org", true},
		{"user@", "", false},
		{"@example.com", "", false},
		{"nodomain", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := emailDomain(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("emailDomain(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestIsEmailDomainValidMalformed(t *testing.T) {
	for _, email := range []string{"user@", "plain", ""} {
		if IsEmailDomainValid(context.Background(), email) {
			t.Errorf("IsEmailDomainValid(%q) = true, want false", email)
		}
	}
}
