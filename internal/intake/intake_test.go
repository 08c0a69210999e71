package intake

import (
	"errors"
	"testing"
)

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"010-1234-5678", "010-1234-5678"},
		{"010 1234 5678", "01012345678"},
		{"+82 (10) 1234-5678", "82101234-5678"},
		{"abc", ""},
		{"", ""},
		{"０１０", ""},
	}
	for _, tt := range tests {
		if got := SanitizePhone(tt.in); got != tt.want {
			t.Errorf("SanitizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		sub  Submission
		want error
	}{
		{"consent given", Submission{Name: "Kim", PhoneNumber: "010", Agreed: true}, nil},
		{"consent missing", Submission{Name: "Kim", PhoneNumber: "010"}, ErrConsentRequired},
		{"empty fields with consent", Submission{Agreed: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.sub.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRecord(t *testing.T) {
	rec := Submission{Name: "  Kim Minji ", PhoneNumber: "010.1234.5678", Agreed: true}.Record()

	if rec.Name != "Kim Minji" {
		t.Errorf("Name = %q, want %q", rec.Name, "Kim Minji")
	}
	if rec.PhoneNumber != "01012345678" {
		t.Errorf("PhoneNumber = %q, want %q", rec.PhoneNumber, "01012345678")
	}
	if !rec.AgreedToPrivacyPolicy {
		t.Error("AgreedToPrivacyPolicy = false, want true")
	}
}

func TestVisible(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/", true},
		{"/privacy", true},
		{"/administrator", true},
		{"/admin", false},
		{"/admin/", false},
		{"/admin/dashboard", false},
		{"/admin/login", false},
	}
	for _, tt := range tests {
		if got := Visible(tt.path); got != tt.want {
			t.Errorf("Visible(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
