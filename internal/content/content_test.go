package content

import (
	"strings"
	"testing"
)

func TestPrivacyPolicy(t *testing.T) {
	html, err := PrivacyPolicy()
	if err != nil {
		t.Fatalf("PrivacyPolicy: %v", err)
	}
	if !strings.Contains(string(html), "<h1>Privacy Policy</h1>") {
		t.Errorf("missing heading in %q", html)
	}
	if !strings.Contains(string(html), "<li>Your phone number</li>") {
		t.Errorf("missing list item in %q", html)
	}
}

func TestRenderEscapesRawHTML(t *testing.T) {
	html, err := Render([]byte("hello <script>alert(1)</script>"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(string(html), "<script>") {
		t.Errorf("raw html passed through: %q", html)
	}
}
