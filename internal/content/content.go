// Package content renders the static copy shown on the marketing page.
package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"sync"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

//go:embed privacy.md
var privacyMarkdown []byte

// md escapes raw HTML in its input (WithUnsafe is not set).
var md = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

var (
	privacyOnce sync.Once
	privacyHTML template.HTML
	privacyErr  error
)

// Render converts markdown to HTML safe for direct template output.
func Render(src []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// PrivacyPolicy returns the rendered privacy policy. It is converted once.
func PrivacyPolicy() (template.HTML, error) {
	privacyOnce.Do(func() {
		privacyHTML, privacyErr = Render(privacyMarkdown)
	})
	return privacyHTML, privacyErr
}
