package handler

import (
	"html/template"
	"time"

	"github.com/dukerupert/leadline/internal/model"
)

const timeLayout = "2006-01-02 15:04"

// TemplateFuncs are the helpers available to every page.
func TemplateFuncs(loc *time.Location) template.FuncMap {
	if loc == nil {
		loc = time.UTC
	}
	return template.FuncMap{
		"statusLabel": func(s model.Status) string { return s.Label() },
		"formatTime":  func(t time.Time) string { return t.In(loc).Format(timeLayout) },
	}
}
