package handler

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"

	"github.com/dukerupert/leadline/internal/auth"
	"github.com/dukerupert/leadline/internal/intake"
	"github.com/dukerupert/leadline/internal/monitoring"
	ws "github.com/dukerupert/leadline/internal/websocket"
)

// Broadcaster pushes change notifications to open dashboards.
type Broadcaster interface {
	Broadcast(msg ws.Message)
}

// IntakeForm is the state of the consultation form in the page footer.
type IntakeForm struct {
	Name        string
	PhoneNumber string
	Agreed      bool
	Error       string
	Notice      string
}

// Page is the data every template receives. Data holds the page-specific part.
type Page struct {
	Title         string
	CSRFField     template.HTML
	CSRFToken     string
	ContactPhone  string
	PrivacyPolicy template.HTML
	ShowIntake    bool
	Form          IntakeForm
	AdminEmail    string
	Data          any
}

// Renderer executes per-page template sets inside layout.html.
type Renderer struct {
	templates     map[string]*template.Template
	contactPhone  string
	privacyPolicy template.HTML
	logger        *slog.Logger
}

func NewRenderer(templates map[string]*template.Template, contactPhone string, privacyPolicy template.HTML, logger *slog.Logger) *Renderer {
	return &Renderer{
		templates:     templates,
		contactPhone:  contactPhone,
		privacyPolicy: privacyPolicy,
		logger:        logger,
	}
}

// Render fills in the shared fields of p and writes the page with status.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, p Page) {
	tmpl, ok := rn.templates[name]
	if !ok {
		rn.logger.Error("template not found", "name", name)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	p.CSRFField = csrf.TemplateField(r)
	p.CSRFToken = csrf.Token(r)
	p.ContactPhone = rn.contactPhone
	p.PrivacyPolicy = rn.privacyPolicy
	p.ShowIntake = intake.Visible(r.URL.Path)
	p.AdminEmail = auth.Email(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout.html", p); err != nil {
		rn.logger.Error("template render", "name", name, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// serverError logs err and reports it to sentry.
func serverError(logger *slog.Logger, r *http.Request, msg string, err error) {
	logger.Error(msg, "error", err, "path", r.URL.Path)
	monitoring.CaptureRequestError(r, err)
}
