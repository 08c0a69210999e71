package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dukerupert/leadline/internal/intake"
	"github.com/dukerupert/leadline/internal/metrics"
	"github.com/dukerupert/leadline/internal/model"
	ws "github.com/dukerupert/leadline/internal/websocket"
)

// ConsultationCreator stores new consultation requests.
type ConsultationCreator interface {
	Create(ctx context.Context, nc model.NewConsultation) (*model.Consultation, error)
}

const notifyTimeout = 15 * time.Second

// Notifier tells someone about a new consultation request.
type Notifier interface {
	NotifyConsultation(ctx context.Context, rec *model.Consultation) error
}

// SiteHandler serves the public pages and the intake form.
type SiteHandler struct {
	consultations ConsultationCreator
	hub           Broadcaster
	metrics       *metrics.Metrics
	renderer      *Renderer
	notifier      Notifier
	pending       sync.WaitGroup
	logger        *slog.Logger
}

func NewSiteHandler(consultations ConsultationCreator, hub Broadcaster, m *metrics.Metrics, renderer *Renderer, logger *slog.Logger) *SiteHandler {
	return &SiteHandler{
		consultations: consultations,
		hub:           hub,
		metrics:       m,
		renderer:      renderer,
		logger:        logger,
	}
}

// SetNotifier enables new-lead notifications. They are sent in the
// background, outlive the request, and a failure is only logged.
func (h *SiteHandler) SetNotifier(n Notifier) {
	h.notifier = n
}

// Wait blocks until in-flight notifications are done.
func (h *SiteHandler) Wait() {
	h.pending.Wait()
}

func (h *SiteHandler) Home(w http.ResponseWriter, r *http.Request) {
	var form IntakeForm
	if r.URL.Query().Get("consultation") == "success" {
		form.Notice = intake.MsgSubmitted
	}
	h.renderHome(w, r, http.StatusOK, form)
}

func (h *SiteHandler) Privacy(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "privacy.html", Page{Title: "Privacy Policy"})
}

func (h *SiteHandler) renderHome(w http.ResponseWriter, r *http.Request, status int, form IntakeForm) {
	h.renderer.Render(w, r, status, "index.html", Page{Title: "Free consultation", Form: form})
}

// Submit handles the footer form. Failures re-render the page with the
// fields kept; success redirects so a reload does not resubmit.
func (h *SiteHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	sub := intake.Submission{
		Name:        r.FormValue("name"),
		PhoneNumber: r.FormValue("phone_number"),
		Agreed:      r.FormValue("agreed") != "",
	}.Normalize()
	form := IntakeForm{Name: sub.Name, PhoneNumber: sub.PhoneNumber, Agreed: sub.Agreed}

	if err := sub.Validate(); err != nil {
		form.Error = intake.MsgConsentRequired
		h.renderHome(w, r, http.StatusUnprocessableEntity, form)
		return
	}

	if _, err := h.create(r, sub); err != nil {
		form.Error = intake.MsgSubmitFailed
		h.renderHome(w, r, http.StatusInternalServerError, form)
		return
	}

	http.Redirect(w, r, "/?consultation=success", http.StatusSeeOther)
}

// SubmitJSON is the JSON variant of Submit.
func (h *SiteHandler) SubmitJSON(w http.ResponseWriter, r *http.Request) {
	var sub intake.Submission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&sub); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	sub = sub.Normalize()

	if err := sub.Validate(); errors.Is(err, intake.ErrConsentRequired) {
		writeJSONError(w, http.StatusUnprocessableEntity, intake.MsgConsentRequired)
		return
	}

	rec, err := h.create(r, sub)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, intake.MsgSubmitFailed)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *SiteHandler) create(r *http.Request, sub intake.Submission) (*model.Consultation, error) {
	rec, err := h.consultations.Create(r.Context(), sub.Record())
	if err != nil {
		serverError(h.logger, r, "create consultation", err)
		return nil, err
	}
	h.metrics.Submissions.Inc()
	h.hub.Broadcast(ws.ConsultationEvent(ws.ActionCreated, rec.ID))
	h.logger.Info("consultation submitted", "id", rec.ID)
	if h.notifier != nil {
		h.pending.Add(1)
		go h.notify(context.WithoutCancel(r.Context()), rec)
	}
	return rec, nil
}

func (h *SiteHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SiteHandler) notify(ctx context.Context, rec *model.Consultation) {
	defer h.pending.Done()
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if err := h.notifier.NotifyConsultation(ctx, rec); err != nil {
		h.logger.Warn("notify consultation", "id", rec.ID, "error", err)
	}
}
