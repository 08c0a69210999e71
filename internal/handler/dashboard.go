package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dukerupert/leadline/internal/dashboard"
	"github.com/dukerupert/leadline/internal/export"
	"github.com/dukerupert/leadline/internal/listutil"
	"github.com/dukerupert/leadline/internal/metrics"
	"github.com/dukerupert/leadline/internal/model"
	"github.com/dukerupert/leadline/internal/store"
	ws "github.com/dukerupert/leadline/internal/websocket"
)

const (
	msgLoadFailed     = "Consultations could not be loaded."
	msgUpdateFailed   = "The status could not be updated."
	msgDeleteFailed   = "The request could not be deleted."
	msgUnknownStatus  = "Unknown status."
	msgNotFound       = "That request no longer exists."
	msgConfirmMissing = "Deletion was not confirmed."
)

// PageLink is one numbered link in the pagination bar.
type PageLink struct {
	Number  int
	URL     string
	Current bool
}

type dashboardView struct {
	Items     []model.Consultation
	Page      listutil.PageInfo
	Counts    dashboard.Counts
	Search    string
	Status    string
	Statuses  []model.Status
	Query     template.URL
	PageLinks []PageLink
	PrevURL   string
	NextURL   string
	ExportURL string
	Error     string
}

type DashboardHandler struct {
	records  dashboard.RecordStore
	hub      Broadcaster
	metrics  *metrics.Metrics
	renderer *Renderer
	loc      *time.Location
	logger   *slog.Logger
}

func NewDashboardHandler(records dashboard.RecordStore, hub Broadcaster, m *metrics.Metrics, renderer *Renderer, loc *time.Location, logger *slog.Logger) *DashboardHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardHandler{
		records:  records,
		hub:      hub,
		metrics:  m,
		renderer: renderer,
		loc:      loc,
		logger:   logger,
	}
}

func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
}

// Page renders one page of the filtered list. A load failure still renders
// the dashboard, empty and with a notice.
func (h *DashboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	c := dashboard.NewController(h.records)
	status := http.StatusOK
	q := r.URL.Query()
	errMsg := q.Get("error")

	if err := c.Load(r.Context()); err != nil {
		serverError(h.logger, r, "load dashboard", err)
		status = http.StatusInternalServerError
		errMsg = msgLoadFailed
	}
	c.ApplyQuery(q)

	h.renderer.Render(w, r, status, "dashboard.html", Page{
		Title: "Consultations",
		Data:  h.view(c, errMsg),
	})
}

func (h *DashboardHandler) view(c *dashboard.Controller, errMsg string) dashboardView {
	page := c.Page()
	v := dashboardView{
		Items:     c.PageItems(),
		Page:      page,
		Counts:    c.Counts(),
		Search:    c.SearchTerm(),
		Status:    c.StatusFilter(),
		Statuses:  model.Statuses,
		Query:     template.URL(c.Query().Encode()),
		ExportURL: exportURL(c),
		Error:     errMsg,
	}
	for _, n := range page.PageNumbers() {
		v.PageLinks = append(v.PageLinks, PageLink{Number: n, URL: pageURL(c, n), Current: n == page.Page})
	}
	if page.HasPrev() {
		v.PrevURL = pageURL(c, page.PrevPage())
	}
	if page.HasNext() {
		v.NextURL = pageURL(c, page.NextPage())
	}
	return v
}

func pageURL(c *dashboard.Controller, n int) string {
	q := c.Query()
	q.Del(dashboard.ParamPage)
	if n > 1 {
		q.Set(dashboard.ParamPage, strconv.Itoa(n))
	}
	return withQuery(DashboardPath, q)
}

func exportURL(c *dashboard.Controller) string {
	q := c.Query()
	q.Del(dashboard.ParamPage)
	return withQuery("/admin/export", q)
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// backToDashboard redirects to the dashboard with the filters the form was
// posted from, plus an error message when there is one.
func backToDashboard(w http.ResponseWriter, r *http.Request, errMsg string) {
	q := url.Values{}
	src := r.URL.Query()
	for _, key := range []string{dashboard.ParamSearch, dashboard.ParamStatus, dashboard.ParamPage} {
		if v := src.Get(key); v != "" {
			q.Set(key, v)
		}
	}
	if errMsg != "" {
		q.Set("error", errMsg)
	}
	http.Redirect(w, r, withQuery(DashboardPath, q), http.StatusSeeOther)
}

// UpdateStatus handles the per-row status select.
func (h *DashboardHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	status := model.Status(r.PostFormValue("status"))
	if err := h.updateStatus(r, id, status); err != nil {
		backToDashboard(w, r, updateMessage(err))
		return
	}
	backToDashboard(w, r, "")
}

// Delete handles the per-row delete button. The browser confirm dialog sets
// confirm=yes.
func (h *DashboardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	confirmed := r.PostFormValue("confirm") == "yes"
	if err := h.remove(r, id, confirmed); err != nil {
		backToDashboard(w, r, deleteMessage(err))
		return
	}
	backToDashboard(w, r, "")
}

// Export streams the visible subset, across all pages, as an xlsx file.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	c := dashboard.NewController(h.records)
	if err := c.Load(r.Context()); err != nil {
		serverError(h.logger, r, "load export", err)
		http.Error(w, msgLoadFailed, http.StatusInternalServerError)
		return
	}
	c.ApplyQuery(r.URL.Query())
	visible := c.Visible()

	var buf bytes.Buffer
	if err := export.Consultations(&buf, visible, h.loc); err != nil {
		serverError(h.logger, r, "write export", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	h.metrics.Exports.Inc()
	h.logger.Info("export", "rows", len(visible), "status", c.StatusFilter(), "search", c.SearchTerm())

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

type listResponse struct {
	Items  []model.Consultation `json:"items"`
	Page   listutil.PageInfo    `json:"page"`
	Counts dashboard.Counts     `json:"counts"`
	Search string               `json:"q"`
	Status string               `json:"status"`
}

// APIList returns the same page the dashboard would render for the query.
func (h *DashboardHandler) APIList(w http.ResponseWriter, r *http.Request) {
	c := dashboard.NewController(h.records)
	if err := c.Load(r.Context()); err != nil {
		serverError(h.logger, r, "load consultations", err)
		writeJSONError(w, http.StatusInternalServerError, msgLoadFailed)
		return
	}
	c.ApplyQuery(r.URL.Query())

	items := c.PageItems()
	if items == nil {
		items = []model.Consultation{}
	}
	writeJSON(w, http.StatusOK, listResponse{
		Items:  items,
		Page:   c.Page(),
		Counts: c.Counts(),
		Search: c.SearchTerm(),
		Status: c.StatusFilter(),
	})
}

func (h *DashboardHandler) APIUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var body struct {
		Status model.Status `json:"status"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<12)).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.updateStatus(r, id, body.Status); err != nil {
		writeJSONError(w, mutationStatus(err), updateMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": body.Status})
}

func (h *DashboardHandler) APIDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid id")
		return
	}

	confirmed := r.URL.Query().Get("confirm") == "true"
	if err := h.remove(r, id, confirmed); err != nil {
		writeJSONError(w, mutationStatus(err), deleteMessage(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DashboardHandler) updateStatus(r *http.Request, id int64, status model.Status) error {
	c := dashboard.NewController(h.records)
	err := c.UpdateStatus(r.Context(), id, status)
	switch {
	case err == nil:
		h.logger.Info("status updated", "id", id, "status", status)
		msg := ws.ConsultationEvent(ws.ActionUpdated, id)
		msg.Status = string(status)
		h.hub.Broadcast(msg)
	case errors.Is(err, dashboard.ErrInvalidStatus), errors.Is(err, store.ErrNotFound):
		h.logger.Warn("status update rejected", "id", id, "status", status, "error", err)
	default:
		serverError(h.logger, r, "update status", err)
	}
	return err
}

func (h *DashboardHandler) remove(r *http.Request, id int64, confirmed bool) error {
	c := dashboard.NewController(h.records)
	err := c.Remove(r.Context(), id, func() bool { return confirmed })
	switch {
	case err == nil:
		h.logger.Info("consultation deleted", "id", id)
		h.hub.Broadcast(ws.ConsultationEvent(ws.ActionDeleted, id))
	case errors.Is(err, dashboard.ErrNotConfirmed), errors.Is(err, store.ErrNotFound):
		h.logger.Warn("delete rejected", "id", id, "error", err)
	default:
		serverError(h.logger, r, "delete consultation", err)
	}
	return err
}

func mutationStatus(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrInvalidStatus), errors.Is(err, dashboard.ErrNotConfirmed):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func updateMessage(err error) string {
	switch {
	case errors.Is(err, dashboard.ErrInvalidStatus):
		return msgUnknownStatus
	case errors.Is(err, store.ErrNotFound):
		return msgNotFound
	default:
		return msgUpdateFailed
	}
}

func deleteMessage(err error) string {
	switch {
	case errors.Is(err, dashboard.ErrNotConfirmed):
		return msgConfirmMissing
	case errors.Is(err, store.ErrNotFound):
		return msgNotFound
	default:
		return msgDeleteFailed
	}
}
