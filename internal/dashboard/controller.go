// Package dashboard holds the admin view of consultation requests: the loaded
// record set, the active search and status filters, and the pagination cursor.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dukerupert/leadline/internal/listutil"
	"github.com/dukerupert/leadline/internal/model"
)

// PageSize is the fixed number of rows per dashboard page.
const PageSize = 10

// FilterAll disables the status filter.
const FilterAll = "all"

var (
	ErrInvalidStatus = errors.New("invalid status")
	ErrNotConfirmed  = errors.New("deletion not confirmed")
)

// RecordStore is the remote table the controller reads from and mutates.
type RecordStore interface {
	List(ctx context.Context) ([]model.Consultation, error)
	UpdateStatus(ctx context.Context, id int64, status model.Status) error
	Delete(ctx context.Context, id int64) error
}

// Counts are per-status totals over the unfiltered record set.
type Counts struct {
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Completed int `json:"completed"`
}

// Controller owns the in-memory record list. It is not safe for concurrent
// use; handlers build one per request.
type Controller struct {
	store   RecordStore
	records []model.Consultation
	search  string
	status  string
	page    int
}

func NewController(store RecordStore) *Controller {
	return &Controller{store: store, status: FilterAll, page: 1}
}

// Load replaces local state with every record, newest first. On failure the
// list is left empty.
func (c *Controller) Load(ctx context.Context) error {
	records, err := c.store.List(ctx)
	if err != nil {
		c.records = nil
		return fmt.Errorf("load consultations: %w", err)
	}
	for i := range records {
		records[i].Status = model.NormalizeStatus(string(records[i].Status))
	}
	c.records = records
	return nil
}

func (c *Controller) SetSearchTerm(term string) {
	c.search = term
}

// SetStatusFilter accepts "all" or one of the statuses; anything else means "all".
func (c *Controller) SetStatusFilter(filter string) {
	if !model.Status(filter).Valid() {
		filter = FilterAll
	}
	c.status = filter
}

// SetPage moves the cursor, clamped to [1, TotalPages].
func (c *Controller) SetPage(n int) {
	c.page = listutil.Clamp(n, 1, c.TotalPages())
}

func (c *Controller) SearchTerm() string   { return c.search }
func (c *Controller) StatusFilter() string { return c.status }

// Records returns a copy of the full, unfiltered record set.
func (c *Controller) Records() []model.Consultation {
	return slices.Clone(c.records)
}

// Visible returns the records matching the current search and status filter.
func (c *Controller) Visible() []model.Consultation {
	visible := make([]model.Consultation, 0, len(c.records))
	for _, r := range c.records {
		if matchesSearch(r, c.search) && matchesStatus(r, c.status) {
			visible = append(visible, r)
		}
	}
	return visible
}

func (c *Controller) TotalPages() int {
	return listutil.NewPageInfo(1, PageSize, len(c.Visible())).TotalPages
}

// Page returns pagination metadata for the visible subset. The cursor is
// re-clamped because filters may have shrunk the subset since SetPage.
func (c *Controller) Page() listutil.PageInfo {
	return listutil.NewPageInfo(c.page, PageSize, len(c.Visible()))
}

// PageItems returns the visible records on the current page.
func (c *Controller) PageItems() []model.Consultation {
	visible := c.Visible()
	return listutil.Slice(visible, listutil.NewPageInfo(c.page, PageSize, len(visible)))
}

func (c *Controller) Counts() Counts {
	var counts Counts
	for _, r := range c.records {
		switch r.Status {
		case model.StatusApproved:
			counts.Approved++
		case model.StatusCompleted:
			counts.Completed++
		default:
			counts.Pending++
		}
	}
	return counts
}

// UpdateStatus writes the new status to the store, then patches the local
// entry. Local state is untouched when the store call fails.
func (c *Controller) UpdateStatus(ctx context.Context, id int64, status model.Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if err := c.store.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	for i := range c.records {
		if c.records[i].ID == id {
			c.records[i].Status = status
			break
		}
	}
	return nil
}

// Remove asks confirm first and deletes only on a yes. The local entry is
// dropped after the store call succeeds.
func (c *Controller) Remove(ctx context.Context, id int64, confirm func() bool) error {
	if confirm == nil || !confirm() {
		return ErrNotConfirmed
	}
	if err := c.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete consultation: %w", err)
	}
	c.records = slices.DeleteFunc(c.records, func(r model.Consultation) bool {
		return r.ID == id
	})
	return nil
}

func matchesSearch(r model.Consultation, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Name), strings.ToLower(term)) ||
		strings.Contains(r.PhoneNumber, term)
}

func matchesStatus(r model.Consultation, filter string) bool {
	return filter == FilterAll || string(r.Status) == filter
}
