package dashboard

import (
	"net/url"
	"strconv"

	"github.com/dukerupert/leadline/internal/listutil"
)

// Query parameter names shared by the dashboard page, the JSON API and export.
const (
	ParamSearch = "q"
	ParamStatus = "status"
	ParamPage   = "page"
)

// ApplyQuery sets search, status filter and page from URL query values, in
// that order so the page is clamped against the filtered subset.
func (c *Controller) ApplyQuery(q url.Values) {
	c.SetSearchTerm(q.Get(ParamSearch))
	c.SetStatusFilter(q.Get(ParamStatus))
	c.SetPage(listutil.ParsePage(q))
}

// Query encodes the current filters and page, omitting defaults.
func (c *Controller) Query() url.Values {
	q := url.Values{}
	if c.search != "" {
		q.Set(ParamSearch, c.search)
	}
	if c.status != FilterAll {
		q.Set(ParamStatus, c.status)
	}
	if p := c.Page().Page; p > 1 {
		q.Set(ParamPage, strconv.Itoa(p))
	}
	return q
}
