package listutil

import (
	"math"
	"net/url"
	"slices"
	"testing"
)

func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name                 string
		page, perPage, total int
		wantPage, wantPages  int
	}{
		{"empty set still has one page", 1, 10, 0, 1, 1},
		{"exact multiple", 2, 10, 20, 2, 2},
		{"partial last page", 3, 10, 23, 3, 3},
		{"clamped high", 9, 10, 23, 3, 3},
		{"clamped low", 0, 10, 23, 1, 3},
		{"negative page", -4, 10, 5, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPageInfo(tt.page, tt.perPage, tt.total)
			if p.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", p.Page, tt.wantPage)
			}
			if p.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.wantPages)
			}
		})
	}
}

func TestRowRange(t *testing.T) {
	p := NewPageInfo(3, 10, 23)
	if p.StartRow() != 21 || p.EndRow() != 23 {
		t.Errorf("rows = %d-%d, want 21-23", p.StartRow(), p.EndRow())
	}

	empty := NewPageInfo(1, 10, 0)
	if empty.StartRow() != 0 || empty.EndRow() != 0 {
		t.Errorf("empty rows = %d-%d, want 0-0", empty.StartRow(), empty.EndRow())
	}
}

func TestPrevNext(t *testing.T) {
	first := NewPageInfo(1, 10, 23)
	if first.HasPrev() {
		t.Error("page 1 should not have a previous page")
	}
	if !first.HasNext() || first.NextPage() != 2 {
		t.Errorf("next = %d, want 2", first.NextPage())
	}

	last := NewPageInfo(3, 10, 23)
	if last.HasNext() {
		t.Error("last page should not have a next page")
	}
	if last.NextPage() != 3 {
		t.Errorf("next on last page = %d, want 3", last.NextPage())
	}
}

func TestPageNumbers(t *testing.T) {
	tests := []struct {
		page, total int
		want        []int
	}{
		{1, 23, []int{1, 2, 3}},
		{5, 100, []int{3, 4, 5, 6, 7}},
		{10, 100, []int{6, 7, 8, 9, 10}},
		{1, 0, []int{1}},
	}
	for _, tt := range tests {
		got := NewPageInfo(tt.page, 10, tt.total).PageNumbers()
		if !slices.Equal(got, tt.want) {
			t.Errorf("PageNumbers(page=%d,total=%d) = %v, want %v", tt.page, tt.total, got, tt.want)
		}
	}
}

func TestSlice(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i + 1
	}

	page3 := Slice(items, NewPageInfo(3, 10, len(items)))
	if !slices.Equal(page3, []int{21, 22, 23}) {
		t.Errorf("page 3 = %v, want [21 22 23]", page3)
	}

	none := Slice([]int{}, NewPageInfo(1, 10, 0))
	if len(none) != 0 {
		t.Errorf("empty slice = %v, want []", none)
	}
}

func TestParsePage(t *testing.T) {
	tests := map[string]int{
		"": 1, "abc": 1, "0": 1, "-2": 1, "4": 4,
		"99999999999999999999":  math.MaxInt,
		"-99999999999999999999": 1,
	}
	for in, want := range tests {
		q := url.Values{"page": {in}}
		if got := ParsePage(q); got != want {
			t.Errorf("ParsePage(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestOverflowingPageClampsToLast(t *testing.T) {
	page := ParsePage(url.Values{"page": {"99999999999999999999"}})
	p := NewPageInfo(page, 10, 23)
	if p.Page != 3 {
		t.Errorf("Page = %d, want 3", p.Page)
	}
	if p.Offset() != 20 {
		t.Errorf("Offset() = %d, want 20", p.Offset())
	}
}
