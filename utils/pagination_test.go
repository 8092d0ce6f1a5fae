package utils

import (
	"net/http/httptest"
	"testing"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
		wantErrs  int
	}{
		{"defaults", "", 1, 10, 0},
		{"explicit", "page=3&limit=25", 3, 25, 0},
		{"zero page", "page=0", 1, 10, 1},
		{"negative page", "page=-2", 1, 10, 1},
		{"limit too high", "limit=101", 1, 10, 1},
		{"non-numeric", "page=abc&limit=xyz", 1, 10, 2},
		{"limit at cap", "limit=100", 1, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/companies?"+tt.query, nil)
			page, limit, errs := ParsePagination(r)
			if page != tt.wantPage || limit != tt.wantLimit {
				t.Errorf("got page=%d limit=%d, want page=%d limit=%d", page, limit, tt.wantPage, tt.wantLimit)
			}
			if len(errs) != tt.wantErrs {
				t.Errorf("got %d errors, want %d: %v", len(errs), tt.wantErrs, errs)
			}
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 15)
	if p.Pages != 2 {
		t.Errorf("Pages = %d, want 2", p.Pages)
	}
	if p.HasNext {
		t.Errorf("page 2 of 2 should not have a next page")
	}
	if !p.HasPrev {
		t.Errorf("page 2 should have a previous page")
	}

	p = NewPagination(1, 10, 15)
	if !p.HasNext || p.HasPrev {
		t.Errorf("page 1 of 2: HasNext=%v HasPrev=%v, want true/false", p.HasNext, p.HasPrev)
	}

	p = NewPagination(1, 10, 0)
	if p.Pages != 0 || p.HasNext || p.HasPrev {
		t.Errorf("empty result: %+v", p)
	}
}

func TestParseSort(t *testing.T) {
	allowed := []string{"name", "price", "rating"}
	fieldMap := map[string]string{"price": "price.mrp"}

	r := httptest.NewRequest("GET", "/api/medicines?sortBy=price&sortOrder=desc", nil)
	sort, errs := ParseSort(r, allowed, "name", fieldMap)
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if sort[0].Key != "price.mrp" || sort[0].Value != -1 {
		t.Errorf("got %v, want price.mrp descending", sort)
	}

	r = httptest.NewRequest("GET", "/api/medicines", nil)
	sort, errs = ParseSort(r, allowed, "name", fieldMap)
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if sort[0].Key != "name" || sort[0].Value != 1 {
		t.Errorf("got %v, want name ascending by default", sort)
	}

	r = httptest.NewRequest("GET", "/api/medicines?sortBy=password", nil)
	if _, errs = ParseSort(r, allowed, "name", fieldMap); len(errs) != 1 {
		t.Errorf("disallowed field should be rejected, got %v", errs)
	}

	r = httptest.NewRequest("GET", "/api/medicines?sortOrder=sideways", nil)
	if _, errs = ParseSort(r, allowed, "name", fieldMap); len(errs) != 1 {
		t.Errorf("bad sort order should be rejected, got %v", errs)
	}
}
