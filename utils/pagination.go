package utils

import (
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
)

// ParsePagination reads page/limit query parameters. Page must be >= 1 and
// limit between 1 and 100; out-of-range values are reported as field errors,
// absent ones fall back to page 1, limit 10.
func ParsePagination(r *http.Request) (page, limit int, errs []FieldError) {
	page, limit = 1, 10

	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs = append(errs, FieldError{Param: "page", Msg: "Page must be a positive integer"})
		} else {
			page = n
		}
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			errs = append(errs, FieldError{Param: "limit", Msg: "Limit must be between 1 and 100"})
		} else {
			limit = n
		}
	}

	return page, limit, errs
}

// NewPagination builds the pagination block for a list response.
func NewPagination(page, limit int, total int64) *Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return &Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

// ParseSort reads sortBy/sortOrder against an allow-list of sortable fields.
// sortBy names the API field; fieldMap translates it to the stored path
// (e.g. price -> price.mrp). An empty map entry means the name is stored
// as-is.
func ParseSort(r *http.Request, allowed []string, defaultField string, fieldMap map[string]string) (bson.D, []FieldError) {
	sortBy := r.URL.Query().Get("sortBy")
	if sortBy == "" {
		sortBy = defaultField
	}

	ok := false
	for _, field := range allowed {
		if sortBy == field {
			ok = true
			break
		}
	}
	if !ok {
		return nil, []FieldError{{Param: "sortBy", Msg: "Invalid sort field"}}
	}

	order := 1
	switch r.URL.Query().Get("sortOrder") {
	case "", "asc":
	case "desc":
		order = -1
	default:
		return nil, []FieldError{{Param: "sortOrder", Msg: "Sort order must be asc or desc"}}
	}

	if stored, found := fieldMap[sortBy]; found {
		sortBy = stored
	}
	return bson.D{{Key: sortBy, Value: order}}, nil
}
