// internal/pagination/pagination.go
package pagination

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

var (
	ErrInvalidPage      = errors.New("page must be zero or positive")
	ErrInvalidSize      = errors.New("size must be between 1 and 100")
	ErrInvalidSortField = errors.New("unknown sort field")
	ErrInvalidDirection = errors.New("direction must be asc or desc")
)

const (
	defaultSize = 10
	maxSize     = 100
)

// Request carries validated paging and sorting parameters. SortColumn is the
// database column resolved from the whitelist, safe to interpolate into an
// ORDER BY clause.
type Request struct {
	Page       int
	Size       int
	SortColumn string
	Direction  string
}

// Defaults holds the per-endpoint fallback sort.
type Defaults struct {
	SortBy    string
	Direction string
}

// Parse reads page, size, sortBy and direction from the request query.
// sortFields maps accepted sortBy values to database columns; any other
// value is a caller error, never a silent fallback.
func Parse(r *http.Request, d Defaults, sortFields map[string]string) (Request, error) {
	q := r.URL.Query()

	page := 0
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Request{}, fmt.Errorf("%w: %q", ErrInvalidPage, raw)
		}
		page = n
	}

	size := defaultSize
	if raw := q.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSize {
			return Request{}, fmt.Errorf("%w: %q", ErrInvalidSize, raw)
		}
		size = n
	}

	sortBy := q.Get("sortBy")
	if sortBy == "" {
		sortBy = d.SortBy
	}
	column, ok := sortFields[sortBy]
	if !ok {
		return Request{}, fmt.Errorf("%w: %q", ErrInvalidSortField, sortBy)
	}

	direction := q.Get("direction")
	if direction == "" {
		direction = d.Direction
	}
	switch strings.ToLower(direction) {
	case "asc":
		direction = "ASC"
	case "desc":
		direction = "DESC"
	default:
		return Request{}, fmt.Errorf("%w: %q", ErrInvalidDirection, direction)
	}

	return Request{Page: page, Size: size, SortColumn: column, Direction: direction}, nil
}

// Offset returns the row offset for the requested page.
func (r Request) Offset() int {
	return r.Page * r.Size
}

// OrderBy returns the ORDER BY fragment for the validated sort.
func (r Request) OrderBy() string {
	return fmt.Sprintf("%s %s", r.SortColumn, r.Direction)
}

// Page is the response envelope for paged listings.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
}

// NewPage assembles the envelope, computing the page count from the total.
func NewPage[T any](content []T, req Request, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := int(total) / req.Size
	if int(total)%req.Size != 0 {
		pages++
	}
	return &Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}
