// Package query holds the rules of the catalog listing: which filters apply,
// how sort keys map onto columns and how the requested page is clamped.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"movietracker/internal/microservices/http-api/models"
)

// PageSize is fixed; callers cannot request a different page length.
const PageSize = 25

// AllValues is the sentinel a caller sends to say "no constraint".
const AllValues = "all"

type SortField string

const (
	SortWatchOrder SortField = "watch_order"
	SortID         SortField = "id"
	SortTitle      SortField = "title"
)

// Column is the catalog_items column the sort key orders by.
func (s SortField) Column() string {
	switch s {
	case SortWatchOrder:
		return "watch_order"
	case SortTitle:
		return "title"
	default:
		return "id"
	}
}

// ParseSort falls back to ID for anything it does not recognize.
func ParseSort(raw string) SortField {
	switch SortField(strings.ToLower(strings.TrimSpace(raw))) {
	case SortWatchOrder:
		return SortWatchOrder
	case SortTitle:
		return SortTitle
	default:
		return SortID
	}
}

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection only yields ascending for an explicit "asc".
func ParseDirection(raw string) Direction {
	if strings.EqualFold(strings.TrimSpace(raw), string(Ascending)) {
		return Ascending
	}
	return Descending
}

// Filters are conjunctive; a nil field places no constraint.
type Filters struct {
	TitleContains *string
	CaseType      *models.CaseType
	DigitalType   *models.DigitalType
	Is3D          *models.YesNo
	Format        *models.Format
	Status        *models.Status
}

type Params struct {
	Filters Filters
	Sort    SortField
	Order   Direction
	Page    int
}

// Defaults is the unfiltered first page sorted by descending ID.
func Defaults() Params {
	return Params{Sort: SortID, Order: Descending, Page: 1}
}

// Parse reads list parameters from a query string. Enumeration values are not
// checked here; an unknown label simply matches no rows.
func Parse(values url.Values) Params {
	p := Params{
		Sort:  ParseSort(values.Get("sort")),
		Order: ParseDirection(values.Get("order")),
		Page:  ParsePage(values.Get("page")),
	}

	p.Filters.TitleContains = optional(values.Get("title"))
	if v := optional(values.Get("case_type")); v != nil {
		c := models.CaseType(*v)
		p.Filters.CaseType = &c
	}
	if v := optional(values.Get("digital_type")); v != nil {
		d := models.DigitalType(*v)
		p.Filters.DigitalType = &d
	}
	if v := optional(values.Get("is_3d")); v != nil {
		y := models.YesNo(*v)
		p.Filters.Is3D = &y
	}
	if v := optional(values.Get("format")); v != nil {
		f := models.Format(*v)
		p.Filters.Format = &f
	}
	if v := optional(values.Get("status")); v != nil {
		s := models.Status(*v)
		p.Filters.Status = &s
	}
	return p
}

// ParsePage returns 1 for an absent or non-numeric page. Out-of-range numbers
// are kept as-is and clamped once the total is known; one too large for an int
// saturates, so it still lands on the last page.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 1
	}
	return page
}

func optional(raw string) *string {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, AllValues) {
		return nil
	}
	return &v
}

// MaxPage is never below 1, so an empty catalog still reports one page.
func MaxPage(total int64) int {
	if total <= 0 {
		return 1
	}
	return int((total + PageSize - 1) / PageSize)
}

// ClampPage forces page into [1, maxPage].
func ClampPage(page, maxPage int) int {
	if maxPage < 1 {
		maxPage = 1
	}
	if page < 1 {
		return 1
	}
	if page > maxPage {
		return maxPage
	}
	return page
}

// Offset is the first row index of a (clamped) page.
func Offset(page int) int {
	return (page - 1) * PageSize
}

// Result is one page of the listing plus its pagination metadata.
type Result struct {
	Items   []models.CatalogItem `json:"items"`
	Total   int64                `json:"total"`
	Page    int                  `json:"page"`
	MaxPage int                  `json:"max_page"`
}

// NewResult clamps the requested page against total and returns the
// metadata for it, with no rows yet.
func NewResult(total int64, requestedPage int) *Result {
	maxPage := MaxPage(total)
	return &Result{
		Items:   []models.CatalogItem{},
		Total:   total,
		Page:    ClampPage(requestedPage, maxPage),
		MaxPage: maxPage,
	}
}

// Key is a canonical form of the parameters, used as a cache key.
func (p Params) Key() string {
	f := p.Filters
	return fmt.Sprintf("t=%s|c=%s|d=%s|3d=%s|f=%s|s=%s|sort=%s|order=%s|page=%d",
		deref(f.TitleContains), deref(f.CaseType), deref(f.DigitalType), deref(f.Is3D),
		deref(f.Format), deref(f.Status), p.Sort.Column(), ParseDirection(string(p.Order)), p.Page)
}

func deref[T ~string](v *T) string {
	if v == nil {
		return "*"
	}
	return strconv.Quote(string(*v))
}
