package dto

import (
	"strings"
	"time"

	"movietracker/internal/microservices/http-api/models"
	"movietracker/internal/microservices/http-api/query"

	"gorm.io/datatypes"
)

// DateLayout is the wire format of AvailableDate.
const DateLayout = "2006-01-02"

// CatalogItemRequest used for POST /api/items and PUT /api/items/:item_id.
// Both are full writes; every mutable field must be sent.
type CatalogItemRequest struct {
	Title         string             `json:"title" validate:"notblank,max=255"`
	Format        models.Format      `json:"format" validate:"format"`
	Is3D          models.YesNo       `json:"is_3d" validate:"yesno"`
	DigitalType   models.DigitalType `json:"digital_type" validate:"digital_type"`
	CaseType      models.CaseType    `json:"case_type" validate:"case_type"`
	Status        models.Status      `json:"status" validate:"status"`
	Watched       models.YesNo       `json:"watched" validate:"yesno"`
	CoverImageURL string             `json:"cover_image_url" validate:"required,url"`
	Notes         *string            `json:"notes,omitempty"`
	AvailableDate *string            `json:"available_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ToModel assumes the request has been validated. Blank notes are stored as null.
func (r CatalogItemRequest) ToModel() models.CatalogItem {
	cover := strings.TrimSpace(r.CoverImageURL)
	item := models.CatalogItem{
		Title:         strings.TrimSpace(r.Title),
		Format:        r.Format,
		Is3D:          r.Is3D,
		DigitalType:   r.DigitalType,
		CaseType:      r.CaseType,
		Status:        r.Status,
		Watched:       r.Watched,
		CoverImageURL: &cover,
	}
	if r.Notes != nil && strings.TrimSpace(*r.Notes) != "" {
		notes := *r.Notes
		item.Notes = &notes
	}
	if d, ok := r.ParsedAvailableDate(); ok {
		date := datatypes.Date(d)
		item.AvailableDate = &date
	}
	return item
}

// ParsedAvailableDate reports false for an absent, empty or malformed date.
func (r CatalogItemRequest) ParsedAvailableDate() (time.Time, bool) {
	if r.AvailableDate == nil || strings.TrimSpace(*r.AvailableDate) == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(*r.AvailableDate))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CatalogItemResponse DTO for responses
type CatalogItemResponse struct {
	ID            int64                      `json:"id"`
	Title         string                     `json:"title"`
	Format        models.Format              `json:"format"`
	Is3D          models.YesNo               `json:"is_3d"`
	DigitalType   models.DigitalType         `json:"digital_type"`
	CaseType      models.CaseType            `json:"case_type"`
	Status        models.Status              `json:"status"`
	CoverImageURL *string                    `json:"cover_image_url"`
	Notes         *string                    `json:"notes"`
	AvailableDate *string                    `json:"available_date"`
	Watched       models.YesNo               `json:"watched"`
	WatchOrder    *int64                     `json:"watch_order"`
	Titles        []ConstituentTitleResponse `json:"titles,omitempty"`
}

func FromCatalogItem(m models.CatalogItem) CatalogItemResponse {
	resp := CatalogItemResponse{
		ID:            m.ID,
		Title:         m.Title,
		Format:        m.Format,
		Is3D:          m.Is3D,
		DigitalType:   m.DigitalType,
		CaseType:      m.CaseType,
		Status:        m.Status,
		CoverImageURL: m.CoverImageURL,
		Notes:         m.Notes,
		Watched:       m.Watched,
		WatchOrder:    m.WatchOrder,
	}
	if m.AvailableDate != nil {
		d := time.Time(*m.AvailableDate).Format(DateLayout)
		resp.AvailableDate = &d
	}
	if len(m.Titles) > 0 {
		resp.Titles = make([]ConstituentTitleResponse, 0, len(m.Titles))
		for _, t := range m.Titles {
			resp.Titles = append(resp.Titles, FromConstituentTitle(t))
		}
	}
	return resp
}

type Pagination struct {
	Page     int   `json:"page"`
	MaxPage  int   `json:"max_page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// CatalogListResponse is one page of GET /api/items
type CatalogListResponse struct {
	Data       []CatalogItemResponse `json:"data"`
	Pagination Pagination            `json:"pagination"`
}

func NewCatalogListResponse(res *query.Result) CatalogListResponse {
	data := make([]CatalogItemResponse, 0, len(res.Items))
	for _, it := range res.Items {
		data = append(data, FromCatalogItem(it))
	}
	return CatalogListResponse{
		Data: data,
		Pagination: Pagination{
			Page:     res.Page,
			MaxPage:  res.MaxPage,
			PageSize: query.PageSize,
			Total:    res.Total,
		},
	}
}

// CreatedResponse carries the ID of a newly inserted row.
type CreatedResponse struct {
	ID int64 `json:"id"`
}
