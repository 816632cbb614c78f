package dto

import (
	"strings"

	"movietracker/internal/microservices/http-api/models"
)

// ConstituentTitleRequest used for POST /api/items/:item_id/titles
type ConstituentTitleRequest struct {
	Title         string `json:"title" validate:"notblank,max=255"`
	CoverImageURL string `json:"cover_image_url" validate:"required,url"`
}

func (r ConstituentTitleRequest) ToModel(itemID int64) models.ConstituentTitle {
	title := strings.TrimSpace(r.Title)
	cover := strings.TrimSpace(r.CoverImageURL)
	return models.ConstituentTitle{ItemID: &itemID, Title: &title, CoverImageURL: &cover}
}

type ConstituentTitleResponse struct {
	ID            int64   `json:"id"`
	ItemID        *int64  `json:"item_id"`
	Title         *string `json:"title"`
	CoverImageURL *string `json:"cover_image_url"`
}

func FromConstituentTitle(m models.ConstituentTitle) ConstituentTitleResponse {
	return ConstituentTitleResponse{
		ID:            m.ID,
		ItemID:        m.ItemID,
		Title:         m.Title,
		CoverImageURL: m.CoverImageURL,
	}
}

// DeleteResponse reports how many rows a delete removed; zero is still a success.
type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}
