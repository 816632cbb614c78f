package models

// ConstituentTitle is a film bundled inside a catalog item, e.g. one entry of a box set.
type ConstituentTitle struct {
	ID            int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	ItemID        *int64  `json:"item_id" gorm:"index"` // weak reference, no cascade
	Title         *string `json:"title,omitempty" gorm:"size:255"`
	CoverImageURL *string `json:"cover_image_url,omitempty" gorm:"type:text"`
}

func (ConstituentTitle) TableName() string {
	return "constituent_titles"
}
