package models

import "gorm.io/datatypes"

// CatalogItem is one physical or digital unit in the collection.
type CatalogItem struct {
	ID            int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	Title         string          `json:"title" gorm:"size:255;not null"`
	Format        Format          `json:"format" gorm:"size:16;not null"`
	Is3D          YesNo           `json:"is_3d" gorm:"column:is_3d;size:1;not null;default:'N'"`
	DigitalType   DigitalType     `json:"digital_type" gorm:"size:8;not null"`
	CaseType      CaseType        `json:"case_type" gorm:"size:16;not null"`
	Status        Status          `json:"status" gorm:"size:16;not null"`
	CoverImageURL *string         `json:"cover_image_url,omitempty" gorm:"type:text"`
	Notes         *string         `json:"notes,omitempty" gorm:"type:text"`
	AvailableDate *datatypes.Date `json:"available_date,omitempty"`
	Watched       YesNo           `json:"watched" gorm:"size:1;not null;default:'N'"`
	WatchOrder    *int64          `json:"watch_order,omitempty" gorm:"index"`

	// association
	Titles []ConstituentTitle `json:"titles,omitempty" gorm:"foreignKey:ItemID"`
}

func (CatalogItem) TableName() string {
	return "catalog_items"
}
