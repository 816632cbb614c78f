package repository

import (
	"context"

	"movietracker/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type ConstituentTitleRepository interface {
	ListByItem(ctx context.Context, itemID int64) ([]models.ConstituentTitle, error)
	Create(ctx context.Context, title *models.ConstituentTitle) error
	Delete(ctx context.Context, id int64) (int64, error)
}

type constituentTitleRepository struct {
	db *gorm.DB
}

func NewConstituentTitleRepository(db *gorm.DB) ConstituentTitleRepository {
	return &constituentTitleRepository{db: db}
}

func (r *constituentTitleRepository) ListByItem(ctx context.Context, itemID int64) ([]models.ConstituentTitle, error) {
	titles := []models.ConstituentTitle{}
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("id ASC").
		Find(&titles).Error; err != nil {
		return nil, wrapErr("list constituent titles", err)
	}
	return titles, nil
}

func (r *constituentTitleRepository) Create(ctx context.Context, title *models.ConstituentTitle) error {
	title.ID = 0
	if err := r.db.WithContext(ctx).Create(title).Error; err != nil {
		return wrapErr("create constituent title", err)
	}
	return nil
}

// Delete reports how many rows went away; zero is not an error.
func (r *constituentTitleRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.ConstituentTitle{}, id)
	if result.Error != nil {
		return 0, wrapErr("delete constituent title", result.Error)
	}
	return result.RowsAffected, nil
}
