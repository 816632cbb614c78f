package service

import (
	"context"

	"movietracker/internal/microservices/http-api/dto"
	"movietracker/internal/microservices/http-api/models"
	"movietracker/internal/microservices/http-api/repository"
	"movietracker/internal/middleware/auth"
	"movietracker/internal/tracing"

	"github.com/go-playground/validator/v10"
)

type ConstituentTitleService interface {
	ListByItem(ctx context.Context, itemID int64) ([]models.ConstituentTitle, error)
	Add(ctx context.Context, itemID int64, req dto.ConstituentTitleRequest) (*models.ConstituentTitle, error)
	// Delete reports how many rows went away. Zero is not an error.
	Delete(ctx context.Context, id int64) (int64, error)
}

type constituentTitleService struct {
	titles   repository.ConstituentTitleRepository
	items    repository.CatalogItemRepository
	gate     *auth.Gate
	obs      Observer
	validate *validator.Validate
}

func NewConstituentTitleService(
	titles repository.ConstituentTitleRepository,
	items repository.CatalogItemRepository,
	gate *auth.Gate,
	obs Observer,
) ConstituentTitleService {
	return &constituentTitleService{
		titles:   titles,
		items:    items,
		gate:     gate,
		obs:      obs.withDefaults(),
		validate: newValidator(),
	}
}

// ListByItem returns an empty slice for an unknown item.
func (s *constituentTitleService) ListByItem(ctx context.Context, itemID int64) (titles []models.ConstituentTitle, err error) {
	span, ctx := tracing.StartSpan(ctx, "titles.list")
	defer func() { s.obs.finish(ctx, span, "titles_list", err) }()

	if _, err = s.gate.RequireSignedIn(ctx); err != nil {
		return nil, err
	}
	return s.titles.ListByItem(ctx, itemID)
}

func (s *constituentTitleService) Add(ctx context.Context, itemID int64, req dto.ConstituentTitleRequest) (title *models.ConstituentTitle, err error) {
	span, ctx := tracing.StartSpan(ctx, "titles.add")
	defer func() { s.obs.finish(ctx, span, "titles_add", err) }()

	if _, err = s.gate.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err = validateStruct(s.validate, req).orNil(); err != nil {
		return nil, err
	}

	exists, err := s.items.Exists(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	t := req.ToModel(itemID)
	if err = s.titles.Create(ctx, &t); err != nil {
		return nil, err
	}

	s.obs.invalidate(ctx)
	return &t, nil
}

func (s *constituentTitleService) Delete(ctx context.Context, id int64) (deleted int64, err error) {
	span, ctx := tracing.StartSpan(ctx, "titles.delete")
	defer func() { s.obs.finish(ctx, span, "titles_delete", err) }()

	if _, err = s.gate.RequireAdmin(ctx); err != nil {
		return 0, err
	}
	if deleted, err = s.titles.Delete(ctx, id); err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.obs.invalidate(ctx)
	}
	return deleted, nil
}
