package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"movietracker/internal/cache"
	"movietracker/internal/metrics"
	"movietracker/internal/microservices/http-api/dto"
	"movietracker/internal/microservices/http-api/models"
	"movietracker/internal/microservices/http-api/query"
	"movietracker/internal/microservices/http-api/repository"
	"movietracker/internal/middleware/auth"
	"movietracker/internal/tracing"

	"github.com/go-playground/validator/v10"
)

type CatalogService interface {
	List(ctx context.Context, params query.Params) (*query.Result, error)
	GetByID(ctx context.Context, id int64) (*models.CatalogItem, error)
	Create(ctx context.Context, req dto.CatalogItemRequest) (int64, error)
	Update(ctx context.Context, id int64, req dto.CatalogItemRequest) (*models.CatalogItem, error)
	ToggleWatched(ctx context.Context, id int64) (*models.CatalogItem, error)
}

// CatalogOptions are the behaviour switches from config.
type CatalogOptions struct {
	// HonorWatchedOnCreate keeps a caller-supplied Watched=Y on create and
	// claims a watch order for it. Otherwise new items are always unwatched.
	HonorWatchedOnCreate bool
	// RequireTuesdayRelease rejects an AvailableDate that is not a Tuesday.
	RequireTuesdayRelease bool
}

// Observer bundles the cross-cutting collaborators every service reports to.
// Zero values are usable: no cache, no metrics and the default logger.
type Observer struct {
	Cache   cache.ListCache
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

func (o Observer) withDefaults() Observer {
	if o.Cache == nil {
		o.Cache = cache.Nop{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// finish closes the span, counts the outcome and reports store failures.
func (o Observer) finish(ctx context.Context, span *tracing.Span, op string, err error) {
	span.Finish(err)
	o.Metrics.RecordOperation(op, err)

	var se *repository.StoreError
	if errors.As(err, &se) {
		o.Logger.ErrorContext(ctx, "Catalog store failure", "operation", op, "kind", se.Kind, "error", se.Err)
		tracing.CaptureError(ctx, err)
	}
}

// invalidate drops cached list pages after a successful write.
func (o Observer) invalidate(ctx context.Context) {
	if err := o.Cache.Invalidate(ctx); err != nil {
		o.Logger.WarnContext(ctx, "List cache invalidation failed", "error", err)
	}
}

type catalogService struct {
	repo     repository.CatalogItemRepository
	gate     *auth.Gate
	obs      Observer
	opts     CatalogOptions
	validate *validator.Validate
}

func NewCatalogService(repo repository.CatalogItemRepository, gate *auth.Gate, obs Observer, opts CatalogOptions) CatalogService {
	return &catalogService{
		repo:     repo,
		gate:     gate,
		obs:      obs.withDefaults(),
		opts:     opts,
		validate: newValidator(),
	}
}

// List never fails on unusual filter values; they simply match nothing.
func (s *catalogService) List(ctx context.Context, params query.Params) (res *query.Result, err error) {
	span, ctx := tracing.StartSpan(ctx, "catalog.list")
	defer func() { s.obs.finish(ctx, span, "list", err) }()

	if _, err = s.gate.RequireSignedIn(ctx); err != nil {
		return nil, err
	}

	_, disabled := s.obs.Cache.(cache.Nop)
	caching := !disabled
	key := params.Key()

	var generation int64
	if caching {
		if generation, err = s.obs.Cache.Generation(ctx); err != nil {
			s.obs.Logger.WarnContext(ctx, "List cache unavailable", "error", err)
			s.obs.Metrics.RecordCacheLookup("error")
			caching, err = false, nil
		}
	}
	if caching {
		if cached, ok := s.cached(ctx, generation, key); ok {
			return cached, nil
		}
	}

	res, err = s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	if caching {
		if b, mErr := json.Marshal(res); mErr == nil {
			if sErr := s.obs.Cache.Set(ctx, generation, key, b); sErr != nil {
				s.obs.Logger.WarnContext(ctx, "List cache write failed", "error", sErr)
			}
		}
	}
	return res, nil
}

func (s *catalogService) cached(ctx context.Context, generation int64, key string) (*query.Result, bool) {
	b, ok, err := s.obs.Cache.Get(ctx, generation, key)
	switch {
	case err != nil:
		s.obs.Logger.WarnContext(ctx, "List cache read failed", "error", err)
		s.obs.Metrics.RecordCacheLookup("error")
		return nil, false
	case !ok:
		s.obs.Metrics.RecordCacheLookup("miss")
		return nil, false
	}

	var res query.Result
	if err := json.Unmarshal(b, &res); err != nil {
		s.obs.Metrics.RecordCacheLookup("error")
		return nil, false
	}
	s.obs.Metrics.RecordCacheLookup("hit")
	return &res, true
}

func (s *catalogService) GetByID(ctx context.Context, id int64) (item *models.CatalogItem, err error) {
	span, ctx := tracing.StartSpan(ctx, "catalog.get")
	defer func() { s.obs.finish(ctx, span, "get", err) }()

	if _, err = s.gate.RequireSignedIn(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *catalogService) Create(ctx context.Context, req dto.CatalogItemRequest) (id int64, err error) {
	span, ctx := tracing.StartSpan(ctx, "catalog.create")
	defer func() { s.obs.finish(ctx, span, "create", err) }()

	if _, err = s.gate.RequireAdmin(ctx); err != nil {
		return 0, err
	}
	if err = s.validateItem(req); err != nil {
		return 0, err
	}

	item := req.ToModel()
	if !s.opts.HonorWatchedOnCreate {
		item.Watched = models.No
	}
	if err = s.repo.Create(ctx, &item); err != nil {
		return 0, err
	}

	s.obs.invalidate(ctx)
	return item.ID, nil
}

func (s *catalogService) Update(ctx context.Context, id int64, req dto.CatalogItemRequest) (item *models.CatalogItem, err error) {
	span, ctx := tracing.StartSpan(ctx, "catalog.update")
	defer func() { s.obs.finish(ctx, span, "update", err) }()

	if _, err = s.gate.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err = s.validateItem(req); err != nil {
		return nil, err
	}

	replacement := req.ToModel()
	replacement.ID = id
	if item, err = s.repo.Update(ctx, &replacement); err != nil {
		return nil, err
	}

	s.obs.invalidate(ctx)
	return item, nil
}

func (s *catalogService) ToggleWatched(ctx context.Context, id int64) (item *models.CatalogItem, err error) {
	span, ctx := tracing.StartSpan(ctx, "catalog.toggle_watched")
	defer func() { s.obs.finish(ctx, span, "toggle_watched", err) }()

	if _, err = s.gate.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if item, err = s.repo.ToggleWatched(ctx, id); err != nil {
		return nil, err
	}

	s.obs.invalidate(ctx)
	return item, nil
}

func (s *catalogService) validateItem(req dto.CatalogItemRequest) error {
	ve := validateStruct(s.validate, req)
	if s.opts.RequireTuesdayRelease {
		if d, ok := req.ParsedAvailableDate(); ok && !isTuesday(d) {
			if ve == nil {
				ve = &ValidationError{}
			}
			ve.add("available_date", "must be a Tuesday")
		}
	}
	return ve.orNil()
}
