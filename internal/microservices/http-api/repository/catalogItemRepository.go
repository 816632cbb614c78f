package repository

import (
	"context"
	"strings"

	"movietracker/internal/microservices/http-api/models"
	"movietracker/internal/microservices/http-api/query"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogItemRepository interface {
	List(ctx context.Context, params query.Params) (*query.Result, error)
	GetByID(ctx context.Context, id int64) (*models.CatalogItem, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, item *models.CatalogItem) error
	Update(ctx context.Context, item *models.CatalogItem) (*models.CatalogItem, error)
	ToggleWatched(ctx context.Context, id int64) (*models.CatalogItem, error)
}

type catalogItemRepository struct {
	db *gorm.DB
}

func NewCatalogItemRepository(db *gorm.DB) CatalogItemRepository {
	return &catalogItemRepository{db: db}
}

// List counts the matching rows, clamps the requested page against that count
// and then fetches at most one page.
func (r *catalogItemRepository) List(ctx context.Context, params query.Params) (*query.Result, error) {
	var total int64
	if err := applyFilters(r.db.WithContext(ctx).Model(&models.CatalogItem{}), params.Filters).
		Count(&total).Error; err != nil {
		return nil, wrapErr("count catalog items", err)
	}

	result := query.NewResult(total, params.Page)
	if total == 0 {
		return result, nil
	}

	desc := query.ParseDirection(string(params.Order)) == query.Descending
	column := params.Sort.Column()

	if err := orderBy(applyFilters(r.db.WithContext(ctx), params.Filters), column, desc).
		Limit(query.PageSize).
		Offset(query.Offset(result.Page)).
		Find(&result.Items).Error; err != nil {
		return nil, wrapErr("list catalog items", err)
	}
	return result, nil
}

// orderBy sorts by column, then id. Unwatched rows have no watch order; they
// sort as the lowest value on every driver, first ascending and last descending.
func orderBy(db *gorm.DB, column string, desc bool) *gorm.DB {
	if column == query.SortWatchOrder.Column() {
		db = db.Order(clause.OrderByColumn{
			Column: clause.Column{Name: "CASE WHEN watch_order IS NULL THEN 0 ELSE 1 END", Raw: true},
			Desc:   desc,
		})
	}
	db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc})
	if column != "id" {
		// stable pages when the sort column has duplicates
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc})
	}
	return db
}

func applyFilters(db *gorm.DB, f query.Filters) *gorm.DB {
	if f.TitleContains != nil {
		db = db.Where("LOWER(title) LIKE LOWER(?) ESCAPE '!'", "%"+escapeLike(*f.TitleContains)+"%")
	}
	if f.CaseType != nil {
		db = db.Where("case_type = ?", string(*f.CaseType))
	}
	if f.DigitalType != nil {
		db = db.Where("digital_type = ?", string(*f.DigitalType))
	}
	if f.Is3D != nil {
		db = db.Where("is_3d = ?", string(*f.Is3D))
	}
	if f.Format != nil {
		db = db.Where("format = ?", string(*f.Format))
	}
	if f.Status != nil {
		db = db.Where("status = ?", string(*f.Status))
	}
	return db
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// escapeLike makes s match literally inside a LIKE pattern using '!' as escape.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *catalogItemRepository) GetByID(ctx context.Context, id int64) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.db.WithContext(ctx).
		Preload("Titles", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&item, id).Error; err != nil {
		return nil, wrapErr("get catalog item", err)
	}
	return &item, nil
}

func (r *catalogItemRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.CatalogItem{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, wrapErr("check catalog item", err)
	}
	return n > 0, nil
}

// Create inserts item. When the item arrives already watched, a watch order
// is claimed in the same transaction; any caller-supplied WatchOrder is ignored.
func (r *catalogItemRepository) Create(ctx context.Context, item *models.CatalogItem) error {
	item.ID = 0
	item.WatchOrder = nil
	item.Titles = nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if item.Watched == models.Yes {
			next, err := claimWatchOrder(tx)
			if err != nil {
				return err
			}
			item.WatchOrder = &next
		}
		return tx.Create(item).Error
	})
	return wrapErr("create catalog item", err)
}

// Update replaces every mutable field of the row with item.ID. WatchOrder is
// left alone; only ToggleWatched manages it.
func (r *catalogItemRepository) Update(ctx context.Context, item *models.CatalogItem) (*models.CatalogItem, error) {
	var updated models.CatalogItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.CatalogItem
		if err := tx.Select("id").First(&existing, item.ID).Error; err != nil {
			return err
		}

		fields := map[string]any{
			"title":           item.Title,
			"format":          string(item.Format),
			"is_3d":           string(item.Is3D),
			"digital_type":    string(item.DigitalType),
			"case_type":       string(item.CaseType),
			"status":          string(item.Status),
			"cover_image_url": nullable(item.CoverImageURL),
			"notes":           nullable(item.Notes),
			"available_date":  nullable(item.AvailableDate),
			"watched":         string(item.Watched),
		}
		if err := tx.Model(&models.CatalogItem{}).Where("id = ?", item.ID).Updates(fields).Error; err != nil {
			return err
		}
		return tx.First(&updated, item.ID).Error
	})
	if err != nil {
		return nil, wrapErr("update catalog item", err)
	}
	return &updated, nil
}

// ToggleWatched flips the watched flag. Turning it on claims the next watch
// order; turning it off clears it.
func (r *catalogItemRepository) ToggleWatched(ctx context.Context, id int64) (*models.CatalogItem, error) {
	var item models.CatalogItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Take the sequence lock before reading the item so that two toggles
		// of the same row cannot both observe the old state.
		if err := lockWatchSequence(tx); err != nil {
			return err
		}
		if err := tx.First(&item, id).Error; err != nil {
			return err
		}

		var order any
		if item.Watched == models.Yes {
			item.Watched = models.No
			item.WatchOrder = nil
		} else {
			next, err := nextWatchOrder(tx)
			if err != nil {
				return err
			}
			item.Watched = models.Yes
			item.WatchOrder = &next
			order = next
		}

		return tx.Model(&models.CatalogItem{}).Where("id = ?", id).Updates(map[string]any{
			"watched":     string(item.Watched),
			"watch_order": order,
		}).Error
	})
	if err != nil {
		return nil, wrapErr("toggle watched", err)
	}
	return &item, nil
}

// claimWatchOrder locks the sequence row and hands out the next value.
func claimWatchOrder(tx *gorm.DB) (int64, error) {
	if err := lockWatchSequence(tx); err != nil {
		return 0, err
	}
	return nextWatchOrder(tx)
}

// lockWatchSequence issues a no-op UPDATE against the sequence row. Postgres
// and MySQL hold the row lock until commit; SQLite takes its write lock.
func lockWatchSequence(tx *gorm.DB) error {
	return tx.Model(&models.WatchSequence{}).
		Where("name = ?", models.WatchOrderSequence).
		Update("last_claimed", gorm.Expr("last_claimed")).Error
}

// nextWatchOrder must run after lockWatchSequence in the same transaction.
func nextWatchOrder(tx *gorm.DB) (int64, error) {
	seq := models.WatchSequence{Name: models.WatchOrderSequence}
	if err := tx.Where("name = ?", models.WatchOrderSequence).
		Attrs(models.WatchSequence{Value: 0}).
		FirstOrCreate(&seq).Error; err != nil {
		return 0, err
	}

	var current int64
	if err := tx.Model(&models.CatalogItem{}).
		Select("COALESCE(MAX(watch_order), 0)").
		Row().Scan(&current); err != nil {
		return 0, err
	}

	next := max(seq.Value, current) + 1
	if err := tx.Model(&models.WatchSequence{}).
		Where("name = ?", models.WatchOrderSequence).
		Update("last_claimed", next).Error; err != nil {
		return 0, err
	}
	return next, nil
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
