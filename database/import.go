package database

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"movietracker/internal/microservices/http-api/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ImportRecord is one item of an import file, a JSON array of these.
type ImportRecord struct {
	Title         string             `json:"title"`
	Format        models.Format      `json:"format"`
	Is3D          models.YesNo       `json:"is_3d"`
	DigitalType   models.DigitalType `json:"digital_type"`
	CaseType      models.CaseType    `json:"case_type"`
	Status        models.Status      `json:"status"`
	CoverImageURL *string            `json:"cover_image_url"`
	Notes         *string            `json:"notes"`
	AvailableDate string             `json:"available_date"` // YYYY-MM-DD or empty
	Watched       models.YesNo       `json:"watched"`
	WatchOrder    *int64             `json:"watch_order"`
	Titles        []struct {
		Title         string  `json:"title"`
		CoverImageURL *string `json:"cover_image_url"`
	} `json:"titles"`
}

type ImportStats struct {
	Items  int
	Titles int
}

// Import loads a catalog export in one transaction; any bad record aborts the
// whole file. Watched items keep their watch order when the file has one and
// are numbered after the highest order ever claimed otherwise. The watch
// sequence is moved past every imported order.
func Import(ctx context.Context, db *gorm.DB, r io.Reader, logger *slog.Logger) (ImportStats, error) {
	var records []ImportRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return ImportStats{}, fmt.Errorf("failed to decode JSON: %w", err)
	}

	items := make([]models.CatalogItem, 0, len(records))
	for i, rec := range records {
		item, err := rec.toModel()
		if err != nil {
			return ImportStats{}, fmt.Errorf("record %d (%q): %w", i+1, rec.Title, err)
		}
		items = append(items, item)
	}

	var stats ImportStats
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		highest, err := lockWatchSequence(tx)
		if err != nil {
			return err
		}
		var stored int64
		if err := tx.Model(&models.CatalogItem{}).
			Select("COALESCE(MAX(watch_order), 0)").
			Row().Scan(&stored); err != nil {
			return err
		}
		highest = max(highest, stored)
		for _, it := range items {
			if it.WatchOrder != nil && *it.WatchOrder > highest {
				highest = *it.WatchOrder
			}
		}

		for i := range items {
			if items[i].Watched == models.Yes && items[i].WatchOrder == nil {
				highest++
				order := highest
				items[i].WatchOrder = &order
			}
			if err := tx.Create(&items[i]).Error; err != nil {
				return fmt.Errorf("insert %q: %w", items[i].Title, err)
			}
			stats.Items++
			stats.Titles += len(items[i].Titles)
			logger.Debug("Imported item", "id", items[i].ID, "title", items[i].Title)
		}

		return tx.Model(&models.WatchSequence{}).
			Where("name = ? AND last_claimed < ?", models.WatchOrderSequence, highest).
			Update("last_claimed", highest).Error
	})
	if err != nil {
		return ImportStats{}, fmt.Errorf("import failed: %w", err)
	}

	logger.Info("Catalog import completed", "items", stats.Items, "titles", stats.Titles)
	return stats, nil
}

// lockWatchSequence makes sure the sequence row exists, holds its row lock
// for the rest of tx and returns the highest order ever claimed.
func lockWatchSequence(tx *gorm.DB) (int64, error) {
	seq := models.WatchSequence{Name: models.WatchOrderSequence}
	if err := tx.Where("name = ?", models.WatchOrderSequence).
		Attrs(models.WatchSequence{Value: 0}).
		FirstOrCreate(&seq).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&models.WatchSequence{}).
		Where("name = ?", models.WatchOrderSequence).
		Update("last_claimed", gorm.Expr("last_claimed")).Error; err != nil {
		return 0, err
	}
	if err := tx.First(&seq, "name = ?", models.WatchOrderSequence).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}

func (rec ImportRecord) toModel() (models.CatalogItem, error) {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return models.CatalogItem{}, fmt.Errorf("title is required")
	}
	if rec.Is3D == "" {
		rec.Is3D = models.No
	}
	if rec.Watched == "" {
		rec.Watched = models.No
	}
	switch {
	case !rec.Format.Valid():
		return models.CatalogItem{}, fmt.Errorf("unknown format %q", rec.Format)
	case !rec.Is3D.Valid():
		return models.CatalogItem{}, fmt.Errorf("is_3d must be Y or N")
	case !rec.DigitalType.Valid():
		return models.CatalogItem{}, fmt.Errorf("unknown digital type %q", rec.DigitalType)
	case !rec.CaseType.Valid():
		return models.CatalogItem{}, fmt.Errorf("unknown case type %q", rec.CaseType)
	case !rec.Status.Valid():
		return models.CatalogItem{}, fmt.Errorf("unknown status %q", rec.Status)
	case !rec.Watched.Valid():
		return models.CatalogItem{}, fmt.Errorf("watched must be Y or N")
	}

	item := models.CatalogItem{
		Title:         title,
		Format:        rec.Format,
		Is3D:          rec.Is3D,
		DigitalType:   rec.DigitalType,
		CaseType:      rec.CaseType,
		Status:        rec.Status,
		CoverImageURL: rec.CoverImageURL,
		Notes:         rec.Notes,
		Watched:       rec.Watched,
	}
	if rec.Watched == models.Yes && rec.WatchOrder != nil {
		if *rec.WatchOrder < 1 {
			return models.CatalogItem{}, fmt.Errorf("watch_order must be positive")
		}
		order := *rec.WatchOrder
		item.WatchOrder = &order
	}
	if rec.AvailableDate != "" {
		d, err := time.Parse("2006-01-02", rec.AvailableDate)
		if err != nil {
			return models.CatalogItem{}, fmt.Errorf("available_date: %w", err)
		}
		date := datatypes.Date(d)
		item.AvailableDate = &date
	}
	for _, t := range rec.Titles {
		name := strings.TrimSpace(t.Title)
		if name == "" {
			return models.CatalogItem{}, fmt.Errorf("constituent title is required")
		}
		item.Titles = append(item.Titles, models.ConstituentTitle{Title: &name, CoverImageURL: t.CoverImageURL})
	}
	return item, nil
}
