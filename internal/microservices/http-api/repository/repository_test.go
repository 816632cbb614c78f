package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"movietracker/database"
	"movietracker/internal/config"
	"movietracker/internal/microservices/http-api/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{DBDriver: "sqlite", DatabaseURL: ":memory:", DBConnectAttempts: 1}
	db, err := database.ConnectDB(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.Migrate(ctx, db, logger))
	return db
}

func newItem(title string, opts ...func(*models.CatalogItem)) *models.CatalogItem {
	cover := "https://img.example.com/" + title + ".jpg"
	item := &models.CatalogItem{
		Title:         title,
		Format:        models.FormatBluRay,
		Is3D:          models.No,
		DigitalType:   models.DigitalNone,
		CaseType:      models.CasePlain,
		Status:        models.StatusOwned,
		CoverImageURL: &cover,
		Watched:       models.No,
	}
	for _, opt := range opts {
		opt(item)
	}
	return item
}

func withFormat(f models.Format) func(*models.CatalogItem) {
	return func(i *models.CatalogItem) { i.Format = f }
}

func withStatus(s models.Status) func(*models.CatalogItem) {
	return func(i *models.CatalogItem) { i.Status = s }
}

func withCase(c models.CaseType) func(*models.CatalogItem) {
	return func(i *models.CatalogItem) { i.CaseType = c }
}

func seed(t *testing.T, repo CatalogItemRepository, items ...*models.CatalogItem) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		require.NoError(t, repo.Create(context.Background(), item))
		ids = append(ids, item.ID)
	}
	return ids
}
