package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"movietracker/database"
	"movietracker/internal/config"
	"movietracker/internal/microservices/http-api/dto"
	"movietracker/internal/microservices/http-api/models"
	"movietracker/internal/microservices/http-api/query"
	"movietracker/internal/microservices/http-api/repository"
	"movietracker/internal/middleware/auth"
	"movietracker/internal/shared"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const adminEmail = "admin@example.com"

var (
	adminCtx  = auth.WithIdentity(context.Background(), shared.Identity{UserID: "a1", Email: adminEmail})
	viewerCtx = auth.WithIdentity(context.Background(), shared.Identity{UserID: "v1", Email: "viewer@example.com"})
	anonCtx   = context.Background()
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	cfg := &config.Config{DBDriver: "sqlite", DatabaseURL: ":memory:", DBConnectAttempts: 1}
	db, err := database.ConnectDB(ctx, cfg, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.Migrate(ctx, db, quietLogger()))
	return db
}

func validRequest(title string) dto.CatalogItemRequest {
	return dto.CatalogItemRequest{
		Title:         title,
		Format:        models.FormatBluRay,
		Is3D:          models.No,
		DigitalType:   models.DigitalNone,
		CaseType:      models.CasePlain,
		Status:        models.StatusOwned,
		Watched:       models.No,
		CoverImageURL: "https://img.example.com/" + title + ".jpg",
	}
}

func strPtr(s string) *string { return &s }

// MockCatalogItemRepository mocks the CatalogItemRepository interface
type MockCatalogItemRepository struct {
	mock.Mock
}

func (m *MockCatalogItemRepository) List(ctx context.Context, params query.Params) (*query.Result, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*query.Result), args.Error(1)
}

func (m *MockCatalogItemRepository) GetByID(ctx context.Context, id int64) (*models.CatalogItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CatalogItem), args.Error(1)
}

func (m *MockCatalogItemRepository) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCatalogItemRepository) Create(ctx context.Context, item *models.CatalogItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockCatalogItemRepository) Update(ctx context.Context, item *models.CatalogItem) (*models.CatalogItem, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CatalogItem), args.Error(1)
}

func (m *MockCatalogItemRepository) ToggleWatched(ctx context.Context, id int64) (*models.CatalogItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CatalogItem), args.Error(1)
}

var _ repository.CatalogItemRepository = (*MockCatalogItemRepository)(nil)
