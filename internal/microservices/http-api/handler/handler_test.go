package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"movietracker/internal/microservices/http-api/dto"
	"movietracker/internal/microservices/http-api/handler"
	"movietracker/internal/microservices/http-api/middleware"
	"movietracker/internal/microservices/http-api/models"
	"movietracker/internal/microservices/http-api/query"
	"movietracker/internal/middleware/auth"
	"movietracker/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "0123456789abcdef0123456789abcdef"
	adminEmail = "admin@example.com"
)

func stringPtr(s string) *string { return &s }

// --- MOCK SERVICES ---

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) List(ctx context.Context, params query.Params) (*query.Result, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*query.Result), args.Error(1)
}

func (m *MockCatalogService) GetByID(ctx context.Context, id int64) (*models.CatalogItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CatalogItem), args.Error(1)
}

func (m *MockCatalogService) Create(ctx context.Context, req dto.CatalogItemRequest) (int64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogService) Update(ctx context.Context, id int64, req dto.CatalogItemRequest) (*models.CatalogItem, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CatalogItem), args.Error(1)
}

func (m *MockCatalogService) ToggleWatched(ctx context.Context, id int64) (*models.CatalogItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CatalogItem), args.Error(1)
}

type MockConstituentTitleService struct {
	mock.Mock
}

func (m *MockConstituentTitleService) ListByItem(ctx context.Context, itemID int64) ([]models.ConstituentTitle, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ConstituentTitle), args.Error(1)
}

func (m *MockConstituentTitleService) Add(ctx context.Context, itemID int64, req dto.ConstituentTitleRequest) (*models.ConstituentTitle, error) {
	args := m.Called(ctx, itemID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ConstituentTitle), args.Error(1)
}

func (m *MockConstituentTitleService) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LoginResponse), args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context) (*dto.MeResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MeResponse), args.Error(1)
}

// --- SETUP ---

type testServer struct {
	router  *gin.Engine
	catalog *MockCatalogService
	titles  *MockConstituentTitleService
	auth    *MockAuthService
}

func setup() *testServer {
	gin.SetMode(gin.TestMode)
	gate := auth.NewGate(adminEmail)

	s := &testServer{
		router:  gin.New(),
		catalog: new(MockCatalogService),
		titles:  new(MockConstituentTitleService),
		auth:    new(MockAuthService),
	}

	api := s.router.Group("/api")
	api.Use(middleware.AuthMiddleware(auth.NewHMACVerifier(testSecret, "movietracker", "")))

	titles := handler.NewConstituentTitleHandler(s.titles, gate)
	handler.NewCatalogHandler(s.catalog, gate).RegisterRoutes(api.Group("/items"))
	titles.RegisterItemRoutes(api.Group("/items/:item_id/titles"))
	titles.RegisterRoutes(api.Group("/titles"))
	handler.NewAuthHandler(s.auth, gate, false).RegisterRoutes(api.Group("/auth"))
	return s
}

func token(t *testing.T, email string) string {
	t.Helper()
	tok, _, err := auth.NewTokenIssuer(testSecret, "movietracker", "", time.Hour).
		Issue(shared.Identity{UserID: "u-" + email, Email: email})
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}
