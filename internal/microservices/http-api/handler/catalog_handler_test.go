package handler_test

import (
	"errors"
	"net/http"
	"testing"

	"movietracker/internal/microservices/http-api/dto"
	"movietracker/internal/microservices/http-api/models"
	"movietracker/internal/microservices/http-api/query"
	"movietracker/internal/microservices/http-api/repository"
	"movietracker/internal/microservices/http-api/service"
	"movietracker/internal/middleware/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleItem(id int64, title string) *models.CatalogItem {
	return &models.CatalogItem{
		ID: id, Title: title, Format: models.FormatBluRay, Is3D: models.No,
		DigitalType: models.DigitalNone, CaseType: models.CasePlain, Status: models.StatusOwned,
		CoverImageURL: stringPtr("https://img.example.com/" + title + ".jpg"), Watched: models.No,
	}
}

func TestCatalogHandler_List(t *testing.T) {
	s := setup()
	viewer := token(t, "viewer@example.com")

	res := query.NewResult(30, 2)
	res.Items = []models.CatalogItem{*sampleItem(7, "Heat")}

	s.catalog.On("List", mock.Anything, mock.MatchedBy(func(p query.Params) bool {
		return p.Page == 2 && p.Sort == query.SortTitle && p.Order == query.Ascending &&
			p.Filters.TitleContains != nil && *p.Filters.TitleContains == "he" &&
			p.Filters.Status == nil
	})).Return(res, nil)

	w := s.do(t, http.MethodGet, "/api/items?title=he&status=all&sort=title&order=asc&page=2", viewer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode[dto.CatalogListResponse](t, w)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Heat", body.Data[0].Title)
	assert.Equal(t, dto.Pagination{Page: 2, MaxPage: 2, PageSize: 25, Total: 30}, body.Pagination)
	s.catalog.AssertExpectations(t)
}

func TestCatalogHandler_ListRequiresSignIn(t *testing.T) {
	s := setup()

	w := s.do(t, http.MethodGet, "/api/items", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	s.catalog.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestCatalogHandler_Get(t *testing.T) {
	s := setup()
	viewer := token(t, "viewer@example.com")

	t.Run("Found", func(t *testing.T) {
		item := sampleItem(3, "Ronin")
		item.Titles = []models.ConstituentTitle{{ID: 9, ItemID: &item.ID, Title: stringPtr("Ronin")}}
		s.catalog.On("GetByID", mock.Anything, int64(3)).Return(item, nil).Once()

		w := s.do(t, http.MethodGet, "/api/items/3", viewer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode[dto.CatalogItemResponse](t, w)
		assert.Equal(t, int64(3), body.ID)
		require.Len(t, body.Titles, 1)
	})

	t.Run("NotFound", func(t *testing.T) {
		s.catalog.On("GetByID", mock.Anything, int64(4)).Return(nil, service.ErrNotFound).Once()
		w := s.do(t, http.MethodGet, "/api/items/4", viewer, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("BadID", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/items/abc", viewer, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCatalogHandler_Create(t *testing.T) {
	s := setup()
	admin := token(t, adminEmail)
	viewer := token(t, "viewer@example.com")

	req := dto.CatalogItemRequest{
		Title: "Heat", Format: models.FormatBluRay, Is3D: models.No, DigitalType: models.DigitalNone,
		CaseType: models.CasePlain, Status: models.StatusOwned, Watched: models.No,
		CoverImageURL: "https://img.example.com/heat.jpg",
	}

	t.Run("Created", func(t *testing.T) {
		s.catalog.On("Create", mock.Anything, req).Return(int64(11), nil).Once()
		w := s.do(t, http.MethodPost, "/api/items", admin, req)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, dto.CreatedResponse{ID: 11}, decode[dto.CreatedResponse](t, w))
	})

	t.Run("NotAdmin", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/items", viewer, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/items", admin, "{not json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Validation", func(t *testing.T) {
		bad := req
		bad.Title = ""
		s.catalog.On("Create", mock.Anything, bad).
			Return(int64(0), &service.ValidationError{Fields: map[string]string{"title": "is required"}}).Once()

		w := s.do(t, http.MethodPost, "/api/items", admin, bad)
		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decode[map[string]any](t, w)
		assert.Equal(t, map[string]any{"title": "is required"}, body["fields"])
	})
}

func TestCatalogHandler_UpdateAndToggle(t *testing.T) {
	s := setup()
	admin := token(t, adminEmail)

	req := dto.CatalogItemRequest{Title: "Heat 2"}
	updated := sampleItem(5, "Heat 2")
	s.catalog.On("Update", mock.Anything, int64(5), req).Return(updated, nil).Once()
	w := s.do(t, http.MethodPut, "/api/items/5", admin, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Heat 2", decode[dto.CatalogItemResponse](t, w).Title)

	order := int64(4)
	watched := sampleItem(5, "Heat 2")
	watched.Watched, watched.WatchOrder = models.Yes, &order
	s.catalog.On("ToggleWatched", mock.Anything, int64(5)).Return(watched, nil).Once()
	w = s.do(t, http.MethodPost, "/api/items/5/watched", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[dto.CatalogItemResponse](t, w)
	assert.Equal(t, models.Yes, body.Watched)
	require.NotNil(t, body.WatchOrder)
	assert.Equal(t, int64(4), *body.WatchOrder)

	s.catalog.On("ToggleWatched", mock.Anything, int64(6)).Return(nil, service.ErrNotFound).Once()
	w = s.do(t, http.MethodPost, "/api/items/6/watched", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"Unavailable", &repository.StoreError{Op: "list", Kind: repository.KindUnavailable, Err: errors.New("dial tcp")}, http.StatusServiceUnavailable},
		{"Constraint", &repository.StoreError{Op: "list", Kind: repository.KindConstraint, Err: errors.New("dup")}, http.StatusConflict},
		{"OtherStore", &repository.StoreError{Op: "list", Kind: repository.KindOther, Err: errors.New("syntax")}, http.StatusInternalServerError},
		{"NotSignedIn", auth.ErrNotSignedIn, http.StatusUnauthorized},
		{"NotAdmin", auth.ErrNotAdmin, http.StatusForbidden},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setup()
			s.catalog.On("List", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := s.do(t, http.MethodGet, "/api/items", token(t, "viewer@example.com"), nil)
			assert.Equal(t, tt.status, w.Code)
			assert.NotContains(t, w.Body.String(), "dial tcp")
		})
	}
}
