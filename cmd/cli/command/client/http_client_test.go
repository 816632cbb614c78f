package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"movietracker/internal/microservices/http-api/dto"
	"movietracker/internal/microservices/http-api/models"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "http://api.test"

func newMockedClient(t *testing.T) *HTTPClient {
	t.Helper()
	c := NewHTTPClient(base + "/")
	httpmock.ActivateNonDefault(c.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestLogin(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodPost, base+"/api/auth/login",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, dto.LoginResponse{AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 60}))

	res, err := c.Login(context.Background(), "admin@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", res.AccessToken)
}

func TestListItemsSendsTokenAndFilters(t *testing.T) {
	c := newMockedClient(t)
	c.SetToken("tok")

	httpmock.RegisterResponder(http.MethodGet, base+"/api/items", func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
		assert.Equal(t, "Steelbook", req.URL.Query().Get("case_type"))
		return httpmock.NewJsonResponse(http.StatusOK, dto.CatalogListResponse{
			Data:       []dto.CatalogItemResponse{{ID: 1, Title: "Heat"}},
			Pagination: dto.Pagination{Page: 1, MaxPage: 1, PageSize: 25, Total: 1},
		})
	})

	res, err := c.ListItems(context.Background(), url.Values{"case_type": {"Steelbook"}})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.EqualValues(t, 1, res.Pagination.Total)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestAPIError(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodPost, base+"/api/items",
		httpmock.NewJsonResponderOrPanic(http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": map[string]string{"title": "is required", "cover_image_url": "must be a valid URL"},
		}))
	httpmock.RegisterResponder(http.MethodDelete, base+"/api/titles/3",
		httpmock.NewStringResponder(http.StatusBadGateway, "<html>proxy</html>"))

	_, err := c.CreateItem(context.Background(), dto.CatalogItemRequest{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "validation failed: cover_image_url must be a valid URL; title is required (HTTP 400)", apiErr.Error())

	_, err = c.DeleteTitle(context.Background(), 3)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestItemRequest(t *testing.T) {
	cover := "https://img.example.com/x.jpg"
	date := "2024-05-14"
	req := ItemRequest(&dto.CatalogItemResponse{
		Title: "X", Format: models.FormatDVD, Watched: models.Yes, CoverImageURL: &cover, AvailableDate: &date,
	})
	assert.Equal(t, cover, req.CoverImageURL)
	assert.Equal(t, models.FormatDVD, req.Format)
	assert.Equal(t, &date, req.AvailableDate)
}
