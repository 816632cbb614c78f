package client

// http_client.go = talks to the movietracker HTTP API on behalf of the CLI.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"movietracker/internal/microservices/http-api/dto"
)

// defines the HTTP client structure and methods
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string            `json:"error"`
	Fields     map[string]string `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Message, strings.Join(parts, "; "), e.StatusCode)
}

// constructor for HTTP client
func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// set token for HTTP client
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer response.Body.Close() // Ensure the response body is closed

	if response.StatusCode < 200 || response.StatusCode > 299 {
		apiErr := &APIError{StatusCode: response.StatusCode}
		if err := json.NewDecoder(response.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(response.StatusCode)
		}
		return apiErr
	}

	if out == nil || response.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(out)
}

// login method for HTTP client
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	var result dto.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: email, Password: password}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*dto.MeResponse, error) {
	var result dto.MeResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListItems passes filters straight through as query parameters.
func (c *HTTPClient) ListItems(ctx context.Context, params url.Values) (*dto.CatalogListResponse, error) {
	path := "/api/items"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var result dto.CatalogListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetItem(ctx context.Context, id int64) (*dto.CatalogItemResponse, error) {
	var result dto.CatalogItemResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/items/%d", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) CreateItem(ctx context.Context, req dto.CatalogItemRequest) (int64, error) {
	var result dto.CreatedResponse
	if err := c.do(ctx, http.MethodPost, "/api/items", req, &result); err != nil {
		return 0, err
	}
	return result.ID, nil
}

func (c *HTTPClient) UpdateItem(ctx context.Context, id int64, req dto.CatalogItemRequest) (*dto.CatalogItemResponse, error) {
	var result dto.CatalogItemResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/items/%d", id), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ToggleWatched(ctx context.Context, id int64) (*dto.CatalogItemResponse, error) {
	var result dto.CatalogItemResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/items/%d/watched", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ListTitles(ctx context.Context, itemID int64) ([]dto.ConstituentTitleResponse, error) {
	var result struct {
		Data []dto.ConstituentTitleResponse `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/items/%d/titles", itemID), nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *HTTPClient) AddTitle(ctx context.Context, itemID int64, req dto.ConstituentTitleRequest) (int64, error) {
	var result dto.CreatedResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/items/%d/titles", itemID), req, &result); err != nil {
		return 0, err
	}
	return result.ID, nil
}

func (c *HTTPClient) DeleteTitle(ctx context.Context, id int64) (int64, error) {
	var result dto.DeleteResponse
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/titles/%d", id), nil, &result); err != nil {
		return 0, err
	}
	return result.Deleted, nil
}

// ItemRequest turns a fetched item back into a full-replace request body.
func ItemRequest(item *dto.CatalogItemResponse) dto.CatalogItemRequest {
	req := dto.CatalogItemRequest{
		Title:         item.Title,
		Format:        item.Format,
		Is3D:          item.Is3D,
		DigitalType:   item.DigitalType,
		CaseType:      item.CaseType,
		Status:        item.Status,
		Watched:       item.Watched,
		Notes:         item.Notes,
		AvailableDate: item.AvailableDate,
	}
	if item.CoverImageURL != nil {
		req.CoverImageURL = *item.CoverImageURL
	}
	return req
}
