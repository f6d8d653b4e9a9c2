package amenity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPProvider fetches amenities from an upstream open-data service.
type HTTPProvider struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPProvider(baseURL, token string) *HTTPProvider {
	return &HTTPProvider{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPProvider) doReq(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("amenity service GET %s: %d %s", path, resp.StatusCode, string(body))
	}
	return body, nil
}

func (c *HTTPProvider) FetchAmenities(ctx context.Context, category Category) ([]Amenity, error) {
	data, err := c.doReq(ctx, "/api/v1/amenities?category="+url.QueryEscape(string(category)))
	if err != nil {
		return nil, err
	}
	var list []Amenity
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode amenities: %w", err)
	}
	for i := range list {
		if list[i].Category == "" {
			list[i].Category = category
		}
	}
	return Dedupe(list), nil
}
