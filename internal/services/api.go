// API service for making raw HTTP requests to the TMDB API
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// APIService performs raw, authenticated GET requests against the TMDB API for debugging.
type APIService struct {
	urls       URLBuilder
	keys       KeySource
	httpClient *http.Client
}

// NewAPIService creates a new API service instance for the TMDB API.
func NewAPIService(urls URLBuilder, keys KeySource, client *http.Client) *APIService {
	if urls.Base == "" {
		urls = DefaultURLs
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{urls: urls, keys: keys, httpClient: client}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// requestURL joins path to the API base and adds api_key and language unless path sets them.
func (a *APIService) requestURL(path string) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u, err := url.Parse(a.urls.Base + path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}

	q := u.Query()
	if !q.Has("api_key") {
		key, err := a.keys.APIKey()
		if err != nil {
			return "", err
		}
		q.Set("api_key", key)
	}
	if !q.Has("language") {
		q.Set("language", a.urls.Language)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	fullURL, err := a.requestURL(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", redactErr(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}
