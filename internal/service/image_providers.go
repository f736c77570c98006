package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pageza/recipecrafter/backend/config"
)

const spoonacularImageBase = "https://spoonacular.com/cdn/ingredients_250x250/"

// NewImageProvider returns the provider selected by IMAGE_PROVIDER
func NewImageProvider(cfg *config.Config) (ImageProvider, error) {
	switch cfg.ImageProvider {
	case "spoonacular":
		return NewSpoonacularProvider(cfg.SpoonacularAPIKey, cfg.SpoonacularBaseURL), nil
	case "unsplash":
		return NewUnsplashProvider(cfg.UnsplashAccessKey, cfg.UnsplashBaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported image provider %q", cfg.ImageProvider)
	}
}

// SpoonacularProvider searches the Spoonacular ingredient catalogue
type SpoonacularProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewSpoonacularProvider(apiKey, baseURL string) *SpoonacularProvider {
	return &SpoonacularProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *SpoonacularProvider) Name() string { return "spoonacular" }

func (p *SpoonacularProvider) Lookup(ctx context.Context, ingredient string) (string, error) {
	params := url.Values{}
	params.Set("query", ingredient)
	params.Set("apiKey", p.apiKey)
	params.Set("number", "1")

	var result struct {
		Results []struct {
			Name  string `json:"name"`
			Image string `json:"image"`
		} `json:"results"`
	}
	if err := getJSON(ctx, p.client, p.baseURL+"/food/ingredients/search?"+params.Encode(), nil, &result); err != nil {
		return "", fmt.Errorf("spoonacular: %w", err)
	}

	if len(result.Results) == 0 || result.Results[0].Image == "" {
		return "", ErrImageNotFound
	}
	return spoonacularImageBase + result.Results[0].Image, nil
}

// UnsplashProvider searches Unsplash photos
type UnsplashProvider struct {
	accessKey string
	baseURL   string
	client    *http.Client
}

func NewUnsplashProvider(accessKey, baseURL string) *UnsplashProvider {
	return &UnsplashProvider{
		accessKey: accessKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *UnsplashProvider) Name() string { return "unsplash" }

func (p *UnsplashProvider) Lookup(ctx context.Context, ingredient string) (string, error) {
	params := url.Values{}
	params.Set("query", ingredient)
	params.Set("per_page", "1")

	headers := map[string]string{
		"Authorization":  "Client-ID " + p.accessKey,
		"Accept-Version": "v1",
	}

	var result struct {
		Results []struct {
			URLs struct {
				Small   string `json:"small"`
				Regular string `json:"regular"`
			} `json:"urls"`
		} `json:"results"`
	}
	if err := getJSON(ctx, p.client, p.baseURL+"/search/photos?"+params.Encode(), headers, &result); err != nil {
		return "", fmt.Errorf("unsplash: %w", err)
	}

	if len(result.Results) == 0 {
		return "", ErrImageNotFound
	}
	urls := result.Results[0].URLs
	if urls.Small != "" {
		return urls.Small, nil
	}
	if urls.Regular != "" {
		return urls.Regular, nil
	}
	return "", ErrImageNotFound
}

func getJSON(ctx context.Context, client *http.Client, endpoint string, headers map[string]string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
