package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/recipecrafter/backend/internal/metrics"
)

const maxImageBytes = 5 << 20

// ImageService resolves ingredient images through a provider, with an optional
// cache in front and an optional object store mirror behind it
type ImageService struct {
	provider ImageProvider
	cache    ImageCache
	cacheTTL time.Duration
	store    ObjectStore
	client   *http.Client
	log      *zap.Logger
	metrics  *metrics.Metrics
}

// ImageServiceOption configures optional ImageService collaborators
type ImageServiceOption func(*ImageService)

// WithImageCache caches resolved URLs for ttl
func WithImageCache(cache ImageCache, ttl time.Duration) ImageServiceOption {
	return func(s *ImageService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithObjectStore copies every resolved image into store and serves the copy
func WithObjectStore(store ObjectStore) ImageServiceOption {
	return func(s *ImageService) {
		s.store = store
	}
}

// NewImageService creates a new ImageService instance
func NewImageService(provider ImageProvider, log *zap.Logger, m *metrics.Metrics, opts ...ImageServiceOption) *ImageService {
	s := &ImageService{
		provider: provider,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log,
		metrics:  m,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup returns an image URL for the ingredient. It returns ErrImageNotFound
// when the provider has no match and wraps ErrImageLookupFailed otherwise.
func (s *ImageService) Lookup(ctx context.Context, ingredient string) (string, error) {
	key := NormalizeName(ingredient)
	if key == "" {
		return "", ErrImageNotFound
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn("Image cache read failed", zap.String("ingredient", key), zap.Error(err))
		} else if ok {
			s.metrics.ImageCacheHit()
			return cached, nil
		}
	}

	imageURL, err := s.provider.Lookup(ctx, key)
	if err != nil {
		if errors.Is(err, ErrImageNotFound) {
			s.metrics.ImageLookup(s.provider.Name(), metrics.OutcomeNotFound)
			return "", err
		}
		s.metrics.ImageLookup(s.provider.Name(), metrics.OutcomeError)
		s.log.Error("Error fetching ingredient image",
			zap.String("provider", s.provider.Name()),
			zap.String("ingredient", key),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %w", ErrImageLookupFailed, err)
	}
	s.metrics.ImageLookup(s.provider.Name(), metrics.OutcomeSuccess)

	if s.store != nil {
		mirrored, err := s.mirror(ctx, key, imageURL)
		if err != nil {
			// Serve the provider URL when the mirror is unavailable
			s.log.Warn("Failed to mirror image, returning original URL", zap.String("ingredient", key), zap.Error(err))
		} else {
			imageURL = mirrored
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, imageURL, s.cacheTTL); err != nil {
			s.log.Warn("Image cache write failed", zap.String("ingredient", key), zap.Error(err))
		}
	}

	return imageURL, nil
}

// mirror downloads the image and uploads it to the object store
func (s *ImageService) mirror(ctx context.Context, ingredient, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image, status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) > maxImageBytes {
		return "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return s.store.PutObject(ctx, objectKey(ingredient, imageURL), contentType, data)
}

// objectKey derives a stable storage key so repeated lookups overwrite the
// same object
func objectKey(ingredient, imageURL string) string {
	ext := ".jpg"
	if u, err := url.Parse(imageURL); err == nil {
		if e := path.Ext(u.Path); e != "" {
			ext = strings.ToLower(e)
		}
	}
	slug := strings.Join(strings.Fields(ingredient), "-")
	return "ingredient-images/" + url.PathEscape(slug) + ext
}
