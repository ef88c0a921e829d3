package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aphonin/fonoteka/internal/config"
	"github.com/aphonin/fonoteka/internal/logger"
	http_transport "github.com/aphonin/fonoteka/internal/transport/http"
	"github.com/aphonin/fonoteka/internal/utils"
	"github.com/aphonin/fonoteka/internal/version"
)

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

// Client defines the interface for interacting with the catalog service.
type Client interface {
	// GetTrackManifest fetches the delivery manifest for a track at the requested quality.
	GetTrackManifest(ctx context.Context, trackID int64, quality string) (*TrackManifest, error)
	// GetAlbum fetches full album metadata including the ordered track list.
	GetAlbum(ctx context.Context, albumID int64) (*Album, error)
	// SearchTracks searches the catalog for tracks matching the query.
	SearchTracks(ctx context.Context, searchQuery string) ([]*TrackSummary, error)
	// SearchAlbums searches the catalog for albums matching the query.
	SearchAlbums(ctx context.Context, searchQuery string) ([]*AlbumSummary, error)
	// FetchImage fetches the cover image identified by the given UUID.
	FetchImage(ctx context.Context, cover uuid.UUID) (io.ReadCloser, error)
	// FetchURL performs a plain GET of the given URL and returns the response body.
	FetchURL(ctx context.Context, targetURL string) (io.ReadCloser, error)
	// GetBaseURL returns the base URL of the catalog service.
	GetBaseURL() string
}

// ClientImpl implements the Client interface.
type ClientImpl struct {
	// cfg holds the application configuration.
	cfg *config.Config
	// httpClient executes all catalog requests.
	httpClient *http.Client
	// baseURL is the catalog base URL without a trailing slash.
	baseURL string
	// albumsCache keeps album metadata for the duration of the process,
	// so repeated album IDs on the command line cost one request.
	albumsCache *lru.Cache[int64, *Album]
}

// NewClient creates and returns a new instance of ClientImpl.
func NewClient(cfg *config.Config) (Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.CatalogBaseURL), "/")

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}

	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBaseURL, cfg.CatalogBaseURL)
	}

	albumsCache, err := lru.New[int64, *Album](albumsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create albums cache: %w", err)
	}

	httpClient := &http.Client{
		Transport: http_transport.NewUserAgentInjector(
			http_transport.NewLogTransport(http.DefaultTransport, cfg.ParsedMaxLogLength),
			utils.NewSimpleUserAgentProvider(userAgent())),
		Timeout: http_transport.DefaultTimeout,
	}

	return &ClientImpl{
		cfg:         cfg,
		httpClient:  httpClient,
		baseURL:     baseURL,
		albumsCache: albumsCache,
	}, nil
}

// userAgent identifies this client to the catalog service.
func userAgent() string {
	return "fonoteka/" + version.Short()
}

// GetTrackManifest fetches the delivery manifest for a track at the requested quality.
func (c *ClientImpl) GetTrackManifest(ctx context.Context, trackID int64, quality string) (*TrackManifest, error) {
	query := url.Values{}
	query.Set("id", strconv.FormatInt(trackID, 10))
	query.Set("quality", quality)

	result, err := fetchJSONWithQuery[TrackManifest](c, ctx, catalogTrackURI, query)
	if err != nil {
		return nil, err
	}

	return result.Data, nil
}

// GetAlbum fetches full album metadata including the ordered track list.
// Results are cached for the duration of the process.
func (c *ClientImpl) GetAlbum(ctx context.Context, albumID int64) (*Album, error) {
	if album, ok := c.albumsCache.Get(albumID); ok {
		logger.Debugf(ctx, "Album %d was found in cache", albumID)

		return album, nil
	}

	query := url.Values{}
	query.Set("id", strconv.FormatInt(albumID, 10))

	result, err := fetchJSONWithQuery[Album](c, ctx, catalogAlbumURI, query)
	if err != nil {
		return nil, err
	}

	c.albumsCache.Add(albumID, result.Data)

	return result.Data, nil
}

// SearchTracks searches the catalog for tracks matching the query.
func (c *ClientImpl) SearchTracks(ctx context.Context, searchQuery string) ([]*TrackSummary, error) {
	query := url.Values{}
	query.Set("s", searchQuery)

	result, err := fetchJSONWithQuery[searchResults[*TrackSummary]](c, ctx, catalogSearchURI, query)
	if err != nil {
		return nil, err
	}

	return result.Data.Items, nil
}

// SearchAlbums searches the catalog for albums matching the query.
func (c *ClientImpl) SearchAlbums(ctx context.Context, searchQuery string) ([]*AlbumSummary, error) {
	query := url.Values{}
	query.Set("al", searchQuery)

	result, err := fetchJSONWithQuery[searchResults[*AlbumSummary]](c, ctx, catalogSearchURI, query)
	if err != nil {
		return nil, err
	}

	return result.Data.Items, nil
}

// FetchImage fetches the cover image identified by the given UUID.
// The image store addresses covers by the UUID with its dashes replaced by path separators.
func (c *ClientImpl) FetchImage(ctx context.Context, cover uuid.UUID) (io.ReadCloser, error) {
	imagePath := strings.ReplaceAll(cover.String(), "-", "/")

	imageURL, err := url.JoinPath(c.baseURL, catalogImagesURI, imagePath, coverImageFilename)
	if err != nil {
		return nil, err
	}

	body, contentType, err := c.get(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	if contentType != utils.ImageJPEGMimeType && contentType != utils.ImagePNGMimeType {
		logger.Warnf(ctx, "Unexpected cover content type '%s' for image %s", contentType, cover)
	}

	return body, nil
}

// FetchURL performs a plain GET of the given URL and returns the response body.
func (c *ClientImpl) FetchURL(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	body, _, err := c.get(ctx, targetURL)

	return body, err
}

// GetBaseURL returns the base URL of the catalog service.
func (c *ClientImpl) GetBaseURL() string {
	return c.baseURL
}

// get performs a GET request, verifies the status code and hands the body to the caller.
func (c *ClientImpl) get(ctx context.Context, targetURL string) (io.ReadCloser, string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, http.NoBody)
	if err != nil {
		return nil, "", err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, "", err
	}

	if response.StatusCode != http.StatusOK {
		err = statusError(response)

		response.Body.Close() //nolint:errcheck,gosec // Error on close is not critical here.

		return nil, "", err
	}

	return response.Body, response.Header.Get("Content-Type"), nil
}
