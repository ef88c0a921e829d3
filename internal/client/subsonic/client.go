package subsonic

import (
	"context"
	"crypto/md5" //nolint:gosec // The Subsonic protocol mandates MD5 token authentication.
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/aphonin/fonoteka/internal/config"
	transporthttp "github.com/aphonin/fonoteka/internal/transport/http"
)

// Client defines the interface for talking to a Subsonic-compatible media server.
type Client interface {
	// StartScan asks the server to rescan its media library.
	StartScan(ctx context.Context) error
}

// ClientImpl is the implementation of the Client interface.
type ClientImpl struct {
	cfg        *config.Config
	httpClient *http.Client
	baseURL    string
}

// scanResponse mirrors the envelope every Subsonic endpoint answers with.
type scanResponse struct {
	Wrapper struct {
		Status string `json:"status"`
		Error  struct {
			Code    int64  `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"subsonic-response"`
}

// NewClient creates a new instance of Client with the provided configuration.
func NewClient(cfg *config.Config) (Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.SubsonicURL), "/")

	parsedURL, err := url.Parse(baseURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, cfg.SubsonicURL)
	}

	httpClient := &http.Client{
		Transport: transporthttp.NewLogTransport(http.DefaultTransport, cfg.ParsedMaxLogLength),
		Timeout:   transporthttp.DefaultTimeout,
	}

	return &ClientImpl{
		cfg:        cfg,
		httpClient: httpClient,
		baseURL:    baseURL,
	}, nil
}

// StartScan asks the server to rescan its media library.
//
// Authentication follows the salted token scheme: a fresh salt is generated
// per request and the password itself never travels over the wire.
func (c *ClientImpl) StartScan(ctx context.Context) error {
	scanURL, err := url.JoinPath(c.baseURL, "rest", "startScan")
	if err != nil {
		return fmt.Errorf("failed to build scan URL: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, scanURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	salt := strings.ReplaceAll(uuid.NewString(), "-", "")
	token := md5.Sum([]byte(c.cfg.SubsonicPassword + salt)) //nolint:gosec // Mandated by the protocol.

	query := url.Values{}
	query.Set("u", c.cfg.SubsonicUsername)
	query.Set("t", hex.EncodeToString(token[:]))
	query.Set("s", salt)
	query.Set("v", apiVersion)
	query.Set("c", clientName)
	query.Set("f", "json")
	request.URL.RawQuery = query.Encode()

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}

	defer response.Body.Close() //nolint:errcheck // Closing the response body, error is not critical.

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	var result scanResponse
	if err = json.NewDecoder(response.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode scan response: %w", err)
	}

	if result.Wrapper.Status != statusOK {
		if result.Wrapper.Error.Message != "" {
			return fmt.Errorf("%w: %s (code %d)",
				ErrScanRejected,
				result.Wrapper.Error.Message,
				result.Wrapper.Error.Code)
		}

		return ErrScanRejected
	}

	return nil
}
