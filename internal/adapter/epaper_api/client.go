package epaper_api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"epaper-clip/internal/domain"
)

const maxResponseBytes = 4 << 20

// HTTPEpaperClient implements domain.EpaperClient against the e-paper REST API.
type HTTPEpaperClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

func NewHTTPEpaperClient(baseURL, apiKey string, httpClient *http.Client, logger *slog.Logger) *HTTPEpaperClient {
	return &HTTPEpaperClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}
}

// FetchEpaper loads branding and the edition list from GET /api/epaper.
func (c *HTTPEpaperClient) FetchEpaper(ctx context.Context) (*domain.Epaper, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/api/epaper", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch epaper: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch epaper: unexpected status code: %d", status)
	}

	data, err := unwrap(body)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch epaper: %w", err)
	}
	var dto epaperDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("failed to decode epaper: %w", err)
	}

	ep := dto.toDomain(c.now())
	c.logger.InfoContext(ctx, "fetched epaper branding",
		slog.Int("editions", len(ep.Editions)),
		slog.Bool("top_logo", ep.Branding.Top.LogoURL != ""),
		slog.Bool("bottom_logo", ep.Branding.Bottom.LogoURL != ""))
	return ep, nil
}

// CreateClip posts a clip record. Rejections map to publish_failed and
// deadline expiry to network_timeout.
func (c *HTTPEpaperClient) CreateClip(ctx context.Context, req domain.CreateClipRequest) (*domain.ClipRecord, error) {
	payload := createClipRequestDTO{
		PaperID: req.PaperID,
		Page:    req.Page,
		Coordinates: coordinatesDTO{
			X:      req.Coordinates.X,
			Y:      req.Coordinates.Y,
			Width:  req.Coordinates.Width,
			Height: req.Coordinates.Height,
		},
		ImageURL: req.ImageURL,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.PublishFailedError("failed to encode clip request", err, nil)
	}

	status, body, err := c.do(ctx, http.MethodPost, "/api/clippings", raw)
	if err != nil {
		if isTimeout(err) {
			return nil, domain.NetworkTimeoutError("clip create timed out", err, nil)
		}
		return nil, domain.PublishFailedError("clip create request failed", err, nil)
	}
	if status < 200 || status > 299 {
		return nil, domain.PublishFailedError("clip create rejected", nil, map[string]any{
			"status_code": status,
			"body":        truncate(body, 256),
		})
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, domain.PublishFailedError("failed to decode clip response", err, nil)
	}
	if env.Success == nil || !*env.Success {
		return nil, domain.PublishFailedError("clip create reported failure", nil, map[string]any{
			"message": env.Message,
		})
	}
	var dto clipDTO
	if err := json.Unmarshal(env.Data, &dto); err != nil {
		return nil, domain.PublishFailedError("failed to decode clip data", err, nil)
	}

	rec := dto.toDomain()
	if rec.ClipID == "" {
		return nil, domain.PublishFailedError("clip response missing clipId", nil, nil)
	}
	if rec.PaperID == "" {
		rec.PaperID = req.PaperID
		rec.Page = req.Page
		rec.Coordinates = req.Coordinates
	}
	if rec.ImageURL == "" {
		rec.ImageURL = req.ImageURL
	}
	return rec, nil
}

// GetClip resolves a clip id through GET /api/clippings/{clipId}.
func (c *HTTPEpaperClient) GetClip(ctx context.Context, clipID string) (*domain.ClipRecord, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/api/clippings/"+url.PathEscape(clipID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch clip: %w", err)
	}
	switch {
	case status == http.StatusNotFound:
		return nil, domain.ErrClipNotFound
	case status != http.StatusOK:
		return nil, fmt.Errorf("failed to fetch clip: unexpected status code: %d", status)
	}

	data, err := unwrap(body)
	if err != nil {
		if errors.Is(err, errUnsuccessful) {
			return nil, domain.ErrClipNotFound
		}
		return nil, fmt.Errorf("failed to fetch clip: %w", err)
	}
	var dto clipDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("failed to decode clip: %w", err)
	}
	rec := dto.toDomain()
	if rec.ClipID == "" {
		rec.ClipID = clipID
	}
	return rec, nil
}

func (c *HTTPEpaperClient) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

var errUnsuccessful = errors.New("api reported success=false")

// unwrap returns the data member of an envelope, or the whole body when the
// response is not enveloped.
func unwrap(body []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if env.Success != nil && !*env.Success {
		return nil, fmt.Errorf("%w: %s", errUnsuccessful, env.Message)
	}
	if env.Success == nil && len(env.Data) == 0 {
		return body, nil
	}
	return env.Data, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
