// Package imagefetch loads and decodes remote rasters (page images, banner logos).
package imagefetch

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	_ "golang.org/x/image/webp"

	"epaper-clip/internal/infra/httpclient"
)

const (
	DefaultMaxBytes  = 25 << 20
	DefaultMaxPixels = 40_000_000
)

var (
	ErrUnsupportedScheme = errors.New("unsupported image url scheme")
	ErrTooLarge          = errors.New("image exceeds size limit")
	ErrNotImage          = errors.New("response is not an image")
	ErrTooManyPixels     = errors.New("image dimensions exceed pixel limit")
)

type Options struct {
	MaxBytes int64
	// MaxPixels bounds width*height, checked from the header before the
	// pixel buffer is allocated.
	MaxPixels int64
	// AllowFile enables file:// URLs and bare paths. Only the CLI sets it.
	AllowFile bool
	// AllowPrivate lets http(s) URLs name loopback and private hosts.
	// Pair it with a client built from the same httpclient.Guard.
	AllowPrivate bool
}

// HTTPImageLoader implements domain.ImageLoader over HTTP(S), data: URLs and,
// optionally, local files.
type HTTPImageLoader struct {
	httpClient *http.Client
	opts       Options
	logger     *slog.Logger
}

func NewHTTPImageLoader(httpClient *http.Client, opts Options, logger *slog.Logger) *HTTPImageLoader {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = DefaultMaxPixels
	}
	return &HTTPImageLoader{httpClient: httpClient, opts: opts, logger: logger}
}

func (l *HTTPImageLoader) LoadImage(ctx context.Context, rawURL string) (image.Image, error) {
	data, err := l.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", redact(rawURL), err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > l.opts.MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", redact(rawURL), err)
	}
	l.logger.DebugContext(ctx, "image loaded",
		"url", redact(rawURL),
		"format", format,
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy())
	return img, nil
}

func (l *HTTPImageLoader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.HasPrefix(rawURL, "data:") {
		return decodeDataURL(rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid image url: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
		guard := httpclient.Guard{AllowPrivate: l.opts.AllowPrivate}
		if err := guard.CheckURL(u); err != nil {
			return nil, err
		}
		return l.fetchHTTP(ctx, u)
	case "file", "":
		if !l.opts.AllowFile {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
		}
		path := u.Path
		if u.Scheme == "" {
			path = rawURL
		}
		return l.readFile(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func (l *HTTPImageLoader) fetchHTTP(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "image/webp, image/png, image/jpeg, image/gif")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch image: unexpected status code: %d", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "image/") && !strings.HasPrefix(ct, "application/octet-stream") {
		return nil, fmt.Errorf("%w: content type %q", ErrNotImage, ct)
	}
	if resp.ContentLength > l.opts.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}
	return readLimited(resp.Body, l.opts.MaxBytes)
}

func (l *HTTPImageLoader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()
	return readLimited(f, l.opts.MaxBytes)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}

func decodeDataURL(raw string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("invalid data url")
	}
	if !strings.HasPrefix(meta, "image/") {
		return nil, fmt.Errorf("%w: data url type %q", ErrNotImage, meta)
	}
	if !strings.HasSuffix(meta, ";base64") {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("invalid data url: %w", err)
		}
		return []byte(unescaped), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid data url: %w", err)
	}
	return data, nil
}

// redact keeps data URLs out of logs.
func redact(raw string) string {
	if strings.HasPrefix(raw, "data:") {
		meta, _, _ := strings.Cut(raw, ",")
		return meta + ",..."
	}
	return raw
}
