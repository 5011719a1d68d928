package imagefetch

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epaper-clip/internal/infra/httpclient"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 0xff, A: 0xff})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestHTTPImageLoader_LoadImage(t *testing.T) {
	body := pngBytes(t, 12, 7)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/logo.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(body)
		case "/page.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	l := NewHTTPImageLoader(srv.Client(), Options{AllowPrivate: true}, discard())

	img, err := l.LoadImage(context.Background(), srv.URL+"/logo.png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 12, 7), img.Bounds())

	_, err = l.LoadImage(context.Background(), srv.URL+"/page.html")
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = l.LoadImage(context.Background(), srv.URL+"/missing.png")
	assert.ErrorContains(t, err, "404")
}

func TestHTTPImageLoader_SizeLimit(t *testing.T) {
	body := pngBytes(t, 64, 64)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	l := NewHTTPImageLoader(srv.Client(), Options{MaxBytes: 32, AllowPrivate: true}, discard())
	_, err := l.LoadImage(context.Background(), srv.URL+"/big.png")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestHTTPImageLoader_DataURLAndFiles(t *testing.T) {
	body := pngBytes(t, 3, 4)
	l := NewHTTPImageLoader(http.DefaultClient, Options{}, discard())

	img, err := l.LoadImage(context.Background(), "data:image/png;base64,"+base64.StdEncoding.EncodeToString(body))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dy())

	path := filepath.Join(t.TempDir(), "page.png")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	_, err = l.LoadImage(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnsupportedScheme)

	fileLoader := NewHTTPImageLoader(http.DefaultClient, Options{AllowFile: true}, discard())
	img, err = fileLoader.LoadImage(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())

	_, err = fileLoader.LoadImage(context.Background(), "file://"+path)
	require.NoError(t, err)

	_, err = l.LoadImage(context.Background(), "ftp://example.com/a.png")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

// hugePNG is a valid PNG header declaring w x h pixels with no image data.
func hugePNG(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA
	chunk := append([]byte("IHDR"), ihdr...)

	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestHTTPImageLoader_PixelLimit(t *testing.T) {
	l := NewHTTPImageLoader(http.DefaultClient, Options{}, discard())

	bomb := "data:image/png;base64," + base64.StdEncoding.EncodeToString(hugePNG(60000, 60000))
	_, err := l.LoadImage(context.Background(), bomb)
	assert.ErrorIs(t, err, ErrTooManyPixels)

	small := NewHTTPImageLoader(http.DefaultClient, Options{MaxPixels: 10}, discard())
	_, err = small.LoadImage(context.Background(), "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngBytes(t, 4, 4)))
	assert.ErrorIs(t, err, ErrTooManyPixels)

	img, err := l.LoadImage(context.Background(), "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngBytes(t, 4, 4)))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestHTTPImageLoader_BlocksInternalDestinations(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes(t, 4, 4))
	}))
	defer srv.Close()

	l := NewHTTPImageLoader(httpclient.NewGuardedClient(time.Second, httpclient.Guard{}), Options{}, discard())

	for _, u := range []string{
		srv.URL + "/internal/admin.png",
		"http://127.0.0.1/a.png",
		"http://localhost/a.png",
		"http://[::1]/a.png",
		"http://10.0.0.5/a.png",
		"http://192.168.1.1/a.png",
		"http://169.254.169.254/latest/meta-data/",
		"http://metadata.google.internal/computeMetadata/v1/",
		"http://printer.local/a.png",
		"http://cdn.example:22/a.png",
		"http://user:pw@cdn.example/a.png",
	} {
		_, err := l.LoadImage(context.Background(), u)
		assert.ErrorIs(t, err, httpclient.ErrBlockedDestination, u)
	}
	assert.Zero(t, hits.Load())
}

type countingLoader struct {
	calls atomic.Int32
	fail  bool
}

func (c *countingLoader) LoadImage(_ context.Context, _ string) (image.Image, error) {
	c.calls.Add(1)
	if c.fail {
		return nil, assert.AnError
	}
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func TestCachedLoader(t *testing.T) {
	next := &countingLoader{}
	c := NewCachedLoader(next, 4, time.Minute)
	var hits, misses int
	c.OnLookup = func(hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	}

	for i := 0; i < 3; i++ {
		_, err := c.LoadImage(context.Background(), "https://cdn.example/a.png")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), next.calls.Load())
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, misses)
	assert.Equal(t, 1, c.Len())
}

func TestCachedLoader_DoesNotCacheFailures(t *testing.T) {
	next := &countingLoader{fail: true}
	c := NewCachedLoader(next, 4, time.Minute)

	_, err := c.LoadImage(context.Background(), "https://cdn.example/a.png")
	require.Error(t, err)
	_, err = c.LoadImage(context.Background(), "https://cdn.example/a.png")
	require.Error(t, err)

	assert.Equal(t, int32(2), next.calls.Load())
	assert.Zero(t, c.Len())
}

type blockingLoader struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingLoader) LoadImage(ctx context.Context, _ string) (image.Image, error) {
	if b.calls.Add(1) == 1 {
		close(b.started)
	}
	<-b.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

func TestCachedLoader_CancelledCallerDoesNotFailOthers(t *testing.T) {
	next := &blockingLoader{started: make(chan struct{}), release: make(chan struct{})}
	c := NewCachedLoader(next, 4, time.Minute)
	const url = "https://cdn.example/p1/3.png"

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.LoadImage(firstCtx, url)
		firstErr <- err
	}()
	<-next.started

	second := make(chan image.Image, 1)
	go func() {
		img, err := c.LoadImage(context.Background(), url)
		assert.NoError(t, err)
		second <- img
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	time.Sleep(20 * time.Millisecond)
	close(next.release)
	img := <-second
	require.NotNil(t, img)
	assert.Equal(t, int32(1), next.calls.Load())
	assert.Equal(t, 1, c.Len())
}
