package clip_http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"epaper-clip/internal/adapter/clip_http"
	"epaper-clip/internal/domain"
	"epaper-clip/internal/mocks"
	"epaper-clip/internal/usecase"
)

type stubClipUsecase struct {
	snapshot *usecase.SessionSnapshot
	err      error
	image    *usecase.SessionImage
	clip     *domain.ClipRecord

	lastOrigin  string
	lastGesture usecase.GestureInput
	lastStart   usecase.StartSessionInput
}

func (s *stubClipUsecase) StartSession(_ context.Context, in usecase.StartSessionInput) (*usecase.SessionSnapshot, error) {
	s.lastStart = in
	return s.snapshot, s.err
}

func (s *stubClipUsecase) ApplyGesture(_ context.Context, _ string, g usecase.GestureInput) (*usecase.SessionSnapshot, error) {
	s.lastGesture = g
	return s.snapshot, s.err
}

func (s *stubClipUsecase) Share(_ context.Context, _ string, origin string) (*usecase.SessionSnapshot, error) {
	s.lastOrigin = origin
	return s.snapshot, s.err
}

func (s *stubClipUsecase) Cancel(context.Context, string) error { return s.err }

func (s *stubClipUsecase) Snapshot(context.Context, string) (*usecase.SessionSnapshot, error) {
	return s.snapshot, s.err
}

func (s *stubClipUsecase) Image(context.Context, string) (*usecase.SessionImage, error) {
	return s.image, s.err
}

func (s *stubClipUsecase) ResolveClip(context.Context, string) (*domain.ClipRecord, error) {
	return s.clip, s.err
}

type stubBranding struct {
	ep *domain.Epaper
}

func (s *stubBranding) Snapshot(context.Context) (*domain.Epaper, error) { return s.ep, nil }
func (s *stubBranding) Refresh(context.Context) (*domain.Epaper, error)  { return s.ep, nil }

func newServer(t *testing.T, uc usecase.ClipShareUsecase, store domain.ClipImageStore, limit echo.MiddlewareFunc) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.Validator = clip_http.NewValidator()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := clip_http.NewHandler(uc, &stubBranding{ep: &domain.Epaper{}}, store, "https://news.example", "", logger)
	h.RegisterRoutes(e, limit)
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func readySnapshot() *usecase.SessionSnapshot {
	return &usecase.SessionSnapshot{
		ID:        "s1",
		PaperID:   "p1",
		Page:      3,
		State:     domain.StateReady,
		Selection: domain.SelectionRect{X: 50, Y: 50, Width: 200, Height: 150},
		Active:    true,
		ClipID:    "42",
		ShareURL:  "https://news.example/clip/42",
		Links:     domain.BuildShareLinks("https://news.example/clip/42", domain.DefaultShareCaption),
		HasImage:  true,
		UpdatedAt: time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC),
	}
}

func TestStartSession(t *testing.T) {
	uc := &stubClipUsecase{snapshot: &usecase.SessionSnapshot{ID: "s1", State: domain.StateSelecting, Active: true}}
	e := newServer(t, uc, nil, nil)

	rec := do(e, http.MethodPost, "/v1/clip-sessions",
		`{"paperId":"p1","page":3,"surfaceWidth":800,"surfaceHeight":1000,"viewport":{"x":0,"y":100,"width":800,"height":600}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp clip_http.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "selecting", resp.State)
	assert.Equal(t, 800.0, uc.lastStart.Displayed.Width)
	assert.Equal(t, 600.0, uc.lastStart.Viewport.Height)
}

func TestStartSession_Validation(t *testing.T) {
	e := newServer(t, &stubClipUsecase{}, nil, nil)

	rec := do(e, http.MethodPost, "/v1/clip-sessions", `{"page":0,"surfaceWidth":5,"surfaceHeight":1000}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Errors, "paperId")
	assert.Contains(t, body.Errors, "page")
	assert.Equal(t, "surfaceWidth must be at least 20", body.Errors["surfaceWidth"])
}

func TestStartSession_PageURLNotAllowed(t *testing.T) {
	uc := &stubClipUsecase{err: domain.ErrPageURLNotAllowed}
	e := newServer(t, uc, nil, nil)

	rec := do(e, http.MethodPost, "/v1/clip-sessions",
		`{"paperId":"p1","page":3,"surfaceWidth":800,"surfaceHeight":1000,"pageImageUrl":"http://169.254.169.254/latest/meta-data/"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "http://169.254.169.254/latest/meta-data/", uc.lastStart.PageImageURL)
}

func TestApplyGesture(t *testing.T) {
	uc := &stubClipUsecase{snapshot: readySnapshot()}
	e := newServer(t, uc, nil, nil)

	rec := do(e, http.MethodPost, "/v1/clip-sessions/s1/gestures",
		`{"kind":"touch","type":"touchstart","touches":[{"x":10,"y":20}],"target":"se"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, uc.lastGesture.Touch)
	assert.Equal(t, "se", uc.lastGesture.Touch.Target)
	assert.Equal(t, 20.0, uc.lastGesture.Touch.Touches[0].Y)

	rec = do(e, http.MethodPost, "/v1/clip-sessions/s1/gestures", `{"kind":"mouse","type":"mousedown","target":"corner"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "target")
}

func TestShare(t *testing.T) {
	tests := []struct {
		name     string
		uc       *stubClipUsecase
		wantCode int
		wantBody string
	}{
		{
			name:     "ready",
			uc:       &stubClipUsecase{snapshot: readySnapshot()},
			wantCode: http.StatusOK,
			wantBody: `"shareUrl":"https://news.example/clip/42"`,
		},
		{
			name:     "in flight",
			uc:       &stubClipUsecase{err: domain.ErrShareInFlight},
			wantCode: http.StatusConflict,
		},
		{
			name:     "missing session",
			uc:       &stubClipUsecase{err: domain.ErrSessionNotFound},
			wantCode: http.StatusNotFound,
		},
		{
			name: "publish failed",
			uc: &stubClipUsecase{
				snapshot: &usecase.SessionSnapshot{ID: "s1", State: domain.StateFailed, HasImage: true},
				err:      domain.PublishFailedError("clip create returned 500", nil, nil),
			},
			wantCode: http.StatusBadGateway,
			wantBody: `"state":"failed"`,
		},
		{
			name:     "timeout",
			uc:       &stubClipUsecase{err: domain.NetworkTimeoutError("clip create timed out", nil, nil)},
			wantCode: http.StatusGatewayTimeout,
		},
		{
			name:     "source unavailable",
			uc:       &stubClipUsecase{err: domain.SourceUnavailableError("page not found", nil, nil)},
			wantCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newServer(t, tt.uc, nil, nil)
			rec := do(e, http.MethodPost, "/v1/clip-sessions/s1/share", "")
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestShare_OriginHeader(t *testing.T) {
	uc := &stubClipUsecase{snapshot: readySnapshot()}
	e := newServer(t, uc, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/clip-sessions/s1/share", nil)
	req.Header.Set(echo.HeaderOrigin, "https://reader.example")
	e.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "https://reader.example", uc.lastOrigin)

	req = httptest.NewRequest(http.MethodPost, "/v1/clip-sessions/s1/share", nil)
	req.Host = "clips.local:9300"
	e.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "http://clips.local:9300", uc.lastOrigin)
}

func TestShare_RateLimited(t *testing.T) {
	uc := &stubClipUsecase{snapshot: readySnapshot()}
	limiter := clip_http.NewRateLimiter(1, 1)
	e := newServer(t, uc, nil, limiter.Middleware())

	first := do(e, http.MethodPost, "/v1/clip-sessions/s1/share", "")
	second := do(e, http.MethodPost, "/v1/clip-sessions/s1/share", "")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))

	// Other routes are not limited.
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/v1/clip-sessions/s1", "").Code)
}

func TestDownloadImage(t *testing.T) {
	uc := &stubClipUsecase{image: &usecase.SessionImage{
		Image: &domain.EncodedImage{Data: []byte("RIFFxxxxWEBP"), Format: domain.FormatWebP, Width: 200, Height: 270},
	}}
	e := newServer(t, uc, nil, nil)

	rec := do(e, http.MethodGet, "/v1/clip-sessions/s1/image", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/webp", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, `attachment; filename="clipped-image.webp"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Empty(t, rec.Header().Get("X-Clip-Placeholder"))

	uc.image = &usecase.SessionImage{
		Image:       &domain.EncodedImage{Data: []byte{0x89, 'P', 'N', 'G'}, Format: domain.FormatPNG},
		Placeholder: true,
	}
	rec = do(e, http.MethodGet, "/v1/clip-sessions/s1/image", "")
	assert.Equal(t, `attachment; filename="clipped-image.png"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Equal(t, "true", rec.Header().Get("X-Clip-Placeholder"))

	uc.err = domain.ErrClipImageNotFound
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/v1/clip-sessions/s1/image", "").Code)
}

func TestGetClipImage(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockClipImageStore(ctrl)
	store.EXPECT().GetClipImage(gomock.Any(), "abc.webp").
		Return(&domain.StoredClipImage{Key: "abc.webp", ContentType: "image/webp", Data: []byte("RIFF")}, nil)
	store.EXPECT().GetClipImage(gomock.Any(), "nope.webp").Return(nil, domain.ErrClipImageNotFound)

	e := newServer(t, &stubClipUsecase{}, store, nil)

	rec := do(e, http.MethodGet, "/v1/clip-images/abc.webp", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "RIFF", rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderCacheControl), "immutable")

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/v1/clip-images/nope.webp", "").Code)
}

func TestPreview(t *testing.T) {
	uc := &stubClipUsecase{clip: &domain.ClipRecord{
		ClipID:   "42",
		Page:     3,
		ImageURL: "https://news.example/v1/clip-images/abc.webp",
	}}
	e := newServer(t, uc, nil, nil)

	rec := do(e, http.MethodGet, "/clip/42", "")
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	ogImage, _ := doc.Find(`meta[property="og:image"]`).Attr("content")
	ogURL, _ := doc.Find(`meta[property="og:url"]`).Attr("content")
	src, _ := doc.Find("img.clip-image").Attr("src")
	assert.Equal(t, "https://news.example/v1/clip-images/abc.webp", ogImage)
	assert.Equal(t, "https://news.example/clip/42", ogURL)
	assert.Equal(t, ogImage, src)
	assert.Equal(t, domain.DefaultShareCaption, doc.Find("p.clip-caption").Text())
}

func TestPreview_NotFound(t *testing.T) {
	e := newServer(t, &stubClipUsecase{err: domain.ErrClipNotFound}, nil, nil)

	rec := do(e, http.MethodGet, "/clip/missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "Clip not found", doc.Find("h1").Text())
	assert.Zero(t, doc.Find(`meta[property="og:image"]`).Length())
}

func TestPreview_UnsafeImageURL(t *testing.T) {
	uc := &stubClipUsecase{clip: &domain.ClipRecord{ClipID: "1", Page: 1, ImageURL: "javascript:alert(1)"}}
	e := newServer(t, uc, nil, nil)

	rec := do(e, http.MethodGet, "/clip/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "javascript:")
}
