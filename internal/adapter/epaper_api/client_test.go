package epaper_api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epaper-clip/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *HTTPEpaperClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPEpaperClient(srv.URL, "k-123", srv.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const epaperBody = `{
  "success": true,
  "data": {
    "clip": {
      "topClip": {"backgroundColor": "#0a2540", "logoHeight": "72", "position": "Left", "style": "ruled"},
      "topLogoUrl": "https://cdn.example/top.png",
      "footerClip": {"backgroundColor": "#ffffff", "logoHeight": 48, "position": "right"},
      "footerLogoUrl": "",
      "displayOptions": {"showDate": true, "showDomain": false, "showPageNumber": true}
    },
    "editions": [
      {"id": 17, "title": "Morning", "date": "2024-03-09",
       "pages": [{"pageNumber": 1, "imageUrl": "https://cdn.example/17/1.webp", "pdfUrl": "https://cdn.example/17.pdf"}]}
    ]
  }
}`

func TestFetchEpaper(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/epaper", r.URL.Path)
		assert.Equal(t, "k-123", r.Header.Get("x-api-key"))
		_, _ = w.Write([]byte(epaperBody))
	})

	ep, err := c.FetchEpaper(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.BannerSettings{
		BackgroundColor: "#0a2540",
		LogoURL:         "https://cdn.example/top.png",
		LogoHeight:      72,
		Position:        domain.PositionLeft,
		Style:           domain.BannerStyleRuled,
	}, ep.Branding.Top)
	assert.Equal(t, 48, ep.Branding.Bottom.LogoHeight)
	assert.Equal(t, domain.PositionRight, ep.Branding.Bottom.Position)
	assert.Empty(t, ep.Branding.Bottom.LogoURL)
	assert.True(t, ep.Branding.Display.ShowDate)
	assert.False(t, ep.Branding.Display.ShowDomain)

	page, ok := ep.FindPage("17", 1)
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example/17/1.webp", page.ImageURL)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), ep.Editions[0].Date)
}

func TestFetchEpaper_BareBodyAndErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"clip": {"displayOptions": {"showDomain": true}}, "editions": []}`))
	})
	ep, err := c.FetchEpaper(context.Background())
	require.NoError(t, err)
	assert.True(t, ep.Branding.Display.ShowDomain)

	failing := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err = failing.FetchEpaper(context.Background())
	assert.ErrorContains(t, err, "503")
}

func TestCreateClip(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/clippings", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "17", body["paperId"])
		assert.Equal(t, float64(3), body["page"])
		assert.Equal(t, map[string]any{"x": 50.0, "y": 50.0, "width": 200.0, "height": 150.0}, body["coordinates"])
		assert.Equal(t, "https://clips.example/v1/clip-images/abc.webp", body["imageUrl"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success": true, "data": {"clipId": 42}}`))
	})

	rec, err := c.CreateClip(context.Background(), domain.CreateClipRequest{
		PaperID:     "17",
		Page:        3,
		Coordinates: domain.SelectionRect{X: 50, Y: 50, Width: 200, Height: 150},
		ImageURL:    "https://clips.example/v1/clip-images/abc.webp",
	})
	require.NoError(t, err)
	assert.Equal(t, "42", rec.ClipID)
	assert.Equal(t, "17", rec.PaperID)
	assert.Equal(t, 3, rec.Page)
}

func TestCreateClip_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    domain.ErrorKind
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			want: domain.KindPublishFailed,
		},
		{
			name: "success false",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"success": false, "message": "paper archived"}`))
			},
			want: domain.KindPublishFailed,
		},
		{
			name: "missing clip id",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"success": true, "data": {}}`))
			},
			want: domain.KindPublishFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.CreateClip(context.Background(), domain.CreateClipRequest{PaperID: "1", Page: 1})
			require.Error(t, err)
			assert.Equal(t, tt.want, domain.KindOf(err))
		})
	}
}

func TestCreateClip_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.CreateClip(ctx, domain.CreateClipRequest{PaperID: "1", Page: 1})
	require.Error(t, err)
	assert.Equal(t, domain.KindNetworkTimeout, domain.KindOf(err))
}

func TestGetClip(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/clippings/42":
			_, _ = w.Write([]byte(`{"success": true, "data": {"id": "42", "paperId": "17", "page": 3,
				"coordinates": {"x": 1, "y": 2, "width": 30, "height": 40},
				"imageUrl": "https://clips.example/a.webp", "createdAt": "2024-03-09T10:00:00Z"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	rec, err := c.GetClip(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", rec.ClipID)
	assert.Equal(t, "https://clips.example/a.webp", rec.ImageURL)
	assert.Equal(t, 30.0, rec.Coordinates.Width)
	assert.False(t, rec.CreatedAt.IsZero())

	_, err = c.GetClip(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrClipNotFound)
}
