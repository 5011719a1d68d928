package httpclient

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_CheckURL(t *testing.T) {
	tests := []struct {
		raw     string
		private bool
		wantErr bool
	}{
		{raw: "https://cdn.example/p1/3.png"},
		{raw: "http://cdn.example:8080/p1/3.png"},
		{raw: "https://93.184.216.34/a.png"},
		{raw: "ftp://cdn.example/a.png", wantErr: true},
		{raw: "https:///a.png", wantErr: true},
		{raw: "http://127.0.0.1/a.png", wantErr: true},
		{raw: "http://[::ffff:127.0.0.1]/a.png", wantErr: true},
		{raw: "http://172.16.4.2/a.png", wantErr: true},
		{raw: "http://[fd12::1]/a.png", wantErr: true},
		{raw: "http://100.100.100.200/latest", wantErr: true},
		{raw: "http://100.64.1.1/a.png", wantErr: true},
		{raw: "http://0.0.0.0/a.png", wantErr: true},
		{raw: "http://metadata.google.internal./x", wantErr: true},
		{raw: "http://api.svc.cluster.local/a.png", wantErr: true},
		{raw: "http://cdn.example:6379/a.png", wantErr: true},
		{raw: "http://127.0.0.1:6379/a.png", private: true},
		{raw: "http://localhost/a.png", private: true},
		{raw: "gopher://localhost/a.png", private: true, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			require.NoError(t, err)
			err = Guard{AllowPrivate: tt.private}.CheckURL(u)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBlockedDestination)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestGuard_Control(t *testing.T) {
	g := Guard{}
	assert.NoError(t, g.control("tcp4", "93.184.216.34:443", nil))
	assert.NoError(t, g.control("tcp6", "[2606:2800:220:1:248:1893:25c8:1946]:80", nil))

	for _, addr := range []string{"127.0.0.1:80", "10.1.2.3:443", "169.254.169.254:80", "[::1]:443", "93.184.216.34:25"} {
		assert.ErrorIs(t, g.control("tcp4", addr, nil), ErrBlockedDestination, addr)
	}
	assert.ErrorIs(t, g.control("udp4", "93.184.216.34:443", nil), ErrBlockedDestination)

	assert.NoError(t, Guard{AllowPrivate: true}.control("tcp4", "127.0.0.1:6379", nil))
}

func TestNewGuardedClient_RejectsAtDial(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	// The request bypasses CheckURL, so only the dial hook stands in the way.
	client := NewGuardedClient(time.Second, Guard{})
	_, err := client.Get(srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBlockedDestination)
	assert.Zero(t, hits.Load())

	open := NewGuardedClient(time.Second, Guard{AllowPrivate: true})
	resp, err := open.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, int32(1), hits.Load())
}

func TestNewGuardedClient_RevalidatesRedirects(t *testing.T) {
	client := NewGuardedClient(time.Second, Guard{})

	next, err := http.NewRequest(http.MethodGet, "http://169.254.169.254/latest/meta-data/", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, client.CheckRedirect(next, []*http.Request{{}}), ErrBlockedDestination)

	ok, err := http.NewRequest(http.MethodGet, "https://cdn.example/p1/3.png", nil)
	require.NoError(t, err)
	assert.NoError(t, client.CheckRedirect(ok, []*http.Request{{}}))

	assert.Error(t, client.CheckRedirect(ok, make([]*http.Request, maxRedirects)))
}
