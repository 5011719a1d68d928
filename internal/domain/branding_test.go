package domain_test

import (
	"image/color"
	"net/http"
	"strings"
	"testing"

	"epaper-clip/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHexColor(t *testing.T) {
	c, err := domain.ParseHexColor("#1a2b3c")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x1a, G: 0x2b, B: 0x3c, A: 0xff}, c)

	c, err = domain.ParseHexColor("#fff")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, c)

	c, err = domain.ParseHexColor("00000080")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x80), c.A)

	_, err = domain.ParseHexColor("blue")
	assert.Error(t, err)
}

func TestBannerSettings_Defaults(t *testing.T) {
	var b domain.BannerSettings
	assert.Equal(t, 60, b.StripHeight(60))
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, b.Background())

	b.LogoHeight = 44
	assert.Equal(t, 44, b.StripHeight(60))
}

func TestBannerStyle_Decoration(t *testing.T) {
	assert.Zero(t, domain.BannerStyleFlat.Decoration().RuleWidth)
	assert.Positive(t, domain.BannerStyleRuled.Decoration().RuleWidth)
	assert.Positive(t, domain.BannerStyleFramed.Decoration().FrameWidth)
	assert.Equal(t, domain.BannerStyleFlat.Decoration(), domain.BannerStyle("neon").Decoration())
	assert.Equal(t, domain.BannerStyleRuled, domain.ParseBannerStyle(" Ruled "))
}

func TestParseBannerPosition(t *testing.T) {
	assert.Equal(t, domain.PositionLeft, domain.ParseBannerPosition("Left"))
	assert.Equal(t, domain.PositionRight, domain.ParseBannerPosition("RIGHT"))
	assert.Equal(t, domain.PositionCenter, domain.ParseBannerPosition(""))
}

func TestContrastColor(t *testing.T) {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black := color.RGBA{A: 255}
	assert.NotEqual(t, white, domain.ContrastColor(white))
	assert.Equal(t, white, domain.ContrastColor(black))
}

func TestEpaper_FindPage(t *testing.T) {
	ep := &domain.Epaper{Editions: []domain.Edition{{
		ID:    "p1",
		Pages: []domain.Page{{Number: 1, ImageURL: "a"}, {Number: 2, ImageURL: "b"}},
	}}}

	p, ok := ep.FindPage("p1", 2)
	require.True(t, ok)
	assert.Equal(t, "b", p.ImageURL)

	_, ok = ep.FindPage("p1", 3)
	assert.False(t, ok)
	_, ok = (*domain.Epaper)(nil).FindPage("p1", 1)
	assert.False(t, ok)
}

func TestBuildShareLinks(t *testing.T) {
	links := domain.BuildShareLinks("https://news.example/clip/42", domain.DefaultShareCaption)
	require.Len(t, links, len(domain.SharePlatforms()))

	for _, l := range links {
		assert.True(t, strings.Contains(l.URL, "news.example"), l.Platform)
	}
	assert.True(t, strings.HasPrefix(links[0].URL, "https://www.facebook.com/sharer/sharer.php?u=https%3A%2F%2Fnews.example%2Fclip%2F42"))

	_, err := domain.BuildShareLink("myspace", "u", "c")
	assert.Error(t, err)
}

func TestClipStateTransitions(t *testing.T) {
	assert.True(t, domain.CanTransition(domain.StateSelecting, domain.StateComposing))
	assert.True(t, domain.CanTransition(domain.StateFailed, domain.StateComposing))
	assert.False(t, domain.CanTransition(domain.StateComposing, domain.StatePublishing))
	assert.False(t, domain.CanTransition(domain.StateIdle, domain.StateReady))
	assert.True(t, domain.StateEncoding.InFlight())
	assert.False(t, domain.StatePublishing.CanShare())
}

func TestKindOf(t *testing.T) {
	err := domain.PublishFailedError("api rejected clip", nil, nil)
	assert.Equal(t, domain.KindPublishFailed, domain.KindOf(err))
	assert.Equal(t, http.StatusBadGateway, domain.KindOf(err).HTTPStatus())
	assert.Equal(t, domain.KindUnknown, domain.KindOf(assert.AnError))
	assert.Equal(t, http.StatusGatewayTimeout, domain.KindNetworkTimeout.HTTPStatus())
}
