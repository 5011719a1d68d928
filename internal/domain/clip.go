package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ClipRecord is the persisted, immutable record of one shared clip.
type ClipRecord struct {
	ClipID      string
	PaperID     string
	Page        int
	Coordinates SelectionRect
	ImageURL    string
	CreatedAt   time.Time
}

// CreateClipRequest is sent to the e-paper API for every Share.
type CreateClipRequest struct {
	PaperID     string
	Page        int
	Coordinates SelectionRect
	ImageURL    string
}

// ImageFormat identifies an encoded output format.
type ImageFormat string

const (
	FormatWebP ImageFormat = "webp"
	FormatPNG  ImageFormat = "png"
)

func (f ImageFormat) ContentType() string {
	switch f {
	case FormatWebP:
		return "image/webp"
	case FormatPNG:
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// FileName is the download name of a clip in this format.
func (f ImageFormat) FileName() string {
	return "clipped-image." + string(f)
}

// FormatFromContentType is the inverse of ContentType for supported formats.
func FormatFromContentType(ct string) (ImageFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(ct, ";", 2)[0])) {
	case "image/webp":
		return FormatWebP, true
	case "image/png":
		return FormatPNG, true
	default:
		return "", false
	}
}

// EncodedImage is a composed clip serialized to bytes.
type EncodedImage struct {
	Data   []byte
	Format ImageFormat
	Width  int
	Height int
}

func (e *EncodedImage) ContentType() string { return e.Format.ContentType() }

// StoredClipImage is an encoded clip persisted by a ClipImageStore.
type StoredClipImage struct {
	Key         string
	ContentType string
	Data        []byte
	Width       int
	Height      int
	CreatedAt   time.Time
}

// SharePlatform is a destination offered on the share surface.
type SharePlatform string

const (
	PlatformFacebook SharePlatform = "facebook"
	PlatformX        SharePlatform = "x"
	PlatformWhatsApp SharePlatform = "whatsapp"
	PlatformTelegram SharePlatform = "telegram"
	PlatformEmail    SharePlatform = "email"
)

// DefaultShareCaption accompanies every share link.
const DefaultShareCaption = "Check out this clip from today's e-paper"

// SharePlatforms returns the platforms in display order.
func SharePlatforms() []SharePlatform {
	return []SharePlatform{PlatformFacebook, PlatformX, PlatformWhatsApp, PlatformTelegram, PlatformEmail}
}

// Label is the human-readable platform name.
func (p SharePlatform) Label() string {
	switch p {
	case PlatformFacebook:
		return "Facebook"
	case PlatformX:
		return "X"
	case PlatformWhatsApp:
		return "WhatsApp"
	case PlatformTelegram:
		return "Telegram"
	case PlatformEmail:
		return "Email"
	default:
		return string(p)
	}
}

// ShareLink is a deep link for one platform.
type ShareLink struct {
	Platform SharePlatform
	URL      string
}

// BuildShareLink maps a platform to its deep link for shareURL and caption.
func BuildShareLink(p SharePlatform, shareURL, caption string) (ShareLink, error) {
	u := url.QueryEscape(shareURL)
	c := url.QueryEscape(caption)
	var link string
	switch p {
	case PlatformFacebook:
		link = "https://www.facebook.com/sharer/sharer.php?u=" + u
	case PlatformX:
		link = "https://twitter.com/intent/tweet?url=" + u + "&text=" + c
	case PlatformWhatsApp:
		link = "https://api.whatsapp.com/send?text=" + url.QueryEscape(caption+" "+shareURL)
	case PlatformTelegram:
		link = "https://t.me/share/url?url=" + u + "&text=" + c
	case PlatformEmail:
		link = "mailto:?subject=" + url.PathEscape(caption) + "&body=" + url.PathEscape(shareURL)
	default:
		return ShareLink{}, fmt.Errorf("unsupported share platform %q", p)
	}
	return ShareLink{Platform: p, URL: link}, nil
}

// BuildShareLinks returns a link for every platform.
func BuildShareLinks(shareURL, caption string) []ShareLink {
	platforms := SharePlatforms()
	links := make([]ShareLink, 0, len(platforms))
	for _, p := range platforms {
		link, err := BuildShareLink(p, shareURL, caption)
		if err != nil {
			continue
		}
		links = append(links, link)
	}
	return links
}
