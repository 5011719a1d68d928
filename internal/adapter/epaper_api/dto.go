package epaper_api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"epaper-clip/internal/domain"
)

// envelope is the {success, data, message} wrapper used by the API.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// flexString accepts JSON strings and numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(string(b))
	return nil
}

// flexInt accepts JSON numbers and numeric strings; anything else is zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(int(v))
	return nil
}

type bannerDTO struct {
	BackgroundColor string  `json:"backgroundColor"`
	LogoHeight      flexInt `json:"logoHeight"`
	Position        string  `json:"position"`
	Style           string  `json:"style"`
}

type displayOptionsDTO struct {
	ShowDate       bool `json:"showDate"`
	ShowDomain     bool `json:"showDomain"`
	ShowPageNumber bool `json:"showPageNumber"`
}

type clipBrandingDTO struct {
	TopClip        bannerDTO         `json:"topClip"`
	TopLogoURL     string            `json:"topLogoUrl"`
	FooterClip     bannerDTO         `json:"footerClip"`
	FooterLogoURL  string            `json:"footerLogoUrl"`
	DisplayOptions displayOptionsDTO `json:"displayOptions"`
}

type pageDTO struct {
	PageNumber flexInt `json:"pageNumber"`
	ImageURL   string  `json:"imageUrl"`
	PdfURL     string  `json:"pdfUrl"`
}

type editionDTO struct {
	ID    flexString `json:"id"`
	Title string     `json:"title"`
	Date  string     `json:"date"`
	Pages []pageDTO  `json:"pages"`
}

type epaperDTO struct {
	Clip     clipBrandingDTO `json:"clip"`
	Editions []editionDTO    `json:"editions"`
}

type coordinatesDTO struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type createClipRequestDTO struct {
	PaperID     string         `json:"paperId"`
	Page        int            `json:"page"`
	Coordinates coordinatesDTO `json:"coordinates"`
	ImageURL    string         `json:"imageUrl"`
}

type clipDTO struct {
	ClipID      flexString     `json:"clipId"`
	ID          flexString     `json:"id"`
	PaperID     flexString     `json:"paperId"`
	Page        flexInt        `json:"page"`
	Coordinates coordinatesDTO `json:"coordinates"`
	ImageURL    string         `json:"imageUrl"`
	CreatedAt   string         `json:"createdAt"`
}

func (b bannerDTO) toDomain(logoURL string) domain.BannerSettings {
	return domain.BannerSettings{
		BackgroundColor: b.BackgroundColor,
		LogoURL:         strings.TrimSpace(logoURL),
		LogoHeight:      int(b.LogoHeight),
		Position:        domain.ParseBannerPosition(b.Position),
		Style:           domain.ParseBannerStyle(b.Style),
	}
}

func (d epaperDTO) toDomain(fetchedAt time.Time) *domain.Epaper {
	ep := &domain.Epaper{
		Branding: domain.Branding{
			Top:    d.Clip.TopClip.toDomain(d.Clip.TopLogoURL),
			Bottom: d.Clip.FooterClip.toDomain(d.Clip.FooterLogoURL),
			Display: domain.DisplayOptions{
				ShowDate:       d.Clip.DisplayOptions.ShowDate,
				ShowDomain:     d.Clip.DisplayOptions.ShowDomain,
				ShowPageNumber: d.Clip.DisplayOptions.ShowPageNumber,
			},
		},
		Editions:  make([]domain.Edition, 0, len(d.Editions)),
		FetchedAt: fetchedAt,
	}
	for _, e := range d.Editions {
		ed := domain.Edition{
			ID:    string(e.ID),
			Title: e.Title,
			Date:  parseTime(e.Date),
			Pages: make([]domain.Page, 0, len(e.Pages)),
		}
		for _, p := range e.Pages {
			ed.Pages = append(ed.Pages, domain.Page{
				Number:   int(p.PageNumber),
				ImageURL: p.ImageURL,
				PdfURL:   p.PdfURL,
			})
		}
		ep.Editions = append(ep.Editions, ed)
	}
	return ep
}

func (c clipDTO) toDomain() *domain.ClipRecord {
	id := string(c.ClipID)
	if id == "" {
		id = string(c.ID)
	}
	return &domain.ClipRecord{
		ClipID:  id,
		PaperID: string(c.PaperID),
		Page:    int(c.Page),
		Coordinates: domain.SelectionRect{
			X:      c.Coordinates.X,
			Y:      c.Coordinates.Y,
			Width:  c.Coordinates.Width,
			Height: c.Coordinates.Height,
		},
		ImageURL:  c.ImageURL,
		CreatedAt: parseTime(c.CreatedAt),
	}
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
