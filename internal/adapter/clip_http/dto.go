package clip_http

import (
	"time"

	"epaper-clip/internal/domain"
	"epaper-clip/internal/usecase"
	"epaper-clip/internal/usecase/selector"
)

type rectDTO struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
}

func (r rectDTO) toDomain() domain.SelectionRect {
	return domain.SelectionRect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

type StartSessionRequest struct {
	PaperID       string   `json:"paperId" validate:"required,max=128"`
	Page          int      `json:"page" validate:"required,min=1"`
	PageImageURL  string   `json:"pageImageUrl" validate:"omitempty,max=4096"`
	SurfaceWidth  float64  `json:"surfaceWidth" validate:"required,gte=20"`
	SurfaceHeight float64  `json:"surfaceHeight" validate:"required,gte=20"`
	Viewport      *rectDTO `json:"viewport"`
	Selection     *rectDTO `json:"selection"`
}

type pointDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type GestureRequest struct {
	Kind    string     `json:"kind" validate:"required,oneof=mouse touch"`
	Type    string     `json:"type" validate:"required,oneof=mousedown mousemove mouseup mouseleave touchstart touchmove touchend touchcancel"`
	X       float64    `json:"x"`
	Y       float64    `json:"y"`
	Touches []pointDTO `json:"touches"`
	Target  string     `json:"target" validate:"gesture_target"`
}

func (r GestureRequest) toInput() usecase.GestureInput {
	if r.Kind == "touch" {
		touches := make([]selector.TouchPoint, 0, len(r.Touches))
		for _, p := range r.Touches {
			touches = append(touches, selector.TouchPoint{X: p.X, Y: p.Y})
		}
		return usecase.GestureInput{Touch: &selector.TouchEvent{Type: r.Type, Touches: touches, Target: r.Target}}
	}
	return usecase.GestureInput{Mouse: &selector.MouseEvent{Type: r.Type, X: r.X, Y: r.Y, Target: r.Target}}
}

type shareLinkDTO struct {
	Platform string `json:"platform"`
	Label    string `json:"label"`
	URL      string `json:"url"`
}

type errorDTO struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type SessionResponse struct {
	ID          string         `json:"id"`
	PaperID     string         `json:"paperId"`
	Page        int            `json:"page"`
	State       string         `json:"state"`
	Surface     domain.Surface `json:"surface"`
	Selection   rectDTO        `json:"selection"`
	Active      bool           `json:"active"`
	ClipID      string         `json:"clipId,omitempty"`
	ShareURL    string         `json:"shareUrl,omitempty"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	Caption     string         `json:"caption,omitempty"`
	Links       []shareLinkDTO `json:"links,omitempty"`
	HasImage    bool           `json:"hasImage"`
	Placeholder bool           `json:"placeholder"`
	Error       *errorDTO      `json:"error,omitempty"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func toSessionResponse(s *usecase.SessionSnapshot) SessionResponse {
	resp := SessionResponse{
		ID:      s.ID,
		PaperID: s.PaperID,
		Page:    s.Page,
		State:   string(s.State),
		Surface: s.Surface,
		Selection: rectDTO{
			X:      s.Selection.X,
			Y:      s.Selection.Y,
			Width:  s.Selection.Width,
			Height: s.Selection.Height,
		},
		Active:      s.Active,
		ClipID:      s.ClipID,
		ShareURL:    s.ShareURL,
		ImageURL:    s.ImageURL,
		Caption:     s.Caption,
		HasImage:    s.HasImage,
		Placeholder: s.Placeholder,
		UpdatedAt:   s.UpdatedAt,
	}
	for _, l := range s.Links {
		resp.Links = append(resp.Links, shareLinkDTO{Platform: string(l.Platform), Label: l.Platform.Label(), URL: l.URL})
	}
	if s.Error != nil {
		resp.Error = &errorDTO{Kind: string(s.Error.Kind), Message: s.Error.Message}
	}
	return resp
}

type bannerDTO struct {
	BackgroundColor string `json:"backgroundColor"`
	LogoURL         string `json:"logoUrl,omitempty"`
	LogoHeight      int    `json:"logoHeight"`
	Position        string `json:"position"`
	Style           string `json:"style"`
}

type BrandingResponse struct {
	Top            bannerDTO `json:"top"`
	Bottom         bannerDTO `json:"bottom"`
	ShowDate       bool      `json:"showDate"`
	ShowDomain     bool      `json:"showDomain"`
	ShowPageNumber bool      `json:"showPageNumber"`
	Editions       int       `json:"editions"`
	FetchedAt      time.Time `json:"fetchedAt"`
}

func toBannerDTO(b domain.BannerSettings) bannerDTO {
	return bannerDTO{
		BackgroundColor: b.BackgroundColor,
		LogoURL:         b.LogoURL,
		LogoHeight:      b.LogoHeight,
		Position:        string(b.Position),
		Style:           string(b.Style),
	}
}

func toBrandingResponse(ep *domain.Epaper) BrandingResponse {
	return BrandingResponse{
		Top:            toBannerDTO(ep.Branding.Top),
		Bottom:         toBannerDTO(ep.Branding.Bottom),
		ShowDate:       ep.Branding.Display.ShowDate,
		ShowDomain:     ep.Branding.Display.ShowDomain,
		ShowPageNumber: ep.Branding.Display.ShowPageNumber,
		Editions:       len(ep.Editions),
		FetchedAt:      ep.FetchedAt,
	}
}
