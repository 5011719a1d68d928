package clip_http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"epaper-clip/internal/domain"
	"epaper-clip/internal/usecase"
)

// BrandingSource is the part of the branding provider the API exposes.
type BrandingSource interface {
	Snapshot(ctx context.Context) (*domain.Epaper, error)
	Refresh(ctx context.Context) (*domain.Epaper, error)
}

type Handler struct {
	clips         usecase.ClipShareUsecase
	branding      BrandingSource
	images        domain.ClipImageStore
	publicBaseURL string
	caption       string
	logger        *slog.Logger
}

func NewHandler(
	clips usecase.ClipShareUsecase,
	branding BrandingSource,
	images domain.ClipImageStore,
	publicBaseURL string,
	caption string,
	logger *slog.Logger,
) *Handler {
	if caption == "" {
		caption = domain.DefaultShareCaption
	}
	return &Handler{
		clips:         clips,
		branding:      branding,
		images:        images,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		caption:       caption,
		logger:        logger,
	}
}

// RegisterRoutes mounts the clip API. shareLimit guards the share endpoint
// and may be nil.
func (h *Handler) RegisterRoutes(e *echo.Echo, shareLimit echo.MiddlewareFunc) {
	v1 := e.Group("/v1")

	share := []echo.MiddlewareFunc{}
	if shareLimit != nil {
		share = append(share, shareLimit)
	}

	v1.POST("/clip-sessions", h.StartSession)
	v1.GET("/clip-sessions/:id", h.GetSession)
	v1.POST("/clip-sessions/:id/gestures", h.ApplyGesture)
	v1.POST("/clip-sessions/:id/share", h.Share, share...)
	v1.DELETE("/clip-sessions/:id", h.CancelSession)
	v1.GET("/clip-sessions/:id/image", h.DownloadImage)
	v1.GET("/clip-images/:key", h.GetClipImage)
	v1.GET("/branding", h.GetBranding)
	v1.POST("/branding/refresh", h.RefreshBranding)

	e.GET("/clip/:clipId", h.Preview)
}

// Enter clip mode on a page
// (POST /v1/clip-sessions)
func (h *Handler) StartSession(c echo.Context) error {
	var req StartSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return h.writeError(c, err)
	}

	in := usecase.StartSessionInput{
		PaperID:      req.PaperID,
		Page:         req.Page,
		PageImageURL: req.PageImageURL,
		Displayed:    domain.Surface{Width: req.SurfaceWidth, Height: req.SurfaceHeight},
	}
	if req.Viewport != nil {
		in.Viewport = req.Viewport.toDomain()
	}
	if req.Selection != nil {
		sel := req.Selection.toDomain()
		in.Selection = &sel
	}

	snap, err := h.clips.StartSession(c.Request().Context(), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toSessionResponse(snap))
}

// (GET /v1/clip-sessions/:id)
func (h *Handler) GetSession(c echo.Context) error {
	snap, err := h.clips.Snapshot(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(snap))
}

// Apply one pointer event to the selection
// (POST /v1/clip-sessions/:id/gestures)
func (h *Handler) ApplyGesture(c echo.Context) error {
	var req GestureRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return h.writeError(c, err)
	}

	snap, err := h.clips.ApplyGesture(c.Request().Context(), c.Param("id"), req.toInput())
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(snap))
}

// Compose, encode and publish the current selection
// (POST /v1/clip-sessions/:id/share)
func (h *Handler) Share(c echo.Context) error {
	snap, err := h.clips.Share(c.Request().Context(), c.Param("id"), requestOrigin(c))
	if err != nil {
		if snap != nil {
			var ce *domain.ClipError
			if errors.As(err, &ce) {
				return c.JSON(ce.Kind.HTTPStatus(), map[string]any{
					"error":   string(ce.Kind),
					"message": ce.Message,
					"session": toSessionResponse(snap),
				})
			}
		}
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(snap))
}

// (DELETE /v1/clip-sessions/:id)
func (h *Handler) CancelSession(c echo.Context) error {
	if err := h.clips.Cancel(c.Request().Context(), c.Param("id")); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Download the composed image, or the placeholder after a failure
// (GET /v1/clip-sessions/:id/image)
func (h *Handler) DownloadImage(c echo.Context) error {
	img, err := h.clips.Image(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	res := c.Response()
	res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", img.Image.Format.FileName()))
	res.Header().Set(echo.HeaderCacheControl, "no-store")
	if img.Placeholder {
		res.Header().Set("X-Clip-Placeholder", "true")
	}
	return c.Blob(http.StatusOK, img.Image.ContentType(), img.Image.Data)
}

// (GET /v1/clip-images/:key)
func (h *Handler) GetClipImage(c echo.Context) error {
	img, err := h.images.GetClipImage(c.Request().Context(), c.Param("key"))
	if err != nil {
		return h.writeError(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=31536000, immutable")
	return c.Blob(http.StatusOK, img.ContentType, img.Data)
}

// (GET /v1/branding)
func (h *Handler) GetBranding(c echo.Context) error {
	ep, err := h.branding.Snapshot(c.Request().Context())
	if err != nil {
		h.logger.ErrorContext(c.Request().Context(), "branding unavailable", "error", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "branding unavailable"})
	}
	return c.JSON(http.StatusOK, toBrandingResponse(ep))
}

// (POST /v1/branding/refresh)
func (h *Handler) RefreshBranding(c echo.Context) error {
	ep, err := h.branding.Refresh(c.Request().Context())
	if err != nil {
		h.logger.ErrorContext(c.Request().Context(), "branding refresh failed", "error", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "branding refresh failed"})
	}
	return c.JSON(http.StatusOK, toBrandingResponse(ep))
}

// Public landing page for a shared clip
// (GET /clip/:clipId)
func (h *Handler) Preview(c echo.Context) error {
	clipID := c.Param("clipId")
	base := h.publicBaseURL
	if base == "" {
		base = requestOrigin(c)
	}
	shareURL := usecase.ShareURL(base, clipID)

	status := http.StatusOK
	rec, err := h.clips.ResolveClip(c.Request().Context(), clipID)
	switch {
	case domain.IsNotFound(err):
		status = http.StatusNotFound
		rec = nil
	case err != nil:
		h.logger.ErrorContext(c.Request().Context(), "clip lookup failed", "clip_id", clipID, "error", err)
		return c.String(http.StatusBadGateway, "clip temporarily unavailable")
	}

	page, err := renderPreview(rec, shareURL, h.caption)
	if err != nil {
		return err
	}
	return c.HTMLBlob(status, page)
}

// writeError maps domain errors onto HTTP statuses.
func (h *Handler) writeError(c echo.Context, err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "validation failed", "errors": verr.Errors})
	}

	var ce *domain.ClipError
	switch {
	case domain.IsNotFound(err):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case domain.IsShareInFlight(err), errors.Is(err, domain.ErrNotSelecting):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidSurface), errors.Is(err, domain.ErrPageURLNotAllowed):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &ce):
		return c.JSON(ce.Kind.HTTPStatus(), map[string]string{"error": string(ce.Kind), "message": ce.Message})
	}

	h.logger.ErrorContext(c.Request().Context(), "unhandled clip api error",
		"path", c.Path(),
		"error", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

// requestOrigin is the Origin header, else the scheme and host the request
// arrived on.
func requestOrigin(c echo.Context) string {
	if o := c.Request().Header.Get(echo.HeaderOrigin); o != "" && o != "null" {
		return o
	}
	return c.Scheme() + "://" + c.Request().Host
}
