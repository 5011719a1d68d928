package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"epaper-clip/internal/domain"
)

type PublishInput struct {
	Image     *domain.EncodedImage
	PaperID   string
	Page      int
	Selection domain.SelectionRect
	// Origin is the requesting site, used when no base URL is configured.
	Origin string
}

type PublishResult struct {
	Clip     *domain.ClipRecord
	ShareURL string
	ImageURL string
	Links    []domain.ShareLink
}

// Publisher persists the encoded clip and creates its record. Every call
// creates a new record.
type Publisher struct {
	store   domain.ClipImageStore
	client  domain.EpaperClient
	baseURL string
	caption string
	timeout time.Duration
	logger  *slog.Logger
}

func NewPublisher(store domain.ClipImageStore, client domain.EpaperClient, baseURL, caption string, timeout time.Duration, logger *slog.Logger) *Publisher {
	if caption == "" {
		caption = domain.DefaultShareCaption
	}
	return &Publisher{
		store:   store,
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		caption: caption,
		timeout: timeout,
		logger:  logger,
	}
}

// ShareBase is the configured public base URL, else origin.
func (p *Publisher) ShareBase(origin string) string {
	if p.baseURL != "" {
		return p.baseURL
	}
	return strings.TrimRight(origin, "/")
}

// ShareURL builds {base}/clip/{clipId}.
func ShareURL(base, clipID string) string {
	return strings.TrimRight(base, "/") + "/clip/" + url.PathEscape(clipID)
}

// ShareDomain is the host shown in the clip footer.
func ShareDomain(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

func (p *Publisher) Caption() string { return p.caption }

func (p *Publisher) Publish(ctx context.Context, in PublishInput) (*PublishResult, error) {
	if in.Image == nil || len(in.Image.Data) == 0 {
		return nil, domain.PublishFailedError("nothing to publish", nil, nil)
	}
	base := p.ShareBase(in.Origin)
	if base == "" {
		return nil, domain.PublishFailedError("no public base url configured and request origin unknown", nil, nil)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	// 1. Store the image
	imageURL, err := p.store.SaveClipImage(ctx, in.Image)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.NetworkTimeoutError("clip image store timed out", err, nil)
		}
		return nil, domain.PublishFailedError("failed to store clip image", err, nil)
	}

	// 2. Create the record
	rec, err := p.client.CreateClip(ctx, domain.CreateClipRequest{
		PaperID:     in.PaperID,
		Page:        in.Page,
		Coordinates: in.Selection,
		ImageURL:    imageURL,
	})
	if err != nil {
		var ce *domain.ClipError
		switch {
		case errors.As(err, &ce):
			return nil, err
		case errors.Is(err, context.DeadlineExceeded):
			return nil, domain.NetworkTimeoutError("clip create timed out", err, nil)
		default:
			return nil, domain.PublishFailedError("clip create failed", err, nil)
		}
	}

	shareURL := ShareURL(base, rec.ClipID)
	p.logger.InfoContext(ctx, "clip published",
		"clip_id", rec.ClipID,
		"share_url", shareURL,
		"format", string(in.Image.Format),
		"bytes", len(in.Image.Data))

	return &PublishResult{
		Clip:     rec,
		ShareURL: shareURL,
		ImageURL: imageURL,
		Links:    domain.BuildShareLinks(shareURL, p.caption),
	}, nil
}
