package usecase

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"epaper-clip/internal/domain"
	"epaper-clip/internal/infra/logger"
	"epaper-clip/internal/usecase/compose"
	"epaper-clip/internal/usecase/encode"
	"epaper-clip/internal/usecase/selector"
)

const (
	StageCompose = "compose"
	StageEncode  = "encode"
	StagePublish = "publish"
)

var tracer = otel.Tracer("epaper-clip/usecase")

type StartSessionInput struct {
	PaperID string
	Page    int
	// PageImageURL overrides the page lookup in the edition list.
	PageImageURL string
	// Displayed is the on-screen size of the page surface.
	Displayed domain.Surface
	// Viewport is the visible part of the surface. Zero means all of it.
	Viewport domain.SelectionRect
	// Selection, when set, replaces the default selection.
	Selection *domain.SelectionRect
}

// GestureInput carries exactly one of Mouse or Touch.
type GestureInput struct {
	Mouse *selector.MouseEvent
	Touch *selector.TouchEvent
}

type ErrorInfo struct {
	Kind    domain.ErrorKind
	Message string
}

type SessionSnapshot struct {
	ID          string
	PaperID     string
	Page        int
	State       domain.ClipState
	Surface     domain.Surface
	Selection   domain.SelectionRect
	Active      bool
	ClipID      string
	ShareURL    string
	ImageURL    string
	Caption     string
	Links       []domain.ShareLink
	HasImage    bool
	Placeholder bool
	Error       *ErrorInfo
	UpdatedAt   time.Time
}

// SessionImage is the downloadable image of a session. Placeholder is set
// when compose or encode failed.
type SessionImage struct {
	Image       *domain.EncodedImage
	Placeholder bool
}

// Hooks receive pipeline events. Nil hooks are skipped.
type Hooks struct {
	OnStage        func(stage, status string, d time.Duration)
	OnSessionCount func(n int)
	OnPublished    func(img *domain.EncodedImage)
}

type ClipShareUsecase interface {
	StartSession(ctx context.Context, in StartSessionInput) (*SessionSnapshot, error)
	ApplyGesture(ctx context.Context, id string, g GestureInput) (*SessionSnapshot, error)
	// Share runs compose, encode and publish. origin is the requesting site.
	Share(ctx context.Context, id, origin string) (*SessionSnapshot, error)
	Cancel(ctx context.Context, id string) error
	Snapshot(ctx context.Context, id string) (*SessionSnapshot, error)
	Image(ctx context.Context, id string) (*SessionImage, error)
	ResolveClip(ctx context.Context, clipID string) (*domain.ClipRecord, error)
}

type SessionOptions struct {
	Capacity int
	TTL      time.Duration
}

type clipSession struct {
	mu           sync.Mutex
	id           string
	paperID      string
	page         int
	pageImageURL string
	sel          *selector.Selector
	state        domain.ClipState
	result       *PublishResult
	image        *domain.EncodedImage
	placeholder  bool
	lastErr      error
	updatedAt    time.Time
}

type clipShareUsecase struct {
	sessions   *expirable.LRU[string, *clipSession]
	branding   *BrandingProvider
	pages      *PageSource
	compositor *compose.Compositor
	encoder    *encode.Encoder
	publisher  *Publisher
	client     domain.EpaperClient
	hooks      Hooks
	logger     *slog.Logger
	now        func() time.Time
}

func NewClipShareUsecase(
	branding *BrandingProvider,
	pages *PageSource,
	compositor *compose.Compositor,
	encoder *encode.Encoder,
	publisher *Publisher,
	client domain.EpaperClient,
	opts SessionOptions,
	hooks Hooks,
	logger *slog.Logger,
) ClipShareUsecase {
	if opts.Capacity <= 0 {
		opts.Capacity = 1024
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	return &clipShareUsecase{
		sessions:   expirable.NewLRU[string, *clipSession](opts.Capacity, nil, opts.TTL),
		branding:   branding,
		pages:      pages,
		compositor: compositor,
		encoder:    encoder,
		publisher:  publisher,
		client:     client,
		hooks:      hooks,
		logger:     logger,
		now:        time.Now,
	}
}

func (u *clipShareUsecase) StartSession(ctx context.Context, in StartSessionInput) (*SessionSnapshot, error) {
	sel, err := selector.New(in.Displayed, in.Viewport)
	if err != nil {
		return nil, err
	}
	if in.Selection != nil {
		sel.SetRect(*in.Selection)
	}
	if err := u.pages.Authorize(ctx, in.PageImageURL); err != nil {
		u.logger.WarnContext(ctx, "page image url rejected", "paper_id", in.PaperID, "error", err)
		return nil, err
	}
	s := &clipSession{
		id:           uuid.NewString(),
		paperID:      in.PaperID,
		page:         in.Page,
		pageImageURL: in.PageImageURL,
		sel:          sel,
		state:        domain.StateSelecting,
		updatedAt:    u.now(),
	}
	u.sessions.Add(s.id, s)
	u.reportSessions()

	ctx = logger.WithSessionID(logger.WithPaperID(ctx, in.PaperID), s.id)
	rect, _ := sel.Rect()
	u.logger.InfoContext(ctx, "clip session started",
		"page", in.Page,
		"surface_width", in.Displayed.Width,
		"surface_height", in.Displayed.Height,
		"selection", rect)

	s.mu.Lock()
	defer s.mu.Unlock()
	return u.snapshotLocked(s), nil
}

func (u *clipShareUsecase) ApplyGesture(ctx context.Context, id string, g GestureInput) (*SessionSnapshot, error) {
	s, err := u.lookup(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.InFlight() {
		return nil, domain.ErrShareInFlight
	}
	if !s.state.AcceptsGestures() || !s.sel.Active() {
		return nil, domain.ErrNotSelecting
	}

	before, _ := s.sel.Rect()
	switch {
	case g.Mouse != nil:
		s.sel.HandleMouse(*g.Mouse)
	case g.Touch != nil:
		s.sel.HandleTouch(*g.Touch)
	}
	after, _ := s.sel.Rect()

	// An edited selection invalidates the previous result.
	if after != before && s.state != domain.StateSelecting {
		u.transitionLocked(ctx, s, domain.StateSelecting)
		s.result = nil
		s.image = nil
		s.placeholder = false
		s.lastErr = nil
	}
	s.updatedAt = u.now()
	u.sessions.Add(s.id, s)
	return u.snapshotLocked(s), nil
}

func (u *clipShareUsecase) Share(ctx context.Context, id, origin string) (*SessionSnapshot, error) {
	s, err := u.lookup(id)
	if err != nil {
		return nil, err
	}

	// 1. Claim the session
	s.mu.Lock()
	if s.state.InFlight() {
		s.mu.Unlock()
		return nil, domain.ErrShareInFlight
	}
	rect, active := s.sel.Rect()
	if !s.state.CanShare() || !active {
		s.mu.Unlock()
		return nil, domain.ErrNotSelecting
	}
	s.sel.PointerUp()
	u.transitionLocked(ctx, s, domain.StateComposing)
	s.result = nil
	s.image = nil
	s.placeholder = false
	s.lastErr = nil
	surface := s.sel.Surface()
	paperID, page, pageImageURL := s.paperID, s.page, s.pageImageURL
	s.mu.Unlock()

	ctx = logger.WithSessionID(logger.WithPaperID(ctx, paperID), s.id)
	ctx, span := tracer.Start(ctx, "ClipShare.Share")
	defer span.End()
	span.SetAttributes(
		attribute.String("clip.session.id", s.id),
		attribute.String("clip.paper.id", paperID),
		attribute.Int("clip.page", page),
	)

	// 2. Compose
	base := u.publisher.ShareBase(origin)
	composed, err := u.compose(ctx, compose.Input{
		Displayed:  surface,
		Selection:  rect,
		PageNumber: page,
		Domain:     ShareDomain(base),
	}, paperID, pageImageURL)
	if err != nil {
		return u.failWithPlaceholder(ctx, s, rect, StageCompose, err)
	}

	// 3. Encode
	u.transition(ctx, s, domain.StateEncoding)
	encoded, err := u.encode(ctx, composed)
	if err != nil {
		return u.failWithPlaceholder(ctx, s, rect, StageEncode, err)
	}
	s.mu.Lock()
	s.image = encoded
	s.mu.Unlock()

	// 4. Publish
	u.transition(ctx, s, domain.StatePublishing)
	result, err := u.publish(ctx, PublishInput{
		Image:     encoded,
		PaperID:   paperID,
		Page:      page,
		Selection: rect,
		Origin:    origin,
	})
	if err != nil {
		return u.fail(ctx, s, StagePublish, err)
	}
	span.SetAttributes(attribute.String("clip.id", result.Clip.ClipID))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
	u.transitionLocked(ctx, s, domain.StateReady)
	s.updatedAt = u.now()
	u.sessions.Add(s.id, s)
	return u.snapshotLocked(s), nil
}

func (u *clipShareUsecase) Cancel(ctx context.Context, id string) error {
	s, err := u.lookup(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.InFlight() {
		return domain.ErrShareInFlight
	}
	s.sel.Cancel()
	u.transitionLocked(ctx, s, domain.StateIdle)
	u.sessions.Remove(id)
	u.reportSessions()
	u.logger.InfoContext(logger.WithSessionID(ctx, id), "clip session cancelled")
	return nil
}

func (u *clipShareUsecase) Snapshot(_ context.Context, id string) (*SessionSnapshot, error) {
	s, err := u.lookup(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return u.snapshotLocked(s), nil
}

func (u *clipShareUsecase) Image(_ context.Context, id string) (*SessionImage, error) {
	s, err := u.lookup(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.image == nil {
		return nil, domain.ErrClipImageNotFound
	}
	return &SessionImage{Image: s.image, Placeholder: s.placeholder}, nil
}

func (u *clipShareUsecase) ResolveClip(ctx context.Context, clipID string) (*domain.ClipRecord, error) {
	rec, err := u.client.GetClip(logger.WithClipID(ctx, clipID), clipID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve clip %s: %w", clipID, err)
	}
	return rec, nil
}

func (u *clipShareUsecase) compose(ctx context.Context, in compose.Input, paperID, pageImageURL string) (img *image.RGBA, err error) {
	ctx = logger.WithStage(ctx, StageCompose)
	ctx, span := tracer.Start(ctx, "ClipShare.compose")
	start := time.Now()
	defer func() { u.endStage(span, StageCompose, start, err) }()
	defer recoverStage(StageCompose, &err)

	in.Date = u.now()
	branding, err := u.branding.Branding(ctx)
	if err != nil {
		u.logger.WarnContext(ctx, "branding unavailable, composing with default strips", "error", err)
	}
	in.Branding = branding

	in.Source, err = u.pages.LoadPage(ctx, paperID, in.PageNumber, pageImageURL)
	if err != nil {
		return nil, err
	}
	return u.compositor.Compose(ctx, in)
}

func (u *clipShareUsecase) encode(ctx context.Context, img image.Image) (out *domain.EncodedImage, err error) {
	ctx = logger.WithStage(ctx, StageEncode)
	ctx, span := tracer.Start(ctx, "ClipShare.encode")
	start := time.Now()
	defer func() { u.endStage(span, StageEncode, start, err) }()
	defer recoverStage(StageEncode, &err)
	return u.encoder.Encode(ctx, img)
}

func (u *clipShareUsecase) publish(ctx context.Context, in PublishInput) (out *PublishResult, err error) {
	ctx = logger.WithStage(ctx, StagePublish)
	ctx, span := tracer.Start(ctx, "ClipShare.publish")
	start := time.Now()
	defer func() { u.endStage(span, StagePublish, start, err) }()

	out, err = u.publisher.Publish(ctx, in)
	if err == nil && u.hooks.OnPublished != nil {
		u.hooks.OnPublished(in.Image)
	}
	return out, err
}

func (u *clipShareUsecase) endStage(span trace.Span, stage string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = string(domain.KindOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	if u.hooks.OnStage != nil {
		u.hooks.OnStage(stage, status, time.Since(start))
	}
}

// recoverStage turns a panic in a raster stage into an error so the session
// still reaches failed.
func recoverStage(stage string, err *error) {
	if r := recover(); r != nil {
		cause := fmt.Errorf("panic in %s: %v", stage, r)
		if stage == StageEncode {
			*err = domain.EncodeFailedError("encoder panicked", cause, nil)
			return
		}
		*err = domain.SourceUnavailableError("compositor panicked", cause, nil)
	}
}

// failWithPlaceholder marks the session failed and keeps a placeholder
// preview of the selection's size.
func (u *clipShareUsecase) failWithPlaceholder(ctx context.Context, s *clipSession, rect domain.SelectionRect, stage string, cause error) (*SessionSnapshot, error) {
	w, h := rect.OutputSize()
	ph, err := u.encoder.Encode(ctx, compose.Placeholder(w, h))
	if err != nil {
		u.logger.WarnContext(ctx, "placeholder encode failed", "error", err)
		ph = nil
	}
	s.mu.Lock()
	s.image = ph
	s.placeholder = ph != nil
	s.mu.Unlock()
	return u.fail(ctx, s, stage, cause)
}

func (u *clipShareUsecase) fail(ctx context.Context, s *clipSession, stage string, cause error) (*SessionSnapshot, error) {
	domain.LogError(u.logger.With("stage", stage, "clip.session.id", s.id), cause, "clip share")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = cause
	s.result = nil
	u.transitionLocked(ctx, s, domain.StateFailed)
	s.updatedAt = u.now()
	return u.snapshotLocked(s), cause
}

func (u *clipShareUsecase) transition(ctx context.Context, s *clipSession, to domain.ClipState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.transitionLocked(ctx, s, to)
}

func (u *clipShareUsecase) transitionLocked(ctx context.Context, s *clipSession, to domain.ClipState) {
	if !domain.CanTransition(s.state, to) {
		u.logger.WarnContext(ctx, "unexpected clip state transition",
			"from", string(s.state),
			"to", string(to))
	}
	s.state = to
}

func (u *clipShareUsecase) lookup(id string) (*clipSession, error) {
	s, ok := u.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (u *clipShareUsecase) reportSessions() {
	if u.hooks.OnSessionCount != nil {
		u.hooks.OnSessionCount(u.sessions.Len())
	}
}

func (u *clipShareUsecase) snapshotLocked(s *clipSession) *SessionSnapshot {
	rect, active := s.sel.Rect()
	snap := &SessionSnapshot{
		ID:          s.id,
		PaperID:     s.paperID,
		Page:        s.page,
		State:       s.state,
		Surface:     s.sel.Surface(),
		Selection:   rect,
		Active:      active,
		HasImage:    s.image != nil,
		Placeholder: s.placeholder,
		UpdatedAt:   s.updatedAt,
	}
	if s.result != nil {
		snap.ClipID = s.result.Clip.ClipID
		snap.ShareURL = s.result.ShareURL
		snap.ImageURL = s.result.ImageURL
		snap.Caption = u.publisher.Caption()
		snap.Links = s.result.Links
	}
	if s.lastErr != nil {
		info := &ErrorInfo{Kind: domain.KindOf(s.lastErr), Message: s.lastErr.Error()}
		var ce *domain.ClipError
		if errors.As(s.lastErr, &ce) {
			info.Message = ce.Message
		}
		snap.Error = info
	}
	return snap
}
