package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"epaper-clip/internal/domain"
)

// CopyResetDelay is how long CopySuccess stays true after a copy.
const CopyResetDelay = 2 * time.Second

// ShareSurface presents a published clip: its link, the per-platform deep
// links, and a copy action with a primary and a legacy clipboard.
type ShareSurface struct {
	ShareURL string
	Caption  string
	Links    []domain.ShareLink

	primary   domain.Clipboard
	legacy    domain.Clipboard
	afterFunc func(time.Duration, func()) *time.Timer

	mu          sync.Mutex
	copySuccess bool
	resetTimer  *time.Timer
}

func NewShareSurface(result *PublishResult, caption string, primary, legacy domain.Clipboard) *ShareSurface {
	return &ShareSurface{
		ShareURL:  result.ShareURL,
		Caption:   caption,
		Links:     result.Links,
		primary:   primary,
		legacy:    legacy,
		afterFunc: time.AfterFunc,
	}
}

// Copy writes the share URL to the primary clipboard, falling back to the
// legacy one. On success CopySuccess is true for CopyResetDelay.
func (s *ShareSurface) Copy(ctx context.Context) error {
	var errs []error
	copied := false
	for _, cb := range []domain.Clipboard{s.primary, s.legacy} {
		if cb == nil {
			continue
		}
		if err := cb.WriteText(ctx, s.ShareURL); err != nil {
			errs = append(errs, err)
			continue
		}
		copied = true
		break
	}
	if !copied {
		if len(errs) == 0 {
			return domain.ErrClipboardUnavailable
		}
		return fmt.Errorf("%w: %w", domain.ErrClipboardUnavailable, errors.Join(errs...))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.copySuccess = true
	if s.resetTimer != nil {
		s.resetTimer.Stop()
	}
	s.resetTimer = s.afterFunc(CopyResetDelay, func() {
		s.mu.Lock()
		s.copySuccess = false
		s.mu.Unlock()
	})
	return nil
}

func (s *ShareSurface) CopySuccess() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copySuccess
}
