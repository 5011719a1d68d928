// Package clipboard writes share links to the system clipboard, or to the
// terminal's clipboard through an OSC 52 escape sequence.
package clipboard

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/atotto/clipboard"

	"epaper-clip/internal/domain"
)

// System uses the host clipboard (pbcopy, xclip, xsel, wl-copy, Windows API).
type System struct {
	write func(string) error
}

func NewSystem() *System {
	return &System{write: clipboard.WriteAll}
}

func (s *System) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if clipboard.Unsupported {
		return domain.ErrClipboardUnavailable
	}
	if err := s.write(text); err != nil {
		return fmt.Errorf("failed to write system clipboard: %w", err)
	}
	return nil
}

// OSC52 asks the terminal to set its clipboard. It works over SSH but the
// terminal may silently ignore it.
type OSC52 struct {
	out io.Writer
}

func NewOSC52(out io.Writer) *OSC52 {
	return &OSC52{out: out}
}

func (o *OSC52) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if o.out == nil {
		return domain.ErrClipboardUnavailable
	}
	seq := "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\a"
	if _, err := io.WriteString(o.out, seq); err != nil {
		return fmt.Errorf("failed to write osc52 sequence: %w", err)
	}
	return nil
}
