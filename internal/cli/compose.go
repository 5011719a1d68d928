package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"epaper-clip/internal/domain"
	"epaper-clip/internal/usecase"
	"epaper-clip/internal/usecase/compose"
	"epaper-clip/internal/usecase/selector"
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Render a branded clip to a local file",
	Long: `Render the selected region of a page between the branding strips and
write the encoded image to a file. Nothing is published.

The selection is given in surface pixels. The surface defaults to the
native size of the page image, so --rect is then in image pixels.

Examples:
  clipctl compose --paper p1 --page 3 --rect 50,50,200,150
  clipctl compose --page-image ./page.png --surface 800x1000 --no-branding -o out.webp`,
	RunE: runCompose,
}

func init() {
	rootCmd.AddCommand(composeCmd)
	addPageFlags(composeCmd)

	composeCmd.Flags().StringP("out", "o", "", "output file (default clipped-image.<format>)")
	composeCmd.Flags().Bool("no-branding", false, "skip the branding fetch and use plain strips")
	composeCmd.Flags().String("domain", "", "domain text for the bottom strip (default from --base-url)")
}

// addPageFlags registers the flags that identify a page and a selection.
func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().String("paper", "", "paper id")
	cmd.Flags().Int("page", 1, "page number")
	cmd.Flags().String("page-image", "", "page image URL or file, overrides the edition lookup")
	cmd.Flags().String("surface", "", "displayed surface size WIDTHxHEIGHT (default native image size)")
	cmd.Flags().String("rect", "", "selection x,y,width,height (default centered selection)")
}

type pageSelection struct {
	PaperID      string
	Page         int
	PageImageURL string
	Surface      domain.Surface
	Rect         *domain.SelectionRect
}

func readPageFlags(cmd *cobra.Command) (pageSelection, error) {
	var ps pageSelection
	ps.PaperID, _ = cmd.Flags().GetString("paper")
	ps.Page, _ = cmd.Flags().GetInt("page")
	ps.PageImageURL, _ = cmd.Flags().GetString("page-image")

	if ps.PaperID == "" && ps.PageImageURL == "" {
		return ps, errors.New("either --paper or --page-image is required")
	}
	if ps.Page < 1 {
		return ps, fmt.Errorf("invalid --page %d: must be at least 1", ps.Page)
	}
	if s, _ := cmd.Flags().GetString("surface"); s != "" {
		surface, err := parseSize(s)
		if err != nil {
			return ps, err
		}
		ps.Surface = surface
	}
	if s, _ := cmd.Flags().GetString("rect"); s != "" {
		r, err := parseRect(s)
		if err != nil {
			return ps, err
		}
		ps.Rect = &r
	}
	return ps, nil
}

func runCompose(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ps, err := readPageFlags(cmd)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	noBranding, _ := cmd.Flags().GetBool("no-branding")
	domainText, _ := cmd.Flags().GetString("domain")

	app := newComponents()

	// 1. Page raster
	src, err := app.Pages.LoadPage(ctx, ps.PaperID, ps.Page, ps.PageImageURL)
	if err != nil {
		return err
	}
	if ps.Surface == (domain.Surface{}) {
		b := src.Bounds()
		ps.Surface = domain.Surface{Width: float64(b.Dx()), Height: float64(b.Dy())}
	}

	// 2. Selection
	sel, err := selector.New(ps.Surface, domain.SelectionRect{})
	if err != nil {
		return fmt.Errorf("page surface %gx%g: %w", ps.Surface.Width, ps.Surface.Height, err)
	}
	if ps.Rect != nil {
		sel.SetRect(*ps.Rect)
	}
	rect, _ := sel.Rect()

	// 3. Branding
	var branding domain.Branding
	if !noBranding {
		branding, err = app.Branding.Branding(ctx)
		if err != nil {
			printer.Warning("branding unavailable, using plain strips: %v", err)
		}
	}
	if domainText == "" {
		domainText = usecase.ShareDomain(cfg.PublicBaseURL)
	}

	// 4. Compose and encode
	composed, err := app.Compositor.Compose(ctx, compose.Input{
		Source:     src,
		Displayed:  ps.Surface,
		Selection:  rect,
		Branding:   branding,
		PageNumber: ps.Page,
		Domain:     domainText,
		Date:       time.Now(),
	})
	if err != nil {
		return err
	}
	encoded, err := app.Encoder.Encode(ctx, composed)
	if err != nil {
		return err
	}

	// 5. Write
	if out == "" {
		out = encoded.Format.FileName()
	}
	if err := os.WriteFile(out, encoded.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	printer.Success("Clip written to %s", out)
	printer.Table([]string{"Field", "Value"}, [][]string{
		{"Format", string(encoded.Format)},
		{"Size", fmt.Sprintf("%dx%d", encoded.Width, encoded.Height)},
		{"Bytes", strconv.Itoa(len(encoded.Data))},
		{"Surface", fmt.Sprintf("%gx%g", ps.Surface.Width, ps.Surface.Height)},
		{"Selection", formatRect(rect)},
	})
	return nil
}
