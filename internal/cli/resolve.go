package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"epaper-clip/internal/usecase"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <clip-id>",
	Short: "Show the stored record of a shared clip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newComponents()
		rec, err := app.ClipShare.ResolveClip(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		rows := [][]string{
			{"Clip", rec.ClipID},
			{"Paper", rec.PaperID},
			{"Page", strconv.Itoa(rec.Page)},
			{"Selection", formatRect(rec.Coordinates)},
			{"Image", rec.ImageURL},
			{"Created", rec.CreatedAt.Format(time.RFC3339)},
		}
		if cfg.PublicBaseURL != "" {
			rows = append(rows, []string{"Share link", usecase.ShareURL(cfg.PublicBaseURL, rec.ClipID)})
		}
		printer.Table([]string{"Field", "Value"}, rows)
		return nil
	},
}

var brandingCmd = &cobra.Command{
	Use:   "branding",
	Short: "Show the branding and editions served by the e-paper API",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newComponents()
		ep, err := app.Branding.Snapshot(cmd.Context())
		if err != nil {
			return err
		}

		b := ep.Branding
		printer.Header("Strips")
		printer.Table([]string{"Strip", "Background", "Logo", "Height", "Position", "Style"}, [][]string{
			{"top", b.Top.BackgroundColor, b.Top.LogoURL, strconv.Itoa(b.Top.StripHeight(cfg.DefaultStripHeight)), string(b.Top.Position), string(b.Top.Style)},
			{"bottom", b.Bottom.BackgroundColor, b.Bottom.LogoURL, strconv.Itoa(b.Bottom.StripHeight(cfg.DefaultStripHeight)), string(b.Bottom.Position), string(b.Bottom.Style)},
		})

		printer.Header("Text")
		printer.Table([]string{"Date", "Domain", "Page number"}, [][]string{{
			strconv.FormatBool(b.Display.ShowDate),
			strconv.FormatBool(b.Display.ShowDomain),
			strconv.FormatBool(b.Display.ShowPageNumber),
		}})

		rows := make([][]string, 0, len(ep.Editions))
		for _, ed := range ep.Editions {
			rows = append(rows, []string{ed.ID, ed.Title, ed.Date.Format("2006-01-02"), strconv.Itoa(len(ed.Pages))})
		}
		printer.Header("Editions")
		printer.Table([]string{"Paper", "Title", "Date", "Pages"}, rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(brandingCmd)
}
