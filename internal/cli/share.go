package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"epaper-clip/internal/adapter/clipboard"
	"epaper-clip/internal/domain"
	"epaper-clip/internal/usecase"
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Compose, publish and print a share link for a clip",
	Long: `Run the full clip pipeline: compose the selection, encode it, upload
the image and register the clip with the e-paper API. Prints the share
link and the per-platform links.

Examples:
  clipctl share --paper p1 --page 3 --rect 50,50,200,150
  clipctl share --paper p1 --page 3 --copy --download clip.webp`,
	RunE: runShare,
}

func init() {
	rootCmd.AddCommand(shareCmd)
	addPageFlags(shareCmd)

	shareCmd.Flags().Bool("copy", false, "copy the share link to the clipboard")
	shareCmd.Flags().String("download", "", "also write the clip image to this file")
	_ = shareCmd.MarkFlagRequired("paper")
}

func runShare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ps, err := readPageFlags(cmd)
	if err != nil {
		return err
	}
	copyLink, _ := cmd.Flags().GetBool("copy")
	download, _ := cmd.Flags().GetString("download")

	app := newComponents()

	// The surface defaults to the native page size; the loader cache makes
	// the second fetch inside Share free.
	if ps.Surface == (domain.Surface{}) {
		src, err := app.Pages.LoadPage(ctx, ps.PaperID, ps.Page, ps.PageImageURL)
		if err != nil {
			return err
		}
		b := src.Bounds()
		ps.Surface = domain.Surface{Width: float64(b.Dx()), Height: float64(b.Dy())}
	}

	snap, err := app.ClipShare.StartSession(ctx, usecase.StartSessionInput{
		PaperID:      ps.PaperID,
		Page:         ps.Page,
		PageImageURL: ps.PageImageURL,
		Displayed:    ps.Surface,
		Selection:    ps.Rect,
	})
	if err != nil {
		return err
	}
	logger.Debug("clip session started", "session_id", snap.ID, "selection", formatRect(snap.Selection))

	snap, shareErr := app.ClipShare.Share(ctx, snap.ID, "")
	if download != "" && snap != nil && snap.HasImage {
		if err := writeSessionImage(cmd, app.ClipShare, snap.ID, download); err != nil {
			printer.Warning("%v", err)
		}
	}
	if shareErr != nil {
		return shareErr
	}

	printer.Success("Clip %s published", snap.ClipID)
	printer.Info("%s", snap.ShareURL)

	rows := make([][]string, 0, len(snap.Links))
	for _, l := range snap.Links {
		rows = append(rows, []string{l.Platform.Label(), l.URL})
	}
	printer.Header("Share on")
	printer.Table([]string{"Platform", "Link"}, rows)

	if copyLink {
		surface := usecase.NewShareSurface(
			&usecase.PublishResult{ShareURL: snap.ShareURL, Links: snap.Links},
			snap.Caption,
			clipboard.NewSystem(),
			clipboard.NewOSC52(cmd.ErrOrStderr()),
		)
		if err := surface.Copy(ctx); err != nil {
			printer.Warning("could not copy link: %v", err)
		} else if surface.CopySuccess() {
			printer.Success("Link copied")
		}
	}
	return nil
}

func writeSessionImage(cmd *cobra.Command, clips usecase.ClipShareUsecase, sessionID, path string) error {
	img, err := clips.Image(cmd.Context(), sessionID)
	if err != nil {
		return fmt.Errorf("no image to download: %w", err)
	}
	if err := os.WriteFile(path, img.Image.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if img.Placeholder {
		printer.Warning("compose failed, wrote a placeholder image to %s", path)
		return nil
	}
	printer.Success("Image written to %s", path)
	return nil
}
