// Package cli implements clipctl, a terminal front end for the clip pipeline.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"epaper-clip/internal/di"
	"epaper-clip/internal/infra/config"
	logging "epaper-clip/internal/infra/logger"
)

var (
	cfgFile   string
	verbose   bool
	colorMode string
	version   = "dev"

	cfg     *config.Config
	logger  *slog.Logger
	printer *Printer
)

var rootCmd = &cobra.Command{
	Use:   "clipctl",
	Short: "Clip, brand and share e-paper page regions",
	Long: `clipctl runs the e-paper clip pipeline from a terminal.

It crops a region of a page image, frames it with the configured top and
bottom branding strips, encodes it, and publishes it as a shareable clip.

Example usage:
  clipctl compose --paper p1 --page 3 --rect 50,50,200,150 -o clip.webp
  clipctl share --paper p1 --page 3 --rect 50,50,200,150 --copy
  clipctl resolve 42`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

// Execute runs the root command; ctx cancels in-flight pipeline work.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .clipctl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "color output: auto, always, never")
	rootCmd.PersistentFlags().String("api-url", "", "e-paper API base URL")
	rootCmd.PersistentFlags().String("base-url", "", "public base URL for share links")

	_ = viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("base-url"))
}

// initConfig layers the config file and CLIPCTL_* variables over the
// service environment.
func initConfig(cmd *cobra.Command) error {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger = slog.New(logging.NewScrubHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	useColors, err := resolveColors(colorMode)
	if err != nil {
		return err
	}
	printer = NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), useColors)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".clipctl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/clipctl")
	}
	viper.SetEnvPrefix("CLIPCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	cfg = config.Load()
	applyOverrides(cfg, viper.GetViper())

	logger.Debug("configuration loaded",
		"config_file", viper.ConfigFileUsed(),
		"api_url", cfg.EpaperAPIURL,
		"base_url", cfg.PublicBaseURL)
	return nil
}

// applyOverrides copies non-empty CLI settings onto the service config.
func applyOverrides(c *config.Config, v *viper.Viper) {
	if s := v.GetString("api_url"); s != "" {
		c.EpaperAPIURL = strings.TrimRight(s, "/")
	}
	if s := v.GetString("api_key"); s != "" {
		c.EpaperAPIKey = s
	}
	if s := v.GetString("base_url"); s != "" {
		c.PublicBaseURL = strings.TrimRight(s, "/")
	}
	if s := v.GetString("locale"); s != "" {
		c.Locale = s
	}
	if s := v.GetString("caption"); s != "" {
		c.ShareCaption = s
	}
	if n := v.GetInt("webp_quality"); n > 0 {
		c.WebPQuality = n
	}
	if n := v.GetInt("strip_height"); n > 0 {
		c.DefaultStripHeight = n
	}
	if d := v.GetDuration("publish_timeout"); d > 0 {
		c.PublishTimeout = d
	}
	// The CLI never has a database; clip images are embedded.
	c.DBHost = ""
}

func newComponents() *di.ApplicationComponents {
	// A local operator may point at any file or host.
	return di.NewApplicationComponents(cfg, nil, logger, di.Options{
		AllowFileImages:    true,
		TrustPageURLs:      true,
		AllowPrivateImages: true,
	})
}
