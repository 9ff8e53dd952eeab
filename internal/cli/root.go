package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yuzvak/storefront-cart/internal/config"
	"github.com/yuzvak/storefront-cart/internal/pkg/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	SessionID  string
	Format     string // "json" | "text"

	newApp AppFactory
	app    *App
}

var ValidFormats = []string{"text", "json"}

const defaultSession = "cli"

func NewRootCommand() *cobra.Command {
	return newRootCommand(NewApp)
}

func newRootCommand(factory AppFactory) *cobra.Command {
	opts := &RootOptions{newApp: factory}

	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront cart and checkout",
		Long: `Browse the sweets catalog, keep a cart per session and check it out
one unit at a time against the sweets API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.app != nil {
				opts.app.Close()
				opts.app.Log.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", os.Getenv("STOREFRONT_CONFIG"), "path to a JSON or YAML config file")
	cmd.PersistentFlags().StringVar(&opts.SessionID, "session", envOr("STOREFRONT_SESSION", defaultSession), "cart session id")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewCartCommand(opts))
	cmd.AddCommand(NewCheckoutCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewAdminCommand(opts))

	return cmd
}

// App loads config and wires dependencies on first use.
func (o *RootOptions) App(ctx context.Context) (*App, error) {
	if o.app != nil {
		return o.app, nil
	}

	cfg, err := config.LoadConfig(o.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}

	log := logger.NewLoggerWithLevel(cfg.Log.Level)

	app, err := o.newApp(ctx, cfg, log)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "start", err)
	}

	o.app = app
	return app, nil
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
