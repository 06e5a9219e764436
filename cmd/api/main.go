package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/einfratech/chatwidget/backend/internal/config"
	"github.com/einfratech/chatwidget/backend/internal/logging"
	model "github.com/einfratech/chatwidget/backend/internal/model/widget"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	catalog model.Catalog
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "chatwidget",
		Short:         "Einfratech FAQ chat widget backend",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().String("faq-file", "", "TOML file overriding the built-in FAQ (env WIDGET_FAQ_FILE)")

	root.AddCommand(newServeCmd(a), newFAQCmd(a), newAskCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	// Load .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		zlog.Warn().Err(err).Msg("failed to load .env file, continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if path, _ := cmd.Flags().GetString("faq-file"); path != "" {
		cfg.Widget.FAQFile = path
	}

	a.cfg = cfg
	a.log = logging.New(cfg.Log, cmd.ErrOrStderr())
	zlog.Logger = a.log

	catalog, err := loadCatalog(cfg.Widget)
	if err != nil {
		return err
	}
	a.catalog = catalog
	return nil
}

func loadCatalog(cfg config.WidgetConfig) (model.Catalog, error) {
	if cfg.FAQFile == "" {
		return model.DefaultCatalog(), nil
	}
	return model.LoadCatalogFile(cfg.FAQFile)
}
