package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/einfratech/chatwidget/backend/internal/handler"
	"github.com/einfratech/chatwidget/backend/internal/logging"
	"github.com/einfratech/chatwidget/backend/internal/service/widget"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the widget page and its API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	widgets := widget.NewManager(widget.Options{
		Catalog:       a.catalog,
		HoverDelay:    a.cfg.Widget.HoverDelay,
		BlinkInterval: a.cfg.Widget.BlinkInterval,
		Logger:        logging.Component(a.log, "widget"),
	}, a.cfg.Widget.SessionTTL)
	defer widgets.Close()

	go widgets.Run(ctx)

	router := handler.NewRouter(a.cfg.Server, widgets, a.log)

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	a.log.Info().
		Str("addr", srv.Addr).
		Int("faq_entries", a.catalog.FAQ.Len()).
		Dur("hover_delay", a.cfg.Widget.HoverDelay).
		Dur("blink_interval", a.cfg.Widget.BlinkInterval).
		Msg("chat widget backend listening")

	return runServer(ctx, srv)
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
