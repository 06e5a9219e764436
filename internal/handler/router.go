package handler

import (
	stdlog "log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/einfratech/chatwidget/backend/internal/config"
	"github.com/einfratech/chatwidget/backend/internal/handler/page"
	"github.com/einfratech/chatwidget/backend/internal/handler/widget"
	"github.com/einfratech/chatwidget/backend/internal/logging"
	widgetService "github.com/einfratech/chatwidget/backend/internal/service/widget"
	"github.com/einfratech/chatwidget/backend/pkg/utils"
)

const apiBase = "/api"

// NewRouter wires HTTP routes to core services.
func NewRouter(serverCfg config.ServerConfig, widgets *widgetService.Manager, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  stdlog.New(logging.Component(log, "http"), "", 0),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: serverCfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	pageHandler := page.New(widgets, apiBase, logging.Component(log, "page"))
	widgetHandler := widget.New(widgets, logging.Component(log, "widget-api"))

	pageHandler.RegisterRoutes(r)

	r.Route(apiBase, func(api chi.Router) {
		widgetHandler.RegisterRoutes(api)

		api.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"status":   "ok",
				"sessions": len(widgets.List(r.Context())),
			})
		})
	})

	return r
}
