// Package page server-renders the floating chat widget.
package page

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	model "github.com/einfratech/chatwidget/backend/internal/model/widget"
	widgetservice "github.com/einfratech/chatwidget/backend/internal/service/widget"
	"github.com/einfratech/chatwidget/backend/pkg/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Handler 渲染挂件页面
type Handler struct {
	widgets *widgetservice.Manager
	apiBase string
	log     zerolog.Logger
}

// New 创建页面处理器；apiBase 为 JSON/WebSocket 接口的挂载前缀
func New(widgets *widgetservice.Manager, apiBase string, log zerolog.Logger) *Handler {
	return &Handler{widgets: widgets, apiBase: apiBase, log: log}
}

// SeqHeader carries the snapshot sequence a fragment was rendered from.
const SeqHeader = "X-Widget-Seq"

type pageData struct {
	SessionID string
	APIBase   string
	Snapshot  model.Snapshot
}

// RegisterRoutes 注册页面路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/widget/{sessionID}/fragment", h.handleFragment)
}

// handleIndex 为每次页面加载创建一个新会话
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	wg, err := h.widgets.Create(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("create widget session failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.render(w, "page", pageData{
		SessionID: wg.ID(),
		APIBase:   h.apiBase,
		Snapshot:  wg.Snapshot(),
	})
}

func (h *Handler) handleFragment(w http.ResponseWriter, r *http.Request) {
	wg, err := h.widgets.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		if errors.Is(err, widgetservice.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	snap := wg.Snapshot()
	w.Header().Set(SeqHeader, strconv.FormatUint(snap.Seq, 10))
	h.render(w, "widget", snap)
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.Error().Err(err).Str("template", name).Msg("render failed")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
