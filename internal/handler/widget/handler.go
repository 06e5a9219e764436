package widget

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	model "github.com/einfratech/chatwidget/backend/internal/model/widget"
	widgetservice "github.com/einfratech/chatwidget/backend/internal/service/widget"
	"github.com/einfratech/chatwidget/backend/pkg/utils"
)

// Handler 聊天挂件的HTTP处理器
type Handler struct {
	widgets *widgetservice.Manager
	log     zerolog.Logger
	ws      *WebSocketHandler
}

// New 创建挂件处理器
func New(widgets *widgetservice.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		widgets: widgets,
		log:     log,
		ws:      NewWebSocketHandler(widgets, log),
	}
}

type messagePayload struct {
	Text string `json:"text"`
}

type quickPayload struct {
	Question string `json:"question"`
}

type submitResponse struct {
	Messages []model.Message `json:"messages"`
	Snapshot model.Snapshot  `json:"snapshot"`
}

// RegisterRoutes 注册挂件相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/faq", h.handleListFAQ)
	r.Post("/widget", h.handleCreate)
	r.Get("/widget/{sessionID}", h.handleSnapshot)
	r.Delete("/widget/{sessionID}", h.handleDelete)
	r.Post("/widget/{sessionID}/toggle", h.handleToggle)
	r.Post("/widget/{sessionID}/close", h.handleClose)
	r.Post("/widget/{sessionID}/hover/start", h.handleHoverStart)
	r.Post("/widget/{sessionID}/hover/end", h.handleHoverEnd)
	r.Put("/widget/{sessionID}/input", h.handleSetInput)
	r.Post("/widget/{sessionID}/messages", h.handleSubmitMessage)
	r.Post("/widget/{sessionID}/submit", h.handleSubmitInput)
	r.Post("/widget/{sessionID}/quick", h.handleQuick)
	r.Get("/widget/{sessionID}/events", h.handleEvents)
	r.Get("/widget/{sessionID}/ws", h.ws.handleWebSocket)
}

// handleListFAQ 列出问答表
func (h *Handler) handleListFAQ(w http.ResponseWriter, r *http.Request) {
	catalog := h.widgets.Catalog()
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"welcome": catalog.Welcome,
		"prompts": catalog.Prompts,
		"faq":     catalog.FAQ.Entries(),
	})
}

// handleCreate 创建挂件会话
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	wg, err := h.widgets.Create(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, wg.Snapshot())
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	wg, ok := h.lookup(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, wg.Snapshot())
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.widgets.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	if wg, ok := h.lookup(w, r); ok {
		utils.RespondJSON(w, http.StatusOK, wg.ToggleOpen())
	}
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	if wg, ok := h.lookup(w, r); ok {
		utils.RespondJSON(w, http.StatusOK, wg.Close())
	}
}

func (h *Handler) handleHoverStart(w http.ResponseWriter, r *http.Request) {
	if wg, ok := h.lookup(w, r); ok {
		utils.RespondJSON(w, http.StatusOK, wg.HoverStart())
	}
}

func (h *Handler) handleHoverEnd(w http.ResponseWriter, r *http.Request) {
	if wg, ok := h.lookup(w, r); ok {
		utils.RespondJSON(w, http.StatusOK, wg.HoverEnd())
	}
}

// handleSetInput 同步输入框内容
func (h *Handler) handleSetInput(w http.ResponseWriter, r *http.Request) {
	wg, ok := h.lookup(w, r)
	if !ok {
		return
	}
	payload, err := utils.DecodeRequest[messagePayload](r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	utils.RespondJSON(w, http.StatusOK, wg.SetInput(payload.Text))
}

// handleSubmitMessage 提交一条消息；空文本同样会得到兜底回复
func (h *Handler) handleSubmitMessage(w http.ResponseWriter, r *http.Request) {
	wg, ok := h.lookup(w, r)
	if !ok {
		return
	}
	payload, err := utils.DecodeRequest[messagePayload](r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	added, snap := wg.SubmitMessage(payload.Text)
	utils.RespondJSON(w, http.StatusOK, submitResponse{Messages: added, Snapshot: snap})
}

// handleSubmitInput 相当于回车或点击发送
func (h *Handler) handleSubmitInput(w http.ResponseWriter, r *http.Request) {
	if wg, ok := h.lookup(w, r); ok {
		added, snap := wg.SubmitInput()
		utils.RespondJSON(w, http.StatusOK, submitResponse{Messages: added, Snapshot: snap})
	}
}

// handleQuick 处理快捷问题按钮和闪烁气泡的点击
func (h *Handler) handleQuick(w http.ResponseWriter, r *http.Request) {
	wg, ok := h.lookup(w, r)
	if !ok {
		return
	}
	payload, err := utils.DecodeRequest[quickPayload](r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	added, snap := wg.SubmitFromQuickButton(payload.Question)
	utils.RespondJSON(w, http.StatusOK, submitResponse{Messages: added, Snapshot: snap})
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*widgetservice.Widget, bool) {
	wg, err := h.widgets.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondServiceError(w, err)
		return nil, false
	}
	return wg, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, widgetservice.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error().Err(err).Msg("widget request failed")
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
