package widget

import (
	"net/http"
	"time"

	"github.com/einfratech/chatwidget/backend/pkg/utils"
)

const sseHeartbeat = 15 * time.Second

// handleEvents streams a snapshot event after every widget transition.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	wg, ok := h.lookup(w, r)
	if !ok {
		return
	}

	updates, cancel := wg.Subscribe()
	defer cancel()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	log := h.log.With().Str("session", wg.ID()).Logger()
	log.Debug().Msg("[sse] stream opened")
	defer func() { log.Debug().Msg("[sse] stream closed") }()

	if err := utils.SendSSEEvent(w, flusher, "snapshot", wg.Snapshot()); err != nil {
		log.Warn().Err(err).Msg("[sse] initial snapshot failed")
		return
	}

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, open := <-updates:
			if !open {
				_ = utils.SendSSEEvent(w, flusher, "closed", map[string]string{"sessionId": wg.ID()})
				return
			}
			if err := utils.SendSSEEvent(w, flusher, "snapshot", snap); err != nil {
				log.Warn().Err(err).Msg("[sse] write failed")
				return
			}
		case <-ticker.C:
			if err := h.widgets.Touch(ctx, wg.ID()); err != nil {
				return
			}
			if err := utils.SendSSEComment(w, flusher, "heartbeat"); err != nil {
				return
			}
		}
	}
}
