package stream

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	chatService "github.com/zhouzirui/minichat/backend/internal/service/chat"
	"github.com/zhouzirui/minichat/backend/internal/service/widget"
	"github.com/zhouzirui/minichat/backend/pkg/utils"
)

const eventBuffer = 64

// Handler pushes controller events to the browser via Server-Sent Events.
type Handler struct {
	chatSvc   *chatService.Service
	heartbeat time.Duration
}

// New creates a new stream handler
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc, heartbeat: 15 * time.Second}
}

// RegisterRoutes 注册事件流路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/widgets/{sessionID}/events", h.handleEvents)
}

// handleEvents streams a snapshot followed by every change of the session.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctrl, err := h.chatSvc.Controller(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	events := make(chan widget.Event, eventBuffer)
	unsubscribe := ctrl.Subscribe(func(ev widget.Event) {
		select {
		case events <- ev:
		default:
			log.Warn().Str("component", "sse").Str("session_id", sessionID).Uint64("seq", ev.Seq).Msg("event buffer full, dropping event")
		}
	})
	defer unsubscribe()

	utils.SetupSSEHeaders(w)
	view, err := h.chatSvc.View(r.Context(), sessionID)
	if err != nil {
		return
	}
	if err := utils.SendSSEEvent(w, flusher, "snapshot", view); err != nil {
		return
	}

	ctx := r.Context()
	log.Debug().Str("component", "sse").Str("session_id", sessionID).Msg("opening event stream")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("component", "sse").Str("session_id", sessionID).Msg("closing event stream")
			return
		case ev := <-events:
			if ev.Kind == widget.EventUnmounted {
				sendUnmounted(w, flusher, sessionID)
				return
			}
			if err := utils.SendSSEEvent(w, flusher, string(ev.Kind), ev); err != nil {
				return
			}
		case t := <-ticker.C:
			// Backstop for an unmount notice dropped on a full buffer.
			if _, err := h.chatSvc.GetSession(ctx, sessionID); err != nil {
				sendUnmounted(w, flusher, sessionID)
				return
			}
			if err := utils.SendSSEEvent(w, flusher, "heartbeat", map[string]string{
				"time": t.UTC().Format(time.RFC3339),
			}); err != nil {
				return
			}
		}
	}
}

func sendUnmounted(w http.ResponseWriter, flusher http.Flusher, sessionID string) {
	_ = utils.SendSSEEvent(w, flusher, string(widget.EventUnmounted), map[string]string{"sessionId": sessionID})
}
