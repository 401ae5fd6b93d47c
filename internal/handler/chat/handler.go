package chat

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	chatService "github.com/zhouzirui/minichat/backend/internal/service/chat"
	"github.com/zhouzirui/minichat/backend/pkg/utils"
)

// Handler 聊天挂件的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
}

// New 创建聊天挂件处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册挂件相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/widgets", h.handleMount)
	r.Route("/widgets/{sessionID}", func(w chi.Router) {
		w.Get("/", h.handleView)
		w.Delete("/", h.handleUnmount)
		w.Post("/toggle", h.handleToggle)
		w.Put("/draft", h.handleDraft)
		w.Post("/messages", h.handleSend)
	})
}

type sendResponse struct {
	chatService.View
	Accepted bool `json:"accepted"`
}

// handleMount 挂载一个新的挂件会话
func (h *Handler) handleMount(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ProfileID string `json:"profileId"`
	}
	if err := decodeOptional(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.chatSvc.Mount(r.Context(), payload.ProfileID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	view, err := h.chatSvc.View(r.Context(), session.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, view)
}

// handleView 返回挂件当前状态
func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, http.StatusOK)
}

// handleUnmount 卸载挂件，历史随之丢弃
func (h *Handler) handleUnmount(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.Unmount(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleToggle 切换窗口
func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	ctrl, err := h.chatSvc.Controller(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	ctrl.Toggle()
	h.respondView(w, r, http.StatusOK)
}

// handleDraft 更新草稿
func (h *Handler) handleDraft(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctrl, err := h.chatSvc.Controller(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	ctrl.UpdateDraft(payload.Text)
	h.respondView(w, r, http.StatusOK)
}

// handleSend 发送消息；未提供 text 时发送当前草稿
func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text *string `json:"text"`
	}
	if err := decodeOptional(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	ctrl, err := h.chatSvc.Controller(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var accepted bool
	if payload.Text != nil {
		accepted = ctrl.Send(*payload.Text) != nil
	} else {
		accepted = ctrl.SendDraft() != nil
	}

	view, err := h.chatSvc.View(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	status := http.StatusOK
	if accepted {
		status = http.StatusAccepted
	}
	utils.RespondJSON(w, status, sendResponse{View: view, Accepted: accepted})
}

func (h *Handler) respondView(w http.ResponseWriter, r *http.Request, status int) {
	view, err := h.chatSvc.View(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, status, view)
}

// decodeOptional accepts an empty body as the zero payload.
func decodeOptional(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, chatService.ErrProfileNotFound):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chatService.ErrTooManySessions):
		utils.RespondError(w, http.StatusTooManyRequests, err.Error())
	default:
		log.Error().Err(err).Str("component", "widget_api").Msg("unexpected service error")
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
