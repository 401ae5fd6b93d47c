package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/minichat/backend/internal/model/profile"
	"github.com/zhouzirui/minichat/backend/pkg/utils"
)

// Handler 挂件资料的HTTP处理器
type Handler struct {
	profiles profile.Store
}

// New 创建资料处理器
func New(profiles profile.Store) *Handler {
	return &Handler{profiles: profiles}
}

// RegisterRoutes 注册资料相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/profiles", h.handleListProfiles)
}

// handleListProfiles 列出所有资料
func (h *Handler) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"default":  h.profiles.Default().ID,
		"profiles": h.profiles.List(),
	})
}
