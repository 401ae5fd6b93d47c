package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/minichat/backend/internal/handler/chat"
	"github.com/zhouzirui/minichat/backend/internal/handler/profile"
	"github.com/zhouzirui/minichat/backend/internal/handler/realtime"
	"github.com/zhouzirui/minichat/backend/internal/handler/stream"
	middlewarePkg "github.com/zhouzirui/minichat/backend/internal/middleware"
	profileModel "github.com/zhouzirui/minichat/backend/internal/model/profile"
	chatService "github.com/zhouzirui/minichat/backend/internal/service/chat"
	"github.com/zhouzirui/minichat/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(profiles profileModel.Store, chatSvc *chatService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	profileHandler := profile.New(profiles)
	chatHandler := chat.New(chatSvc)
	streamHandler := stream.New(chatSvc)
	wsHandler := realtime.NewWebSocketHandler(chatSvc)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": chatSvc.Count(),
		})
	})

	r.Route("/api", func(api chi.Router) {
		profileHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
		wsHandler.RegisterWebSocketRoutes(api)
	})

	return r
}
