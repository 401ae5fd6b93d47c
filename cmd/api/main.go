package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/minichat/backend/internal/clock"
	"github.com/zhouzirui/minichat/backend/internal/config"
	"github.com/zhouzirui/minichat/backend/internal/handler"
	"github.com/zhouzirui/minichat/backend/internal/logging"
	"github.com/zhouzirui/minichat/backend/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if envErr != nil {
		log.Warn().Err(envErr).Msg("failed to load .env file, continuing with system environment variables only")
	}

	profiles, err := cfg.Widget.LoadProfiles()
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.Widget.ProfilesFile).Msg("failed to load widget profiles")
	}
	log.Info().
		Int("profiles", len(profiles.List())).
		Str("default", profiles.Default().ID).
		Dur("closeDelay", cfg.Widget.CloseDelay).
		Dur("replyDelay", cfg.Widget.ReplyDelay).
		Msg("widget profiles loaded")

	chatService := chat.NewService(profiles, clock.System(), chat.Options{
		Widget:      cfg.Widget.Options(),
		MaxSessions: cfg.Widget.MaxSessions,
	})
	defer chatService.Shutdown()

	router := handler.NewRouter(profiles, chatService)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("minichat backend listening")
	if err := runServer(ctx, srv); err != nil {
		log.Error().Err(err).Msg("server error")
		return
	}
	log.Info().Msg("server stopped")
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
