package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/minichat/backend/internal/clock"
	"github.com/zhouzirui/minichat/backend/internal/config"
	"github.com/zhouzirui/minichat/backend/internal/service/chat"
	"github.com/zhouzirui/minichat/backend/internal/tui"
)

func newTUICommand() *cobra.Command {
	var (
		profileID string
		logFile   string
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run a widget in-process and render it in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			// The program owns the terminal, so logs go to a file or nowhere.
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
				if err != nil {
					return errors.Wrap(err, "open log file")
				}
				defer f.Close()
				log.Logger = zerolog.New(f).With().Timestamp().Logger()
			} else {
				log.Logger = zerolog.Nop()
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			profiles, err := cfg.Widget.LoadProfiles()
			if err != nil {
				return err
			}

			svc := chat.NewService(profiles, clock.System(), chat.Options{Widget: cfg.Widget.Options()})
			defer svc.Shutdown()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			session, err := svc.Mount(ctx, profileID)
			if err != nil {
				return err
			}
			ctrl, err := svc.Controller(ctx, session.ID)
			if err != nil {
				return err
			}
			p, err := svc.Profile(ctx, session.ID)
			if err != nil {
				return err
			}

			model := tui.New(session.ID, p, ctrl)
			defer model.Close()

			_, err = tea.NewProgram(model).Run()
			return errors.Wrap(err, "run widget program")
		},
	}

	cmd.Flags().StringVarP(&profileID, "profile", "p", "", "Profile to mount (defaults to WIDGET_DEFAULT_PROFILE)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write debug logs to this file")
	return cmd
}
