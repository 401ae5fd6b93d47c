package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/minichat/backend/internal/handler/realtime"
)

func newWSCommand() *cobra.Command {
	var (
		server    string
		sessionID string
		profileID string
	)

	cmd := &cobra.Command{
		Use:   "ws",
		Short: "Talk to a widget session of a running server over WebSocket",
		Long: `Lines typed on stdin are sent as messages.
Commands: /toggle, /draft <text>, /snapshot, /quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := url.Parse(server)
			if err != nil {
				return errors.Wrapf(err, "invalid server %q", server)
			}

			if sessionID == "" {
				sessionID, err = mount(base, profileID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "mounted session %s\n", sessionID)
			}

			wsURL := *base
			switch base.Scheme {
			case "https":
				wsURL.Scheme = "wss"
			default:
				wsURL.Scheme = "ws"
			}
			wsURL.Path = "/api/ws/" + sessionID

			conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
			if err != nil {
				return errors.Wrapf(err, "dial %s", wsURL.String())
			}
			defer conn.Close()

			done := make(chan struct{})
			go func() {
				defer close(done)
				for {
					var msg realtime.OutboundMessage
					if err := conn.ReadJSON(&msg); err != nil {
						return
					}
					data, _ := json.Marshal(msg.Data)
					fmt.Fprintf(cmd.OutOrStdout(), "<- %s %s\n", msg.Type, data)
				}
			}()

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				msg, quit := parseLine(scanner.Text())
				if quit {
					break
				}
				if err := conn.WriteJSON(msg); err != nil {
					return errors.Wrap(err, "write message")
				}
			}

			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", "http://localhost:8080", "Base URL of the API server")
	cmd.Flags().StringVar(&sessionID, "session", "", "Attach to an existing session instead of mounting one")
	cmd.Flags().StringVarP(&profileID, "profile", "p", "", "Profile to mount")
	return cmd
}

// parseLine maps one stdin line to an inbound message.
func parseLine(line string) (realtime.InboundMessage, bool) {
	switch {
	case line == "/quit":
		return realtime.InboundMessage{}, true
	case line == "/toggle":
		return realtime.InboundMessage{Type: realtime.TypeToggle}, false
	case line == "/snapshot":
		return realtime.InboundMessage{Type: realtime.TypeSnapshot}, false
	case strings.HasPrefix(line, "/draft"):
		return textMessage(realtime.TypeDraft, strings.TrimPrefix(strings.TrimPrefix(line, "/draft"), " ")), false
	default:
		return textMessage(realtime.TypeSend, line), false
	}
}

func textMessage(kind, text string) realtime.InboundMessage {
	data, _ := json.Marshal(realtime.TextPayload{Text: &text})
	return realtime.InboundMessage{Type: kind, Data: data}
}

func mount(base *url.URL, profileID string) (string, error) {
	body, err := json.Marshal(map[string]string{"profileId": profileID})
	if err != nil {
		return "", err
	}

	endpoint := base.JoinPath("/api/widgets")
	resp, err := http.Post(endpoint.String(), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "mount widget")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", errors.Errorf("mount widget: unexpected status %s", resp.Status)
	}

	var view struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return "", errors.Wrap(err, "decode mount response")
	}
	return view.SessionID, nil
}
