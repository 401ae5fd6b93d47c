package stream

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/minichat/backend/internal/clock"
	"github.com/zhouzirui/minichat/backend/internal/model/profile"
	chatservice "github.com/zhouzirui/minichat/backend/internal/service/chat"
)

type sseFrame struct {
	event string
	data  string
}

func readFrame(t *testing.T, reader *bufio.Reader) sseFrame {
	t.Helper()
	var frame sseFrame
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return frame
		case strings.HasPrefix(line, "event: "):
			frame.event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			frame.data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func setup(t *testing.T, heartbeat time.Duration) (*httptest.Server, *chatservice.Service, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	svc := chatservice.NewService(profile.NewMemoryStore(profile.Seed(), profile.DefaultID), clk, chatservice.Options{})

	h := New(svc)
	h.heartbeat = heartbeat
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, svc, clk
}

func open(t *testing.T, srv *httptest.Server, sessionID string) *bufio.Reader {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/widgets/"+sessionID+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	return bufio.NewReader(resp.Body)
}

func TestEventStreamDeliversChanges(t *testing.T) {
	srv, svc, clk := setup(t, time.Hour)
	ctx := context.Background()
	session, err := svc.Mount(ctx, "")
	require.NoError(t, err)

	reader := open(t, srv, session.ID)
	snapshot := readFrame(t, reader)
	require.Equal(t, "snapshot", snapshot.event)
	require.Contains(t, snapshot.data, `"windowState":"closed"`)

	ctrl, err := svc.Controller(ctx, session.ID)
	require.NoError(t, err)
	ctrl.Toggle()
	ctrl.Send("Hi")
	clk.Advance(time.Second)

	var kinds []string
	for i := 0; i < 5; i++ {
		kinds = append(kinds, readFrame(t, reader).event)
	}
	require.Equal(t, []string{"window", "message", "typing", "message", "typing"}, kinds)
}

func TestEventStreamEndsAfterUnmount(t *testing.T) {
	srv, svc, _ := setup(t, 20*time.Millisecond)
	session, err := svc.Mount(context.Background(), "")
	require.NoError(t, err)

	reader := open(t, srv, session.ID)
	require.Equal(t, "snapshot", readFrame(t, reader).event)

	require.NoError(t, svc.Unmount(context.Background(), session.ID))
	for {
		frame := readFrame(t, reader)
		if frame.event == "unmounted" {
			return
		}
		require.Equal(t, "heartbeat", frame.event)
	}
}

func TestEventStreamUnmountedWithoutHeartbeat(t *testing.T) {
	srv, svc, _ := setup(t, time.Hour)
	session, err := svc.Mount(context.Background(), "")
	require.NoError(t, err)

	reader := open(t, srv, session.ID)
	require.Equal(t, "snapshot", readFrame(t, reader).event)

	require.NoError(t, svc.Unmount(context.Background(), session.ID))
	frame := readFrame(t, reader)
	require.Equal(t, "unmounted", frame.event)
	require.Contains(t, frame.data, session.ID)

	_, err = reader.ReadString('\n')
	require.Error(t, err)
}

func TestEventStreamUnknownSession(t *testing.T) {
	srv, _, _ := setup(t, time.Hour)
	resp, err := http.Get(srv.URL + "/widgets/missing/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
