package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondError(t *testing.T) {
	resp := httptest.NewRecorder()
	RespondError(resp, http.StatusNotFound, "session not found")

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if got := strings.TrimSpace(resp.Body.String()); got != `{"error":"session not found"}` {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestSendSSEEvent(t *testing.T) {
	resp := httptest.NewRecorder()
	SetupSSEHeaders(resp)

	if err := SendSSEEvent(resp, resp, "typing", map[string]bool{"isTyping": true}); err != nil {
		t.Fatalf("SendSSEEvent err: %v", err)
	}
	if got := resp.Body.String(); got != "event: typing\ndata: {\"isTyping\":true}\n\n" {
		t.Fatalf("unexpected frame: %q", got)
	}
	if resp.Header().Get("Content-Type") != "text/event-stream" {
		t.Fatal("missing event-stream content type")
	}
}
