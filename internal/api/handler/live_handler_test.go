package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/parksphere/portal/internal/core/domain"
)

type stubLive struct {
	connected bool
	updates   []domain.SpotUpdate
	sent      []map[string]any
}

func (l *stubLive) Connected() bool              { return l.connected }
func (l *stubLive) Updates() []domain.SpotUpdate { return l.updates }

func (l *stubLive) Send(msg map[string]any) bool {
	if !l.connected {
		return false
	}
	l.sent = append(l.sent, msg)
	return true
}

func TestLiveHandler_Status(t *testing.T) {
	live := &stubLive{connected: true, updates: []domain.SpotUpdate{{SpotID: 3, SpotNumber: "B2", Status: domain.SpotOccupied}}}
	h := NewLiveHandler(live)

	c, rec := jsonContext(newTestEcho(), http.MethodGet, "/live", "")
	if err := h.Status(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp liveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Connected || len(resp.Updates) != 1 || resp.Updates[0].SpotNumber != "B2" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestLiveHandler_SendWhileDisconnected(t *testing.T) {
	live := &stubLive{}
	h := NewLiveHandler(live)

	c, rec := jsonContext(newTestEcho(), http.MethodPost, "/live/send", `{"type":"ping"}`)
	if err := h.Send(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "{\"sent\":false}\n" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestLiveHandler_SendRequiresType(t *testing.T) {
	live := &stubLive{connected: true}
	h := NewLiveHandler(live)

	c, rec := jsonContext(newTestEcho(), http.MethodPost, "/live/send", `{"spotId":1}`)
	_ = h.Send(c)
	if rec.Code != http.StatusBadRequest || len(live.sent) != 0 {
		t.Fatalf("expected 400 and nothing sent, got %d", rec.Code)
	}
}
