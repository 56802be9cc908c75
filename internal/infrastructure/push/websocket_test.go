package push

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestDialer_SendsTokenAndExchangesFrames(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "tok-1" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()

		_ = ws.WriteMessage(websocket.BinaryMessage, []byte{0x1})
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"spot_update","spotId":7}`))
		_, echo, err := ws.ReadMessage()
		if err == nil {
			_ = ws.WriteMessage(websocket.TextMessage, echo)
		}
	}))
	defer srv.Close()

	endpoint := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	d := NewDialer(endpoint)

	conn, err := d.Dial(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Dial returned error: %v", err)
	}
	defer conn.Close()

	frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage returned error: %v", err)
	}
	if string(frame) != `{"type":"spot_update","spotId":7}` {
		t.Fatalf("binary frame not skipped, got %q", frame)
	}

	if err := conn.WriteMessage([]byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("WriteMessage returned error: %v", err)
	}
	frame, err = conn.ReadMessage()
	if err != nil || string(frame) != `{"type":"ping"}` {
		t.Fatalf("unexpected echo %q / %v", frame, err)
	}
}

func TestDialer_RejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	d := NewDialer("ws" + strings.TrimPrefix(srv.URL, "http") + "/ws")
	if _, err := d.Dial(context.Background(), "bad"); err == nil {
		t.Fatalf("expected dial to fail")
	}
}

func TestConn_WriteHonoursDeadline(t *testing.T) {
	upgrader := websocket.Upgrader{}
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		<-done
	}))
	defer srv.Close()
	defer close(done)

	d := NewDialer("ws" + strings.TrimPrefix(srv.URL, "http") + "/ws")
	d.writeWait = -time.Second

	conn, err := d.Dial(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Dial returned error: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage([]byte(`{"type":"ping"}`)); err == nil {
		t.Fatalf("expected write past its deadline to fail")
	}
}
