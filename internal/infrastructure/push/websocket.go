// Package push connects to the backend's websocket push channel.
package push

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/parksphere/portal/internal/core/ports"
)

const (
	handshakeTimeout = 10 * time.Second
	writeWait        = 10 * time.Second
)

// Dialer opens push connections to a fixed ws:// or wss:// endpoint. The
// credential travels in the token query parameter.
type Dialer struct {
	endpoint  string
	dialer    *websocket.Dialer
	writeWait time.Duration
}

func NewDialer(endpoint string) *Dialer {
	return &Dialer{
		endpoint: endpoint,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
		writeWait: writeWait,
	}
}

var _ ports.PushDialer = (*Dialer)(nil)

func (d *Dialer) Dial(ctx context.Context, token string) (ports.PushConn, error) {
	u, err := url.Parse(d.endpoint)
	if err != nil {
		return nil, fmt.Errorf("push endpoint: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	ws, resp, err := d.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("push dial: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("push dial: %w", err)
	}
	return &Conn{ws: ws, writeWait: d.writeWait}, nil
}

// Conn adapts a gorilla connection to text frames. Every write carries a
// deadline so a stalled peer cannot hold the caller forever.
type Conn struct {
	ws        *websocket.Conn
	writeWait time.Duration
}

func (c *Conn) ReadMessage() ([]byte, error) {
	for {
		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			return nil, err
		}
		if kind == websocket.TextMessage {
			return data, nil
		}
	}
}

func (c *Conn) WriteMessage(data []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *Conn) Close() error {
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.ws.Close()
}
