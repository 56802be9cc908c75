package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/parksphere/portal/internal/api/metrics"
	"github.com/parksphere/portal/internal/core/domain"
	"github.com/parksphere/portal/internal/core/ports"
)

// DefaultLiveLogLimit is the number of spot updates kept per connection.
const DefaultLiveLogLimit = 500

// LiveChannel keeps one push connection open for as long as the session is
// authenticated. It never reconnects by itself: a dropped connection stays
// down until the credential changes or the channel is bound again.
type LiveChannel struct {
	feed   ports.SessionFeed
	dialer ports.PushDialer
	log    zerolog.Logger
	limit  int

	mu        sync.Mutex
	ctx       context.Context
	unbind    func()
	gen       uint64
	token     string
	conn      ports.PushConn
	connID    string
	connected bool
	updates   []domain.SpotUpdate
}

// NewLiveChannel builds an unbound channel. limit caps the update log; zero
// or less keeps every update.
func NewLiveChannel(feed ports.SessionFeed, dialer ports.PushDialer, limit int, log zerolog.Logger) *LiveChannel {
	return &LiveChannel{
		feed:   feed,
		dialer: dialer,
		limit:  limit,
		log:    log.With().Str("component", "live_channel").Logger(),
	}
}

// Bind attaches the channel to the session feed until ctx is done, then
// closes whatever connection is open.
func (l *LiveChannel) Bind(ctx context.Context) {
	l.mu.Lock()
	if l.unbind != nil {
		l.mu.Unlock()
		return
	}
	l.ctx = ctx
	l.unbind = l.feed.Subscribe(l.sync)
	l.mu.Unlock()

	if l.feed.Hydrated() {
		l.sync(l.feed.Snapshot())
	}

	go func() {
		<-ctx.Done()
		l.Close()
	}()
}

// Close detaches from the session feed and drops the connection.
func (l *LiveChannel) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.unbind != nil {
		l.unbind()
		l.unbind = nil
	}
	l.gen++
	l.token = ""
	l.dropLocked()
}

// sync reacts to one session change. The same credential is a no-op; a new
// one replaces the connection and starts an empty log.
func (l *LiveChannel) sync(s domain.Session) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.unbind == nil || s.Token == l.token {
		return
	}

	l.gen++
	l.dropLocked()
	l.token = s.Token
	l.updates = nil
	if s.Token == "" {
		return
	}

	go l.connect(l.ctx, l.gen, s.Token)
}

func (l *LiveChannel) connect(ctx context.Context, gen uint64, token string) {
	conn, err := l.dialer.Dial(ctx, token)
	if err != nil {
		l.log.Error().Err(err).Msg("push channel connection failed")
		metrics.LiveConnectionsTotal.WithLabelValues("failed").Inc()
		return
	}

	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		_ = conn.Close()
		return
	}
	l.conn = conn
	l.connID = uuid.NewString()
	l.connected = true
	connID := l.connID
	l.mu.Unlock()

	metrics.LiveConnectionsTotal.WithLabelValues("opened").Inc()
	metrics.LiveConnected.Set(1)
	l.log.Info().Str("conn_id", connID).Msg("push channel connected")

	l.readLoop(conn, gen, connID)
}

func (l *LiveChannel) readLoop(conn ports.PushConn, gen uint64, connID string) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			l.mu.Lock()
			current := gen == l.gen
			if current {
				l.dropLocked()
			}
			l.mu.Unlock()

			if current {
				l.log.Error().Err(err).Str("conn_id", connID).Msg("push channel disconnected")
			}
			return
		}
		l.handle(gen, data)
	}
}

func (l *LiveChannel) handle(gen uint64, data []byte) {
	var frame struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		l.log.Warn().Err(err).Msg("dropping malformed push frame")
		metrics.LiveFramesTotal.WithLabelValues("malformed").Inc()
		return
	}
	if frame.Type != domain.EventSpotUpdate {
		l.log.Warn().Str("type", frame.Type).Msg("dropping unrecognised push frame")
		metrics.LiveFramesTotal.WithLabelValues("unknown").Inc()
		return
	}

	var upd domain.SpotUpdate
	if err := json.Unmarshal(data, &upd); err != nil {
		l.log.Warn().Err(err).Msg("dropping malformed spot update")
		metrics.LiveFramesTotal.WithLabelValues("malformed").Inc()
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return
	}
	l.updates = append(l.updates, upd)
	if l.limit > 0 && len(l.updates) > l.limit {
		n := copy(l.updates, l.updates[len(l.updates)-l.limit:])
		l.updates = l.updates[:n]
	}
	metrics.LiveFramesTotal.WithLabelValues(domain.EventSpotUpdate).Inc()
}

// Send writes msg as a JSON frame. Nothing is sent, and false is returned,
// when the connection is not open or msg has no type.
func (l *LiveChannel) Send(msg map[string]any) bool {
	if t, _ := msg["type"].(string); t == "" {
		return false
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.connected || l.conn == nil {
		return false
	}
	if err := l.conn.WriteMessage(data); err != nil {
		l.log.Error().Err(err).Str("conn_id", l.connID).Msg("push channel write failed")
		l.gen++
		l.dropLocked()
		return false
	}
	return true
}

func (l *LiveChannel) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

// Updates returns the spot updates received on the current connection, in
// arrival order.
func (l *LiveChannel) Updates() []domain.SpotUpdate {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.SpotUpdate, len(l.updates))
	copy(out, l.updates)
	return out
}

func (l *LiveChannel) dropLocked() {
	if l.conn != nil {
		if err := l.conn.Close(); err != nil {
			l.log.Debug().Err(err).Msg("closing push connection")
		}
		l.conn = nil
	}
	if l.connected {
		metrics.LiveConnected.Set(0)
	}
	l.connected = false
	l.connID = ""
}
