package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/parksphere/portal/internal/core/domain"
	"github.com/parksphere/portal/internal/core/ports"
)

// Keys understood by the search panel.
const (
	KeyArrowDown = "ArrowDown"
	KeyArrowUp   = "ArrowUp"
	KeyEnter     = "Enter"
	KeyEscape    = "Escape"
)

// DefaultSearchDebounce is how long typing must pause before a query is sent.
const DefaultSearchDebounce = 300 * time.Millisecond

// Timer is the handle of a scheduled call. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// PanelOption customises a SearchPanel.
type PanelOption func(*SearchPanel)

// WithDebounce overrides DefaultSearchDebounce.
func WithDebounce(d time.Duration) PanelOption {
	return func(p *SearchPanel) { p.delay = d }
}

// WithAfterFunc replaces the timer used for debouncing.
func WithAfterFunc(fn AfterFunc) PanelOption {
	return func(p *SearchPanel) { p.afterFunc = fn }
}

// SearchPanel holds the quick-search overlay: its query, the debounced
// request for it and the keyboard selection over the results.
//
// Every scheduled query gets a sequence number and its own cancellable
// context. A newer keystroke stops the pending timer and cancels the
// request in flight; results are only applied when both still match.
//
// The panel belongs to one credential. Any change of token closes it.
type SearchPanel struct {
	searcher  ports.Searcher
	sessions  ports.SessionFeed
	log       zerolog.Logger
	delay     time.Duration
	afterFunc AfterFunc

	mu     sync.Mutex
	token  string
	state  domain.PanelState
	seq    uint64
	timer  Timer
	cancel context.CancelFunc
}

func NewSearchPanel(searcher ports.Searcher, sessions ports.SessionFeed, log zerolog.Logger, opts ...PanelOption) *SearchPanel {
	p := &SearchPanel{
		searcher:  searcher,
		sessions:  sessions,
		log:       log.With().Str("component", "search_panel").Logger(),
		delay:     DefaultSearchDebounce,
		afterFunc: realAfterFunc,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.token = sessions.Snapshot().Token
	sessions.Subscribe(p.sessionChanged)
	return p
}

func (p *SearchPanel) sessionChanged(s domain.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s.Token == p.token {
		return
	}
	p.token = s.Token
	if p.state.Open || p.state.Loading {
		p.log.Debug().Msg("session changed, closing search panel")
	}
	p.closeLocked()
}

// State returns a copy of the current panel state.
func (p *SearchPanel) State() domain.PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

// Open shows the panel with an empty query and the role's quick actions.
func (p *SearchPanel) Open() domain.PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.abortLocked()
	p.state = domain.PanelState{
		Open:    true,
		Results: p.searcher.QuickActions(p.sessions.Snapshot().Role()),
	}
	return p.snapshot()
}

// Close hides the panel and forgets the query.
func (p *SearchPanel) Close() domain.PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closeLocked()
	return p.snapshot()
}

// SetQuery records a keystroke. An empty query shows the quick actions
// straight away; anything else is searched once typing has paused. The
// request outlives ctx's cancellation but keeps its values.
func (p *SearchPanel) SetQuery(ctx context.Context, query string) domain.PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.state.Open {
		return p.snapshot()
	}
	p.setQueryLocked(ctx, query)
	return p.snapshot()
}

// Key applies one keyboard event. When Enter activates an entry it is
// returned so the caller can navigate to its target. Keys are ignored while
// the panel is closed.
func (p *SearchPanel) Key(ctx context.Context, key string) (domain.PanelState, *domain.SearchResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.state.Open {
		return p.snapshot(), nil
	}

	n := len(p.state.Results)
	switch key {
	case KeyArrowDown:
		if n > 0 {
			p.state.Selected = (p.state.Selected + 1) % n
		}
	case KeyArrowUp:
		if n > 0 {
			p.state.Selected = (p.state.Selected - 1 + n) % n
		}
	case KeyEscape:
		p.closeLocked()
	case KeyEnter:
		if n == 0 {
			break
		}
		picked := p.state.Results[p.state.Selected]
		if picked.ClosesPanel {
			p.closeLocked()
		} else {
			p.setQueryLocked(ctx, "")
		}
		return p.snapshot(), &picked
	}
	return p.snapshot(), nil
}

func (p *SearchPanel) setQueryLocked(ctx context.Context, query string) {
	p.abortLocked()
	p.state.Query = query

	if strings.TrimSpace(query) == "" {
		p.state.Loading = false
		p.state.Results = p.searcher.QuickActions(p.sessions.Snapshot().Role())
		p.state.Selected = 0
		return
	}

	p.seq++
	seq := p.seq
	reqCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	p.state.Loading = true
	p.timer = p.afterFunc(p.delay, func() { p.run(reqCtx, seq, query) })
}

func (p *SearchPanel) run(ctx context.Context, seq uint64, query string) {
	if ctx.Err() != nil {
		return
	}
	results := p.searcher.Search(ctx, p.sessions.Snapshot(), query)

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq || ctx.Err() != nil {
		p.log.Debug().Str("query", query).Msg("discarding superseded search results")
		return
	}
	p.state.Results = results
	p.state.Selected = 0
	p.state.Loading = false
}

func (p *SearchPanel) closeLocked() {
	p.abortLocked()
	p.state = domain.PanelState{}
}

// abortLocked stops the pending debounce timer and cancels the request in
// flight, if any.
func (p *SearchPanel) abortLocked() {
	p.seq++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *SearchPanel) snapshot() domain.PanelState {
	out := p.state
	if p.state.Results != nil {
		out.Results = make([]domain.SearchResult, len(p.state.Results))
		copy(out.Results, p.state.Results)
	}
	return out
}
