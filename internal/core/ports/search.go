package ports

import (
	"context"

	"github.com/parksphere/portal/internal/core/domain"
)

// Searcher resolves a free-text query into panel entries for the session's role.
type Searcher interface {
	Search(ctx context.Context, s domain.Session, query string) []domain.SearchResult
	QuickActions(role domain.Role) []domain.SearchResult
}

// SearchPanel is the keyboard-driven overlay in front of a Searcher.
type SearchPanel interface {
	State() domain.PanelState
	Open() domain.PanelState
	Close() domain.PanelState
	SetQuery(ctx context.Context, query string) domain.PanelState
	// Key returns the activated entry when the key was Enter on a result.
	Key(ctx context.Context, key string) (domain.PanelState, *domain.SearchResult)
}
