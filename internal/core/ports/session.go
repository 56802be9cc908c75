package ports

import "github.com/parksphere/portal/internal/core/domain"

// SessionReader is the read side of the session store.
type SessionReader interface {
	Snapshot() domain.Session
	// Hydrated is false until the store has finished loading persisted state.
	Hydrated() bool
}

// SessionFeed delivers every session change to listeners, in order.
type SessionFeed interface {
	SessionReader
	Subscribe(fn func(domain.Session)) (unsubscribe func())
}
