package ports

import "github.com/parksphere/portal/internal/core/domain"

// LiveFeed is the read/write surface of the live update channel.
type LiveFeed interface {
	Connected() bool
	Updates() []domain.SpotUpdate
	// Send reports whether the frame was written.
	Send(msg map[string]any) bool
}
