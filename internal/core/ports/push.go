package ports

import "context"

// PushConn is one open connection to the push channel.
type PushConn interface {
	// ReadMessage blocks until the next text frame arrives or the connection fails.
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
}

// PushDialer opens a push connection authenticated by a bearer token.
type PushDialer interface {
	Dial(ctx context.Context, token string) (PushConn, error)
}
