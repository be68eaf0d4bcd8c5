package conn

import "context"

// Handler receives connection lifecycle events. OnMessage is called from the
// connection's read goroutine, so frames of one connection arrive in order.
type Handler interface {
	OnConnect(ctx context.Context, connID string)
	OnMessage(ctx context.Context, connID string, body []byte)
	OnDisconnect(ctx context.Context, connID string)
}
