package conn

import (
	"context"
	"hash/fnv"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"judgement/common/log"
)

const bucketCount = 32

type Options struct {
	MaxMessageSize int64
	WriteWait      time.Duration
	PongWait       time.Duration
	SendBuffer     int

	// MessagesPerSecond <= 0 disables inbound throttling.
	MessagesPerSecond int
	Burst             int
	// ThrottleReply is sent back for every frame dropped by the limiter.
	ThrottleReply []byte
}

var DefaultOptions = Options{
	MaxMessageSize:    4096,
	WriteWait:         10 * time.Second,
	PongWait:          60 * time.Second,
	SendBuffer:        256,
	MessagesPerSecond: 20,
	Burst:             40,
}

func (o Options) pingInterval() time.Duration {
	return (o.PongWait * 9) / 10
}

type ClientBucket struct {
	sync.RWMutex
	clients map[string]Connection
}

func NewClientBucket() *ClientBucket {
	return &ClientBucket{
		clients: make(map[string]Connection),
	}
}

// Manager upgrades HTTP requests to websocket connections, keeps them in
// sharded buckets keyed by connection id and implements the send side of the
// transport.
type Manager struct {
	clientBuckets []*ClientBucket
	bucketMask    uint32

	handler  Handler
	opts     Options
	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewManager(handler Handler, opts Options) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		clientBuckets: make([]*ClientBucket, bucketCount),
		bucketMask:    uint32(bucketCount - 1),
		handler:       handler,
		opts:          opts,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:    4096,
			WriteBufferSize:   4096,
			EnableCompression: true,
		},
		ctx:    ctx,
		cancel: cancel,
	}
	for i := range bucketCount {
		m.clientBuckets[i] = NewClientBucket()
	}
	return m
}

// SetHandler wires the handler when it is built after the manager.
func (m *Manager) SetHandler(handler Handler) {
	m.handler = handler
}

// ServeHTTP upgrades the request and serves the connection until it closes.
func (m *Manager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if m.ctx.Err() != nil {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	ws, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed from %s: %v", r.RemoteAddr, err)
		return
	}

	con := NewLongConnection(uuid.NewString(), ws, m)
	m.addClient(con)
	m.wg.Add(1)
	defer m.wg.Done()

	log.Debug("Client[%s] connected from %s", con.ConnID, r.RemoteAddr)
	m.handler.OnConnect(m.ctx, con.ConnID)
	con.Run(m.ctx)
}

// Send queues buf for connID. It never blocks.
func (m *Manager) Send(connID string, buf []byte) error {
	con, ok := m.getClient(connID)
	if !ok {
		return ErrConnectionNotFound
	}
	return con.SendMessage(buf)
}

// Close drops connID; its disconnect is reported through the handler.
func (m *Manager) Close(connID string) {
	if con, ok := m.getClient(connID); ok {
		con.Close()
	}
}

func (m *Manager) Count() int {
	n := 0
	for _, bucket := range m.clientBuckets {
		bucket.RLock()
		n += len(bucket.clients)
		bucket.RUnlock()
	}
	return n
}

// Shutdown closes every connection and waits for their read loops to exit.
func (m *Manager) Shutdown() {
	m.cancel()
	for _, bucket := range m.clientBuckets {
		bucket.RLock()
		clients := make([]Connection, 0, len(bucket.clients))
		for _, con := range bucket.clients {
			clients = append(clients, con)
		}
		bucket.RUnlock()
		for _, con := range clients {
			con.Close()
		}
	}
	m.wg.Wait()
	log.Info("websocket manager closed")
}

func (m *Manager) bucket(connID string) *ClientBucket {
	return m.clientBuckets[fnv32(connID)&m.bucketMask]
}

func (m *Manager) addClient(con *LongConnection) {
	bucket := m.bucket(con.ConnID)
	bucket.Lock()
	bucket.clients[con.ConnID] = con
	bucket.Unlock()
}

func (m *Manager) getClient(connID string) (Connection, bool) {
	bucket := m.bucket(connID)
	bucket.RLock()
	defer bucket.RUnlock()
	con, ok := bucket.clients[connID]
	return con, ok
}

func (m *Manager) removeClient(ctx context.Context, con *LongConnection) {
	bucket := m.bucket(con.ConnID)
	bucket.Lock()
	if current, ok := bucket.clients[con.ConnID]; ok && current == Connection(con) {
		delete(bucket.clients, con.ConnID)
	}
	bucket.Unlock()

	con.Close()
	m.handler.OnDisconnect(context.WithoutCancel(ctx), con.ConnID)
	log.Debug("Client[%s] removed", con.ConnID)
}

func fnv32(key string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return h.Sum32()
}
