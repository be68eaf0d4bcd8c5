package conn

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"judgement/common/log"
	"judgement/common/utils"
)

type Connection interface {
	SendMessage(buf []byte) error
	Close()
}

type LongConnection struct {
	ConnID    string
	Conn      *websocket.Conn
	manager   *Manager
	WriteChan chan []byte
	closeChan chan struct{}
	closeOnce sync.Once
	limiter   *utils.RateLimiter
}

func NewLongConnection(connID string, ws *websocket.Conn, manager *Manager) *LongConnection {
	opts := manager.opts
	return &LongConnection{
		ConnID:    connID,
		Conn:      ws,
		manager:   manager,
		WriteChan: make(chan []byte, opts.SendBuffer),
		closeChan: make(chan struct{}),
		limiter:   utils.NewRateLimiter(opts.MessagesPerSecond, opts.Burst),
	}
}

// Run starts the write pump and blocks in the read pump until the peer goes away.
func (con *LongConnection) Run(ctx context.Context) {
	con.Conn.SetPongHandler(con.PongHandler)
	go con.writeMessage()
	con.readMessage(ctx)
}

func (con *LongConnection) writeMessage() {
	opts := con.manager.opts
	ticker := time.NewTicker(opts.pingInterval())
	defer ticker.Stop()

	for {
		select {
		case message := <-con.WriteChan:
			if err := con.Conn.SetWriteDeadline(time.Now().Add(opts.WriteWait)); err != nil {
				log.Debug("Client[%s] SetWriteDeadline err: %v", con.ConnID, err)
			}
			if err := con.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debug("Client[%s] write err: %v", con.ConnID, err)
				con.Close()
				return
			}
		case <-ticker.C:
			if err := con.Conn.SetWriteDeadline(time.Now().Add(opts.WriteWait)); err != nil {
				log.Debug("Client[%s] ping SetWriteDeadline err: %v", con.ConnID, err)
			}
			if err := con.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug("Client[%s] ping err: %v", con.ConnID, err)
				con.Close()
				return
			}
		case <-con.closeChan:
			_ = con.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		}
	}
}

func (con *LongConnection) readMessage(ctx context.Context) {
	opts := con.manager.opts
	defer con.manager.removeClient(ctx, con)

	con.Conn.SetReadLimit(opts.MaxMessageSize)
	if err := con.Conn.SetReadDeadline(time.Now().Add(opts.PongWait)); err != nil {
		log.Error("Client[%s] SetReadDeadline err: %v", con.ConnID, err)
		return
	}
	for {
		messageType, message, err := con.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Warn("Client[%s] unexpected close: %v", con.ConnID, err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			log.Debug("Client[%s] ignoring frame type %d", con.ConnID, messageType)
			continue
		}
		if !con.limiter.Allow() {
			if opts.ThrottleReply != nil {
				_ = con.SendMessage(opts.ThrottleReply)
			}
			continue
		}
		con.manager.handler.OnMessage(ctx, con.ConnID, message)
	}
}

func (con *LongConnection) PongHandler(string) error {
	return con.Conn.SetReadDeadline(time.Now().Add(con.manager.opts.PongWait))
}

// SendMessage queues buf without blocking. A full queue drops the frame.
func (con *LongConnection) SendMessage(buf []byte) error {
	select {
	case <-con.closeChan:
		return ErrConnectionClosed
	default:
	}
	select {
	case con.WriteChan <- buf:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (con *LongConnection) Close() {
	con.closeOnce.Do(func() {
		close(con.closeChan)
		// give the write pump a moment to send the close frame
		time.AfterFunc(100*time.Millisecond, func() {
			_ = con.Conn.Close()
		})
		log.Debug("Client[%s] connection closed", con.ConnID)
	})
}
