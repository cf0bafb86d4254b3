package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/logging"
	"github.com/MarinaBrowser/marina/shell/internal/shared/errs"
)

const (
	sendBuffer   = 256
	writeWait    = 10 * time.Second
	maxFrameSize = 1 << 20
)

var (
	// ErrNotConnected means no UI connection is active.
	ErrNotConnected = errs.New(errs.InvalidState, "ui bridge not connected")
	// ErrCallTimeout means the UI did not answer a call in time.
	ErrCallTimeout = errs.New(errs.InvalidState, "bridge call timed out")
	// ErrConnClosed means the connection died while a call was pending.
	ErrConnClosed = errs.New(errs.InvalidState, "bridge connection closed")
)

// conn wraps one websocket connection. A writer goroutine drains the send
// buffer so enqueues never block; replies to pending calls are matched by
// id and handed to the waiting channel.
type conn struct {
	ws   *websocket.Conn
	log  *logging.Logger
	send chan Message

	callMu sync.Mutex
	calls  map[string]chan Message

	closeOnce sync.Once
	closed    chan struct{}
}

func newConn(ws *websocket.Conn, log *logging.Logger) *conn {
	c := &conn{
		ws:     ws,
		log:    log,
		send:   make(chan Message, sendBuffer),
		calls:  make(map[string]chan Message),
		closed: make(chan struct{}),
	}
	ws.SetReadLimit(maxFrameSize)
	go c.writeLoop()
	return c
}

func (c *conn) writeLoop() {
	for {
		select {
		case msg := <-c.send:
			data, err := encode(msg)
			if err != nil {
				c.log.Error("bridge encode failed", zap.String("type", msg.Type), zap.Error(err))
				continue
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Warn("bridge write failed", zap.Error(err))
				c.close()
				return
			}
		case <-c.closed:
			return
		}
	}
}

// readLoop blocks on the socket, routing replies to pending calls and
// everything else to handle. Request handling runs on this goroutine, so
// handlers must not wait on a bridge call themselves.
func (c *conn) readLoop(handle func(Message)) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn("bridge read failed", zap.Error(err))
			}
			return
		}
		msg, err := decode(data)
		if err != nil {
			c.log.Warn("bridge message rejected", zap.Error(err))
			continue
		}
		if msg.isReply() {
			c.deliver(msg)
			continue
		}
		handle(msg)
	}
}

// enqueue queues a message for the writer. A full buffer means the UI has
// stopped draining; the connection closes so a reconnect can supersede it.
func (c *conn) enqueue(msg Message) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		c.log.Warn("bridge send buffer full, closing connection", zap.String("type", msg.Type))
		c.close()
		return false
	}
}

// call sends a request and waits for its reply.
func (c *conn) call(ctx context.Context, typ string, payload interface{}, timeout time.Duration) (Message, error) {
	data, err := raw(payload)
	if err != nil {
		return Message{}, err
	}
	id := uuid.NewString()
	ch := make(chan Message, 1)

	c.callMu.Lock()
	c.calls[id] = ch
	c.callMu.Unlock()
	defer func() {
		c.callMu.Lock()
		delete(c.calls, id)
		c.callMu.Unlock()
	}()

	if !c.enqueue(Message{ID: id, Type: typ, Payload: data}) {
		return Message{}, ErrConnClosed
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case reply := <-ch:
		if reply.Type == typeError {
			return Message{}, reply.wireErr()
		}
		return reply, nil
	case <-timer.C:
		return Message{}, ErrCallTimeout
	case <-c.closed:
		return Message{}, ErrConnClosed
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

func (c *conn) deliver(msg Message) {
	c.callMu.Lock()
	ch, ok := c.calls[msg.ID]
	c.callMu.Unlock()
	if !ok {
		c.log.Debug("bridge reply for unknown call", zap.String("id", msg.ID))
		return
	}
	select {
	case ch <- msg:
	default:
		// Duplicate reply; the first one already landed.
	}
}

func (c *conn) reply(id string, payload interface{}) {
	data, err := raw(payload)
	if err != nil {
		c.log.Error("bridge reply encode failed", zap.Error(err))
		c.replyError(id, err)
		return
	}
	c.enqueue(Message{ID: id, Type: typeResponse, Payload: data})
}

func (c *conn) replyError(id string, err error) {
	data, encErr := raw(WireError{Code: string(errs.CodeOf(err)), Message: err.Error()})
	if encErr != nil {
		return
	}
	c.enqueue(Message{ID: id, Type: typeError, Payload: data})
}

func (c *conn) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.ws.Close()
	})
}
