package notification

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second

	// sendBufferSize bounds the per-connection queue. A client that cannot
	// keep up loses messages rather than blocking the registry.
	sendBufferSize = 16
)

// connection owns the write side of one WebSocket. All frames go through the
// send channel and a single writer goroutine, never directly through the
// socket. The send channel is never closed: shutdown is signalled through
// done, so a concurrent Send can at worst queue a message nobody drains.
type connection struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *connection) stop() {
	c.once.Do(func() {
		close(c.done)
	})
}

// Registry routes messages to currently-connected users. Delivery is
// at-most-once: a message for an offline user is accepted and dropped, and a
// full send buffer drops the message for that connection.
type Registry struct {
	mu     sync.RWMutex
	conns  map[uuid.UUID]*connection
	logger zerolog.Logger
}

// NewRegistry creates an empty connection registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		conns:  make(map[uuid.UUID]*connection),
		logger: logger.With().Str("component", "registry").Logger(),
	}
}

// Register attaches a user's WebSocket and starts its writer goroutine. A
// second connection for the same user replaces the first.
func (r *Registry) Register(userID uuid.UUID, ws *websocket.Conn) {
	conn := &connection{
		ws:   ws,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}

	r.mu.Lock()
	if old, ok := r.conns[userID]; ok {
		old.stop()
	}
	r.conns[userID] = conn
	r.mu.Unlock()

	go r.writePump(userID, conn)

	r.logger.Info().Str("user_id", userID.String()).Msg("client connected")
}

// Unregister detaches the user's connection if it is still the given one.
func (r *Registry) Unregister(userID uuid.UUID, ws *websocket.Conn) {
	r.mu.Lock()
	conn, ok := r.conns[userID]
	if ok && conn.ws == ws {
		delete(r.conns, userID)
	} else {
		conn = nil
	}
	r.mu.Unlock()

	if conn != nil {
		conn.stop()
		r.logger.Info().Str("user_id", userID.String()).Msg("client disconnected")
	}
}

// Send queues a message for one user. Returns false when the user is offline
// or their buffer is full; the message is dropped either way.
func (r *Registry) Send(userID uuid.UUID, payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to marshal notification payload")
		return false
	}

	r.mu.RLock()
	conn, ok := r.conns[userID]
	r.mu.RUnlock()

	if !ok {
		r.logger.Debug().Str("user_id", userID.String()).Msg("user offline, notification dropped")
		return false
	}

	select {
	case <-conn.done:
		r.logger.Debug().Str("user_id", userID.String()).Msg("connection closing, notification dropped")
		return false
	case conn.send <- data:
		return true
	default:
		r.logger.Warn().Str("user_id", userID.String()).Msg("send buffer full, notification dropped")
		return false
	}
}

// Broadcast queues a message for every connected user.
func (r *Registry) Broadcast(payload any) int {
	data, err := json.Marshal(payload)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to marshal broadcast payload")
		return 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for userID, conn := range r.conns {
		select {
		case <-conn.done:
		case conn.send <- data:
			delivered++
		default:
			r.logger.Warn().Str("user_id", userID.String()).Msg("send buffer full, broadcast dropped for user")
		}
	}

	return delivered
}

// Connected reports whether the user currently has a connection.
func (r *Registry) Connected(userID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[userID]
	return ok
}

// Count returns the number of connected users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *Registry) writePump(userID uuid.UUID, conn *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.ws.Close()
	}()

	for {
		select {
		case <-conn.done:
			conn.ws.SetWriteDeadline(time.Now().Add(writeWait))
			conn.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case data := <-conn.send:
			conn.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				r.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("write failed, dropping connection")
				r.Unregister(userID, conn.ws)
				return
			}
		case <-ticker.C:
			conn.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				r.Unregister(userID, conn.ws)
				return
			}
		}
	}
}
