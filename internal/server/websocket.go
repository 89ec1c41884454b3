package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/guardai/internal/core/events/bus"
	"github.com/zeusync/guardai/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Message is the JSON frame sent to event stream clients.
type Message struct {
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

type client struct {
	conn  *websocket.Conn
	send  chan []byte
	types map[string]bool
	once  sync.Once
}

func (c *client) wants(eventType string) bool {
	return len(c.types) == 0 || c.types[eventType]
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// EventStream fans bus events out to websocket clients. A client may narrow
// the stream with ?types=a,b. Clients that fall behind by more than the send
// buffer are dropped.
type EventStream struct {
	mu           sync.Mutex
	clients      map[*client]struct{}
	sub          bus.Subscription
	sendBuffer   int
	writeTimeout time.Duration
	logger       log.Log
}

// NewEventStream subscribes to every event on b.
func NewEventStream(b bus.EventBus, cfg Config, logger log.Log) (*EventStream, error) {
	s := &EventStream{
		clients:      make(map[*client]struct{}),
		sendBuffer:   cfg.SendBuffer,
		writeTimeout: cfg.WriteTimeout,
		logger:       logger.Named("events"),
	}
	sub, err := b.SubscribeAll(s.broadcast)
	if err != nil {
		return nil, err
	}
	s.sub = sub
	return s, nil
}

func (s *EventStream) broadcast(event bus.Event) error {
	b, err := json.Marshal(Message{
		Type:      event.Type(),
		Source:    event.Source(),
		Timestamp: event.Timestamp(),
		Data:      event.Data(),
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		if !c.wants(event.Type()) {
			continue
		}
		select {
		case c.send <- b:
		default:
			s.logger.Warn("dropping slow client", log.String("remote_addr", c.conn.RemoteAddr().String()))
			delete(s.clients, c)
			c.close()
		}
	}
	return nil
}

// Clients is the number of connected clients.
func (s *EventStream) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *EventStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, s.sendBuffer)}
	if q := r.URL.Query().Get("types"); q != "" {
		c.types = make(map[string]bool)
		for _, t := range strings.Split(q, ",") {
			c.types[strings.TrimSpace(t)] = true
		}
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Debug("client connected", log.String("remote_addr", conn.RemoteAddr().String()))

	go s.readLoop(c)
	s.writeLoop(c)
}

// readLoop only watches for the client going away.
func (s *EventStream) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			s.remove(c)
			return
		}
	}
}

func (s *EventStream) writeLoop(c *client) {
	defer func() {
		_ = c.conn.Close()
		s.logger.Debug("client disconnected", log.String("remote_addr", c.conn.RemoteAddr().String()))
	}()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			s.remove(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(s.writeTimeout))
}

func (s *EventStream) remove(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	c.close()
}

// Close unsubscribes from the bus and disconnects every client.
func (s *EventStream) Close() error {
	err := s.sub.Cancel()
	s.mu.Lock()
	for c := range s.clients {
		delete(s.clients, c)
		c.close()
	}
	s.mu.Unlock()
	return err
}
