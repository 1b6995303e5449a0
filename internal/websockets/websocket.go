package websockets

import (
	"time"

	"filadex/config"
	"filadex/internal/database"
	"filadex/internal/events"
	"filadex/internal/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	MESSAGE_TYPE_PING  = "ping"
	MESSAGE_TYPE_PONG  = "pong"
	MESSAGE_TYPE_EVENT = "event"
	MESSAGE_TYPE_ERROR = "error"
	PING_INTERVAL      = 30 * time.Second
	PONG_TIMEOUT       = 60 * time.Second
	WRITE_TIMEOUT      = 10 * time.Second
	MAX_MESSAGE_SIZE   = 64 * 1024
	SEND_CHANNEL_SIZE  = 64
)

// Message is the envelope pushed to connected clients. Store mutations arrive
// as type "event" with the event payload in Data.
type Message struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Channel   string         `json:"channel,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type Client struct {
	ID         string
	Connection *websocket.Conn
	Manager    *Manager
	send       chan Message
}

type Manager struct {
	hub      *Hub
	db       database.DB
	config   config.Config
	log      logger.Logger
	eventBus *events.EventBus
}

func New(
	db database.DB,
	eventBus *events.EventBus,
	config config.Config,
) (*Manager, error) {
	log := logger.New("websockets")

	manager := &Manager{
		hub: &Hub{
			broadcast:  make(chan Message, SEND_CHANNEL_SIZE),
			register:   make(chan *Client),
			unregister: make(chan *Client),
			clients:    make(map[string]*Client),
		},
		db:       db,
		config:   config,
		log:      log,
		eventBus: eventBus,
	}

	log.Function("New").Info("Starting websocket hub")
	go manager.hub.run(manager)

	if err := manager.subscribeToStoreEvents(); err != nil {
		return nil, log.Err("failed to subscribe to store events", err)
	}

	return manager, nil
}

// subscribeToStoreEvents forwards every store mutation to connected clients,
// so list views can refresh without polling.
func (m *Manager) subscribeToStoreEvents() error {
	if m.eventBus == nil {
		return nil
	}

	return m.eventBus.Subscribe(events.STORE_CHANNEL, func(event events.Event) error {
		m.BroadcastMessage(Message{
			ID:      event.ID,
			Type:    MESSAGE_TYPE_EVENT,
			Channel: event.Channel.String(),
			Data: map[string]any{
				"type": string(event.Type),
				"data": event.Data,
			},
			Timestamp: event.Timestamp,
		})
		return nil
	})
}

func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")
	clientID := uuid.New().String()

	client := &Client{
		ID:         clientID,
		Connection: c,
		Manager:    m,
		send:       make(chan Message, SEND_CHANNEL_SIZE),
	}

	log.Info("Client connected", "clientID", clientID)
	m.hub.register <- client
	defer func() {
		m.hub.unregister <- client
		if err := c.Close(); err != nil {
			log.Er("failed to close connection", err)
		}
		log.Info("Client disconnected", "clientID", clientID)
	}()

	go client.readPump()
	client.writePump()
}

func (m *Manager) BroadcastMessage(message Message) {
	log := m.log.Function("BroadcastMessage")

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}

	select {
	case m.hub.broadcast <- message:
	default:
		log.Warn("Broadcast channel is full, dropping message", "messageID", message.ID)
	}
}

func (c *Client) readPump() {
	log := c.Manager.log.Function("readPump")
	defer func() {
		c.Manager.hub.unregister <- c
		_ = c.Connection.Close()
	}()

	c.Connection.SetReadLimit(MAX_MESSAGE_SIZE)
	if err := c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT)); err != nil {
		log.Er("failed to set read deadline", err, "clientID", c.ID)
	}
	c.Connection.SetPongHandler(func(string) error {
		if err := c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT)); err != nil {
			log.Er("failed to set read deadline in pong handler", err, "clientID", c.ID)
		}
		return nil
	})

	for {
		var message Message
		if err := c.Connection.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				log.Er("unexpected close error", err, "clientID", c.ID)
			}
			break
		}

		// Inbound traffic is ping-only; the socket is a push channel.
		if message.Type == MESSAGE_TYPE_PING {
			c.sendMessage(Message{
				ID:        uuid.New().String(),
				Type:      MESSAGE_TYPE_PONG,
				Timestamp: time.Now(),
			})
		}
	}
}

func (c *Client) writePump() {
	log := c.Manager.log.Function("writePump")

	ticker := time.NewTicker(PING_INTERVAL)
	defer func() {
		ticker.Stop()
		_ = c.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline", err, "clientID", c.ID)
			}
			if !ok {
				_ = c.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Connection.WriteJSON(message); err != nil {
				log.Er("failed to write message", err, "clientID", c.ID)
				return
			}

		case <-ticker.C:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline", err, "clientID", c.ID)
			}
			if err := c.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendMessage(message Message) {
	select {
	case c.send <- message:
	default:
		c.Manager.log.Function("sendMessage").
			Warn("Send channel full, dropping message", "clientID", c.ID)
	}
}
