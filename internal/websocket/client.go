package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"room-chat/internal/config"
	"room-chat/internal/models"
	"room-chat/pkg/logger"

	"github.com/gorilla/websocket"
)

// Client is the transport half of one connection: it feeds inbound frames to
// the hub and drains the hub's outbound frames to the socket.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string
	cfg  config.WebSocketConfig

	closeOnce sync.Once
	done      chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, id string, cfg config.WebSocketConfig) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, cfg.SendBuffer),
		id:   id,
		cfg:  cfg,
		done: make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Deliver implements Sink. Frames sent after Close are discarded.
func (c *Client) Deliver(frame []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Close implements Sink. It is safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *Client) ReadPump() {
	defer func() {
		if err := c.hub.Disconnect(c.id); err != nil && !errors.Is(err, ErrHubClosed) {
			logger.Error("Error disconnecting %s: %v", c.id, err)
		}
		c.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logger.Error("WebSocket error from %s: %v", c.id, err)
			}
			break
		}

		var req models.Request
		if err := json.Unmarshal(message, &req); err != nil {
			logger.Debug("Invalid frame from %s: %v", c.id, err)
			c.reply(0, models.Fail("Invalid payload"))
			continue
		}

		ack, err := c.hub.Handle(c.id, req)
		if err != nil {
			logger.Debug("Dropping request from %s: %v", c.id, err)
			break
		}
		if req.ID != 0 {
			c.reply(req.ID, ack)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Error("Write error for %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) reply(id int64, ack models.Ack) {
	frame, err := EncodeAck(id, ack)
	if err != nil {
		logger.Error("Error marshaling ack for %s: %v", c.id, err)
		return
	}
	if !c.Deliver(frame) {
		logger.Warn("Send buffer full for connection %s; closing it", c.id)
		c.Close()
	}
}
