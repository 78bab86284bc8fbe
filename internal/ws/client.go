package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"dogs_webapp/internal/domain"
	"dogs_webapp/internal/game"
	"dogs_webapp/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 64
)

type Client struct {
	TgID int64
	Conn *websocket.Conn
	Send chan []byte

	hub *Hub
	log *slog.Logger
}

func NewClient(tgID int64, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		TgID: tgID,
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
		hub:  hub,
		log:  logger.With("component", "ws_client", "tg_id", tgID),
	}
}

// Run registers the client, starts the writer and reads until the
// connection drops. initial, when not nil, is queued before any push.
func (c *Client) Run(ctx context.Context, initial *DogsMessage) {
	if initial != nil {
		c.sendJSON(initial)
	}
	c.hub.register(c)
	go c.writePump()

	c.readPump(ctx)
	c.hub.unregister(c)
}

//read
func (c *Client) readPump(ctx context.Context) {
	defer c.Conn.Close()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("read error", "error", err)
			}
			return
		}
		c.handle(ctx, raw)
	}
}

//write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Warn("write error", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handle runs one client action. Successful changes reach this connection
// through the hub push, so only reads and failures are answered directly.
func (c *Client) handle(ctx context.Context, raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendJSON(ErrorMessage{Error: "invalid message"})
		return
	}
	Messages.WithLabelValues(actionLabel(msg.Action)).Inc()

	switch msg.Action {
	case ActionGetDogs:
		view, err := c.hub.svc.ListDogs(ctx, c.TgID)
		if err != nil {
			c.sendError(err)
			return
		}
		c.sendJSON(dogsMessage(view))

	case ActionCreateDog:
		if _, err := c.hub.svc.PurchaseDog(ctx, c.TgID); err != nil {
			c.sendError(err)
		}

	case ActionUpdateDogs:
		if _, err := c.hub.svc.BreedDogs(ctx, c.TgID, msg.DogPairs); err != nil {
			c.sendError(err)
		}

	default:
		c.sendJSON(ErrorMessage{Error: "unknown action"})
	}
}

func (c *Client) sendError(err error) {
	out := ErrorMessage{Error: domain.PublicMessage(err)}

	var be *game.BreedError
	if errors.As(err, &be) {
		pair := be.Pair
		out.FailedPair = &pair
		out.Committed = be.Committed
	}
	if !errors.Is(err, domain.ErrPlayerNotFound) && domain.RuleViolation(err) == nil {
		c.log.Error("action failed", "error", err)
	}
	c.sendJSON(out)
}

func (c *Client) sendJSON(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		c.log.Error("marshal reply", "error", err)
		return
	}
	if !c.enqueue(msg) {
		c.log.Warn("send queue full, dropping reply")
	}
}

// enqueue never blocks; a full queue means the peer stopped reading.
func (c *Client) enqueue(msg []byte) bool {
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

func actionLabel(action string) string {
	switch action {
	case ActionGetDogs, ActionCreateDog, ActionUpdateDogs:
		return action
	}
	return "unknown"
}
