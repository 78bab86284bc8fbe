package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"dogs_webapp/internal/logger"
	"dogs_webapp/internal/service"
)

// DogsService is the part of the game service the socket needs.
type DogsService interface {
	ListDogs(ctx context.Context, tgID int64) (*service.DogsView, error)
	PurchaseDog(ctx context.Context, tgID int64) (*service.PurchaseResult, error)
	BreedDogs(ctx context.Context, tgID int64, pairs [][]int64) (*service.BreedResult, error)
}

// Hub tracks open connections per Telegram id and fans field changes out to
// all of them. Subscribe it to the game service so changes made over HTTP
// reach the sockets too.
type Hub struct {
	svc     DogsService
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
	log     *slog.Logger
}

func NewHub(svc DogsService) *Hub {
	return &Hub{
		svc:     svc,
		clients: make(map[int64]map[*Client]struct{}),
		log:     logger.With("component", "ws_hub"),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.TgID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.TgID] = set
	}
	set[c] = struct{}{}
	Connections.Inc()
	h.log.Debug("client connected", "tg_id", c.TgID, "connections", len(set))
}

// unregister removes c and closes its send queue. Hub senders hold the lock,
// so nothing can write to the queue afterwards.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.TgID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.TgID)
	}
	close(c.Send)
	Connections.Dec()
	h.log.Debug("client disconnected", "tg_id", c.TgID)
}

// DogsChanged pushes the new field to every connection of the player.
func (h *Hub) DogsChanged(tgID int64, view *service.DogsView) {
	msg, err := json.Marshal(dogsMessage(view))
	if err != nil {
		h.log.Error("marshal dogs push", "tg_id", tgID, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[tgID] {
		if !c.enqueue(msg) {
			h.log.Warn("dropping push for slow client", "tg_id", tgID)
		}
	}
}

// ConnectionCount returns the number of open sockets of the player.
func (h *Hub) ConnectionCount(tgID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[tgID])
}

// Shutdown closes every open connection. Their read loops then unregister.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, set := range h.clients {
		for c := range set {
			_ = c.Conn.Close()
		}
	}
}

func dogsMessage(view *service.DogsView) DogsMessage {
	return DogsMessage{Action: ActionGetDogs, Dogs: view.Dogs, VirtualDog: view.VirtualDog}
}
