// Package live pushes catalog changes to connected subscribers grouped by name.
package live

import (
	"context"
	"sync"

	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultClientBuffer = 64

type Message struct {
	Group   string
	Method  string
	Payload map[string]any
}

type Client struct {
	ID string
	ch chan Message
}

// Messages is closed when the client leaves its group.
func (c *Client) Messages() <-chan Message { return c.ch }

// Hub fans broadcasts out to group members. Broadcast never blocks: a client
// whose buffer is full misses the message.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*Client]struct{}
	buffer int
	logger logger.ZapLogger
}

func NewHub(buffer int, log logger.ZapLogger) *Hub {
	if buffer <= 0 {
		buffer = DefaultClientBuffer
	}
	return &Hub{
		groups: make(map[string]map[*Client]struct{}),
		buffer: buffer,
		logger: log,
	}
}

func (h *Hub) Join(group string) *Client {
	c := &Client{ID: uuid.NewString(), ch: make(chan Message, h.buffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[group]
	if !ok {
		members = make(map[*Client]struct{})
		h.groups[group] = members
	}
	members[c] = struct{}{}
	return c
}

func (h *Hub) Leave(group string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[group]
	if !ok {
		return
	}
	if _, ok := members[c]; !ok {
		return
	}
	delete(members, c)
	close(c.ch)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

func (h *Hub) Broadcast(ctx context.Context, group, method string, payload map[string]any) error {
	msg := Message{Group: group, Method: method, Payload: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.groups[group] {
		select {
		case c.ch <- msg:
		default:
			h.logger.Warn("live client is not keeping up, dropping message",
				zap.String("group", group), zap.String("client_id", c.ID), zap.String("method", method))
		}
	}
	return ctx.Err()
}

func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for group, members := range h.groups {
		for c := range members {
			close(c.ch)
		}
		delete(h.groups, group)
	}
}
