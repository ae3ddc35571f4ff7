package live

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// EventVisit is pushed to a project's subscribers when a beacon is recorded.
const EventVisit = "visit"

// Event is one message delivered to dashboard subscribers.
type Event struct {
	Type      string `json:"type"`
	ProjectID int64  `json:"projectId"`
	Data      any    `json:"data"`
}

// Hub fans newly recorded visits out to websocket subscribers, scoped per
// project. Delivery is best-effort, at-most-once: slow subscribers are
// dropped and there is no backlog for late joiners.
type Hub struct {
	mu   sync.RWMutex
	subs map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int64]map[*Client]struct{})}
}

// Subscribe registers a connection for every given project and starts its
// read/write pumps. The caller must have authenticated the connection.
func (h *Hub) Subscribe(c *Client, projectIDs []int64) {
	c.hub = h
	c.projects = projectIDs

	h.mu.Lock()
	for _, id := range projectIDs {
		if h.subs[id] == nil {
			h.subs[id] = make(map[*Client]struct{})
		}
		h.subs[id][c] = struct{}{}
	}
	h.mu.Unlock()

	log.Info().Int("projects", len(projectIDs)).Msg("live client subscribed")
	c.start()
}

func (h *Hub) unsubscribe(c *Client) {
	h.mu.Lock()
	var removed bool
	for _, id := range c.projects {
		if set, ok := h.subs[id]; ok {
			if _, member := set[c]; member {
				delete(set, c)
				removed = true
			}
			if len(set) == 0 {
				delete(h.subs, id)
			}
		}
	}
	h.mu.Unlock()

	if removed {
		close(c.send)
		log.Info().Msg("live client disconnected")
	}
}

// Publish delivers an event to every connection currently subscribed to
// the project. Sends never block; a subscriber with a full queue misses
// the event.
func (h *Hub) Publish(projectID int64, eventType string, data any) {
	event := Event{Type: eventType, ProjectID: projectID, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.subs[projectID] {
		select {
		case c.send <- event:
		default:
			log.Warn().Int64("project_id", projectID).Msg("live subscriber queue full, dropping event")
		}
	}
}

// SubscriberCount returns the number of connections watching a project.
func (h *Hub) SubscriberCount(projectID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[projectID])
}

// Close disconnects every subscriber. Used during shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make(map[*Client]struct{})
	for _, set := range h.subs {
		for c := range set {
			clients[c] = struct{}{}
		}
	}
	h.subs = make(map[int64]map[*Client]struct{})
	h.mu.Unlock()

	for c := range clients {
		close(c.send)
	}
}
