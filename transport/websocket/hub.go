package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/gridtoe/internal/entity"
)

// Hub - routes match events to the connections subscribed to that match.
type Hub struct {
	logger *slog.Logger

	mu          sync.Mutex
	subscribers map[string]map[*client]struct{}
	matches     map[*client]string
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:      logger.With("component", "ws_hub"),
		subscribers: make(map[string]map[*client]struct{}),
		matches:     make(map[*client]string),
	}
}

// subscribe - a connection follows one match at a time.
func (that *Hub) subscribe(matchID string, c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.removeLocked(c)

	if that.subscribers[matchID] == nil {
		that.subscribers[matchID] = make(map[*client]struct{})
	}
	that.subscribers[matchID][c] = struct{}{}
	that.matches[c] = matchID
}

// unregister - forgets the connection and closes its send queue.
func (that *Hub) unregister(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.removeLocked(c)
	close(c.send)
}

func (that *Hub) removeLocked(c *client) {
	matchID, ok := that.matches[c]
	if !ok {
		return
	}

	delete(that.matches, c)
	delete(that.subscribers[matchID], c)
	if len(that.subscribers[matchID]) == 0 {
		delete(that.subscribers, matchID)
	}
}

// Notify - pushes each event to every subscriber of the match, in order.
func (that *Hub) Notify(_ context.Context, matchID string, events []entity.Event) {
	log := that.logger.With("method", "Notify", "matchID", matchID)

	messages := make([][]byte, 0, len(events))
	for i := range events {
		msg, err := encodeMessage(actionEvent, Payload{MatchID: matchID, Event: &events[i]})
		if err != nil {
			log.Error("failed to encode event", "error", err)
			return
		}
		messages = append(messages, msg)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	for c := range that.subscribers[matchID] {
		for _, msg := range messages {
			if !c.enqueue(msg) {
				log.Warn("subscriber is lagging, event dropped")
				break
			}
		}
	}
}

func (that *Hub) subscriberCount(matchID string) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.subscribers[matchID])
}
