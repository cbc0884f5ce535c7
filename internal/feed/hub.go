// Package feed implements the live timeline: a fixed window over the most
// recent posts, pushed as full snapshots to every subscriber whenever a
// post is created, edited or deleted.
package feed

import (
	"context"
	"log/slog"
	"sync"

	"github.com/musicbuddy/backend/internal/metrics"
	"github.com/musicbuddy/backend/internal/models"
)

// WindowSize is how many of the most recent posts a snapshot carries.
const WindowSize = 25

// SnapshotSource loads the current timeline window, newest first.
type SnapshotSource interface {
	Snapshot(ctx context.Context) ([]models.Post, error)
}

// Hub fans full timeline snapshots out to subscribers. Snapshots are
// complete replacements, never diffs; subscribers discard their held list
// on every delivery. All registry mutation happens under mu, so a closed
// subscription can never be written to.
type Hub struct {
	source SnapshotSource
	logger *slog.Logger

	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// Subscription is one live feed of timeline snapshots. C is closed on
// Unsubscribe; nothing is delivered afterwards.
type Subscription struct {
	C <-chan []models.Post

	ch     chan []models.Post
	hub    *Hub
	closed bool // guarded by hub.mu
}

func NewHub(source SnapshotSource, logger *slog.Logger) *Hub {
	return &Hub{
		source: source,
		logger: logger,
		subs:   make(map[*Subscription]struct{}),
	}
}

// Snapshot returns the current window without subscribing.
func (h *Hub) Snapshot(ctx context.Context) ([]models.Post, error) {
	return h.source.Snapshot(ctx)
}

// Subscribe registers a new subscriber and queues the current snapshot as
// its first delivery.
func (h *Hub) Subscribe(ctx context.Context) (*Subscription, error) {
	snap, err := h.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	sub := &Subscription{
		ch:  make(chan []models.Post, 8),
		hub: h,
	}
	sub.C = sub.ch
	sub.ch <- snap

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	metrics.FeedSubscribers.Inc()
	return sub, nil
}

// Unsubscribe removes the subscription and closes C. Safe to call more
// than once and concurrently with Notify.
func (s *Subscription) Unsubscribe() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.hub.closeLocked(s)
}

func (h *Hub) closeLocked(s *Subscription) {
	if s.closed {
		return
	}
	s.closed = true
	delete(h.subs, s)
	close(s.ch)
	metrics.FeedSubscribers.Dec()
}

// Notify reloads the window and pushes it to every subscriber. A
// subscriber whose buffer is full is dropped rather than blocking the
// rest of the broadcast.
func (h *Hub) Notify(ctx context.Context) {
	snap, err := h.source.Snapshot(ctx)
	if err != nil {
		h.logger.Error("feed: loading snapshot for broadcast", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.ch <- snap:
			metrics.SnapshotsPushed.Inc()
		default:
			h.logger.Warn("feed: dropping slow subscriber")
			h.closeLocked(sub)
		}
	}
}
