package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/musicbuddy/backend/internal/models"
)

// fakeSource serves a mutable in-memory timeline window.
type fakeSource struct {
	mu    sync.Mutex
	posts []models.Post
	err   error
}

func (f *fakeSource) Snapshot(ctx context.Context) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Post, len(f.posts))
	copy(out, f.posts)
	return out, nil
}

func (f *fakeSource) set(posts []models.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = posts
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makePosts(n int) []models.Post {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	posts := make([]models.Post, n)
	for i := range posts {
		posts[i] = models.Post{
			ID:        n - i,
			Body:      fmt.Sprintf("post %d", n-i),
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return posts
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	source := &fakeSource{posts: makePosts(3)}
	hub := NewHub(source, testLogger())

	sub, err := hub.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	select {
	case snap := <-sub.C:
		if len(snap) != 3 {
			t.Fatalf("initial snapshot has %d posts, want 3", len(snap))
		}
		if snap[0].ID != 3 {
			t.Fatalf("snapshot not newest-first: first ID = %d", snap[0].ID)
		}
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot delivered")
	}
}

func TestNotifyPushesFullReplacement(t *testing.T) {
	source := &fakeSource{posts: makePosts(2)}
	hub := NewHub(source, testLogger())

	sub, err := hub.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Unsubscribe()
	<-sub.C // drain initial snapshot

	source.set(makePosts(5))
	hub.Notify(context.Background())

	select {
	case snap := <-sub.C:
		if len(snap) != 5 {
			t.Fatalf("pushed snapshot has %d posts, want 5", len(snap))
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot pushed after Notify")
	}
}

func TestNoDeliveryAfterUnsubscribe(t *testing.T) {
	source := &fakeSource{posts: makePosts(1)}
	hub := NewHub(source, testLogger())

	sub, err := hub.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	<-sub.C
	sub.Unsubscribe()

	hub.Notify(context.Background())

	if _, ok := <-sub.C; ok {
		t.Fatal("received snapshot after Unsubscribe")
	}
}

func TestUnsubscribeIdempotent(t *testing.T) {
	source := &fakeSource{posts: nil}
	hub := NewHub(source, testLogger())

	sub, err := hub.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	sub.Unsubscribe()
	sub.Unsubscribe() // must not panic on double close
}

func TestSlowSubscriberDropped(t *testing.T) {
	source := &fakeSource{posts: makePosts(1)}
	hub := NewHub(source, testLogger())

	sub, err := hub.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	// Never read: initial snapshot plus notifies fill the buffer.
	for range 16 {
		hub.Notify(context.Background())
	}

	// The hub must have closed the subscription rather than block.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-sub.C:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("slow subscriber was never dropped")
		}
	}
}

func TestNotifyConcurrentWithUnsubscribe(t *testing.T) {
	source := &fakeSource{posts: makePosts(2)}
	hub := NewHub(source, testLogger())

	var wg sync.WaitGroup
	for range 8 {
		sub, err := hub.Subscribe(context.Background())
		if err != nil {
			t.Fatalf("Subscribe: %v", err)
		}
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range sub.C {
			}
		}()
		go func() {
			defer wg.Done()
			sub.Unsubscribe()
		}()
	}
	for range 8 {
		hub.Notify(context.Background())
	}
	wg.Wait()
}
