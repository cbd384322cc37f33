package bot

import (
	"context"
	"sync"
	"testing"
)

func TestSessionStore_LazyCreate(t *testing.T) {
	store := NewSessionStore()

	if store.Len() != 0 {
		t.Fatalf("new store should be empty, has %d", store.Len())
	}

	first := store.Get(42)
	second := store.Get(42)
	if first != second {
		t.Error("same chat id must yield the same session")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 session, got %d", store.Len())
	}

	other := store.Get(7)
	if other == first {
		t.Error("different chats must not share a session")
	}
}

func TestSessionStore_ConcurrentAccess(t *testing.T) {
	store := NewSessionStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			store.Get(id % 5).SetLastSymbol("AMD")
		}(int64(i))
	}
	wg.Wait()

	if store.Len() != 5 {
		t.Errorf("expected 5 sessions, got %d", store.Len())
	}
	if got := store.Get(0).LastSymbol(); got != "AMD" {
		t.Errorf("expected lastSymbol AMD, got %q", got)
	}
}

func TestSession_BeginGenerationCancelsPrevious(t *testing.T) {
	session := &Session{}

	first := session.BeginGeneration(context.Background())
	second := session.BeginGeneration(context.Background())

	if first.Err() == nil {
		t.Error("starting a new generation must cancel the previous one")
	}
	if second.Err() != nil {
		t.Error("the new generation context must still be live")
	}

	session.EndGeneration()
	if second.Err() == nil {
		t.Error("EndGeneration must cancel the active context")
	}

	// Safe when idle.
	session.EndGeneration()
}
