package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan WarningIssuedEvent, 1)

	mainBus.Subscribe(EventTypeWarningIssued, func(ctx context.Context, event Event) {
		if e, ok := event.(WarningIssuedEvent); ok {
			eventReceived <- e
		} else {
			t.Errorf("Expected WarningIssuedEvent, got %T", event)
		}
	})

	testEvent := WarningIssuedEvent{
		WarningID:   7,
		GuildID:     789,
		UserID:      123456,
		ModeratorID: 42,
		Reason:      "spam",
		Count:       2,
	}

	transactionalBus.Publish(testEvent)

	select {
	case <-eventReceived:
		t.Fatal("Event delivered before flush")
	case <-time.After(50 * time.Millisecond):
	}

	transactionalBus.Flush(context.Background())

	select {
	case received := <-eventReceived:
		assert.Equal(t, testEvent, received)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	var mu sync.Mutex
	var received []int64
	var wg sync.WaitGroup
	wg.Add(3)

	mainBus.Subscribe(EventTypeGiveawayEnded, func(ctx context.Context, event Event) {
		defer wg.Done()
		mu.Lock()
		defer mu.Unlock()
		received = append(received, event.(GiveawayEndedEvent).GiveawayID)
	})

	for i := int64(1); i <= 3; i++ {
		transactionalBus.Publish(GiveawayEndedEvent{GiveawayID: i, Winners: []int64{i * 10}})
	}
	transactionalBus.Flush(context.Background())

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Not all events were received")
	}

	assert.ElementsMatch(t, []int64{1, 2, 3}, received)
}

func TestTransactionalBus_DiscardDropsEvents(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	called := make(chan struct{}, 1)
	mainBus.Subscribe(EventTypeWarningsCleared, func(ctx context.Context, event Event) {
		called <- struct{}{}
	})

	transactionalBus.Publish(WarningsClearedEvent{GuildID: 1, UserID: 2, Removed: 3})
	transactionalBus.Discard()
	transactionalBus.Flush(context.Background())

	select {
	case <-called:
		t.Fatal("Discarded event was delivered")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewBus()

	delivered := make(chan struct{}, 1)
	bus.Subscribe(EventTypeWarningIssued, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeWarningIssued, func(ctx context.Context, event Event) {
		delivered <- struct{}{}
	})

	require.NotPanics(t, func() {
		bus.Emit(context.Background(), WarningIssuedEvent{GuildID: 1})
	})

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("Second handler was not called")
	}
}

func TestFlush_ContextNotCancelledWithTransaction(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	errs := make(chan error, 1)
	mainBus.Subscribe(EventTypeWarningIssued, func(ctx context.Context, event Event) {
		time.Sleep(20 * time.Millisecond)
		errs <- ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	transactionalBus.Publish(WarningIssuedEvent{})
	transactionalBus.Flush(ctx)
	cancel()

	select {
	case err := <-errs:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Handler was not called")
	}
}
