package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesEverySubscriber(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()
	require.Equal(t, 2, h.Count())

	h.Publish(Event{Type: StudioCreated, StudioID: "s1"})

	for _, sub := range []*Subscription{a, b} {
		select {
		case ev := <-sub.C:
			assert.Equal(t, StudioCreated, ev.Type)
			assert.Equal(t, "s1", ev.StudioID)
			assert.False(t, ev.At.IsZero())
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestHub_CloseSubscription(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe()
	sub.Close()

	assert.Equal(t, 0, h.Count())
	_, open := <-sub.C
	assert.False(t, open)

	// closing twice is harmless
	sub.Close()
}

func TestHub_DropsSlowSubscriber(t *testing.T) {
	h := NewHub()
	slow := h.Subscribe()

	for i := 0; i < subscriberBuffer+1; i++ {
		h.Publish(Event{Type: StudioUpdated, StudioID: "s1"})
	}

	assert.Equal(t, 0, h.Count())
	received := 0
	for range slow.C {
		received++
	}
	assert.Equal(t, subscriberBuffer, received)
}

func TestHub_Close(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe()
	h.Close()

	_, open := <-sub.C
	assert.False(t, open)

	late := h.Subscribe()
	_, open = <-late.C
	assert.False(t, open)
	assert.Equal(t, 0, h.Count())

	h.Publish(Event{Type: StudioDeleted})
}
