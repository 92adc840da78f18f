package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishToSubscriber(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var received []*Event
	bus.Subscribe(RaceFinished, func(event *Event) {
		received = append(received, event)
	})

	manager := NewManager(bus, zerolog.Nop())
	manager.Publish("race", &RaceFinishedData{
		WinnerID:   "p1",
		WinnerName: "Alice",
		Seq:        42,
	})

	require.Len(t, received, 1)
	assert.Equal(t, RaceFinished, received[0].Type)
	assert.Equal(t, "race", received[0].Module)
	assert.False(t, received[0].Timestamp.IsZero())

	data, ok := received[0].Data.(*RaceFinishedData)
	require.True(t, ok)
	assert.Equal(t, "Alice", data.WinnerName)
	assert.Equal(t, int64(42), data.Seq)
}

func TestBus_NoSubscribersIsNotAnError(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	// Publishing with no subscribers must not panic; a race with no attached
	// UI clients still runs to completion.
	assert.NotPanics(t, func() {
		bus.Publish(&Event{Type: RaceFrame, Module: "race"})
	})
}

func TestBus_TypeFiltering(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	frames := 0
	finishes := 0
	bus.Subscribe(RaceFrame, func(*Event) { frames++ })
	bus.Subscribe(RaceFinished, func(*Event) { finishes++ })

	bus.Publish(&Event{Type: RaceFrame})
	bus.Publish(&Event{Type: RaceFrame})
	bus.Publish(&Event{Type: RaceFinished})

	assert.Equal(t, 2, frames)
	assert.Equal(t, 1, finishes)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	kept := 0
	dropped := 0
	bus.Subscribe(RaceFrame, func(*Event) { kept++ })
	unsubscribe := bus.Subscribe(RaceFrame, func(*Event) { dropped++ })

	bus.Publish(&Event{Type: RaceFrame})
	unsubscribe()
	unsubscribe() // second call is a no-op
	bus.Publish(&Event{Type: RaceFrame})

	assert.Equal(t, 2, kept)
	assert.Equal(t, 1, dropped)
}

func TestBus_MultipleSubscribersInOrder(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var order []int
	bus.Subscribe(SettingsChanged, func(*Event) { order = append(order, 1) })
	bus.Subscribe(SettingsChanged, func(*Event) { order = append(order, 2) })

	bus.Publish(&Event{Type: SettingsChanged})

	assert.Equal(t, []int{1, 2}, order)
}
