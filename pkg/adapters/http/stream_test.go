package http

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamManager_SubscribeBroadcast(t *testing.T) {
	sm := NewStreamManager(slog.New(slog.NewTextHandler(io.Discard, nil)))

	ch, cancel := sm.Subscribe("s")
	assert.Equal(t, 1, sm.Subscribers("s"))

	sm.Broadcast("s", "hello")
	sm.Broadcast("other", "ignored")
	assert.Equal(t, "hello", <-ch)

	// A full buffer drops instead of blocking.
	for i := 0; i < 20; i++ {
		sm.Broadcast("s", "x")
	}
	assert.Len(t, ch, cap(ch))

	cancel()
	assert.Equal(t, 0, sm.Subscribers("s"))
}

func TestWatchFilter(t *testing.T) {
	display := `{"session_id":"s","display":"1"}`
	history := `{"session_id":"s","history":{"appended":["1 + 1 = 2"]}}`
	cleared := `{"session_id":"s","error":""}`

	var all watchFilter
	assert.True(t, all.keep(display))

	f := parseWatch(" history , error ")
	assert.False(t, f.keep(display))
	assert.True(t, f.keep(history))
	assert.True(t, f.keep(cleared))
}
