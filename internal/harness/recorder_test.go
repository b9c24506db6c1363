package harness

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_TicksAreMonotonic(t *testing.T) {
	rec := NewRecorder()

	rec.Listener("early", "physics")()
	rec.Listener("default", "ai")()
	rec.Listener("late", "render")()

	firings := rec.Firings()
	require.Len(t, firings, 3)
	for i, f := range firings {
		assert.Equal(t, int64(i+1), f.Tick)
	}
	assert.Equal(t, int64(3), rec.Current())
}

func TestRecorder_ListenerRecordsEachInvocation(t *testing.T) {
	rec := NewRecorder()
	l := rec.Listener("default", "step")

	l()
	l()

	firings := rec.Firings()
	require.Len(t, firings, 2)
	assert.Equal(t, "step", firings[0].Listener)
	assert.Equal(t, "step", firings[1].Listener)
	assert.NotEqual(t, firings[0].Tick, firings[1].Tick)
}

func TestRecorder_FiringsReturnsCopy(t *testing.T) {
	rec := NewRecorder()
	rec.Listener("default", "step")()

	first := rec.Firings()
	first[0].Listener = "mutated"

	assert.Equal(t, "step", rec.Firings()[0].Listener)
}

func TestRecorder_Reset(t *testing.T) {
	rec := NewRecorder()
	rec.Listener("default", "step")()
	require.NotEmpty(t, rec.Firings())

	rec.Reset()

	assert.Empty(t, rec.Firings())
	assert.Equal(t, int64(0), rec.Current())

	// After reset ticks start over at 1.
	rec.Listener("default", "step")()
	assert.Equal(t, int64(1), rec.Firings()[0].Tick)
}

func TestRecorder_ConcurrentListeners(t *testing.T) {
	rec := NewRecorder()
	const goroutines = 50

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.Listener("default", "step")()
		}()
	}
	wg.Wait()

	firings := rec.Firings()
	require.Len(t, firings, goroutines)

	// Ticks in the recorded order are strictly increasing and unique.
	for i := 1; i < len(firings); i++ {
		assert.Greater(t, firings[i].Tick, firings[i-1].Tick)
	}
}
