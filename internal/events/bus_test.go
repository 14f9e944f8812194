package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startBus(t *testing.T) *Bus {
	t.Helper()
	bus := NewBus(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Run(ctx)
	return bus
}

func TestPublishReachesSubscribersOfType(t *testing.T) {
	bus := startBus(t)

	jobs, cancelJobs := bus.Subscribe(TypePrintJob, 4)
	defer cancelJobs()
	other, cancelOther := bus.Subscribe("other", 4)
	defer cancelOther()

	bus.Publish(PrintJob{JobID: "j1", Kind: "receipt", Role: "receipt", Transport: "network", Success: true, Bytes: 42}.Event())

	select {
	case ev := <-jobs:
		assert.Equal(t, TypePrintJob, ev.Type)
		assert.Equal(t, "j1", ev.Data["jobId"])
		assert.Equal(t, 42, ev.Data["bytes"])
		assert.NotContains(t, ev.Data, "error")
		assert.False(t, ev.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	select {
	case ev := <-other:
		t.Fatalf("unexpected event %v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := startBus(t)

	ch, cancel := bus.Subscribe(TypePrintJob, 1)
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	bus.Publish(Event{Type: TypePrintJob})
}

func TestPublishNeverBlocks(t *testing.T) {
	bus := NewBus(zap.NewNop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			bus.Publish(Event{Type: TypePrintJob})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked without a running bus")
	}
}

func TestPrintJobEventCarriesError(t *testing.T) {
	ev := PrintJob{JobID: "j2", Success: false, Error: "printer unreachable"}.Event()
	require.Equal(t, TypePrintJob, ev.Type)
	assert.Equal(t, false, ev.Data["success"])
	assert.Equal(t, "printer unreachable", ev.Data["error"])
}
