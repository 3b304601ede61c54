package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
)

func TestSchedulerRunsAfterDelayAndRepeats(t *testing.T) {
	var runs atomic.Int32
	s := New("test", func(context.Context) { runs.Add(1) }, 10*time.Millisecond, 5*time.Millisecond, log.New("test"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestSchedulerStopsDuringInitialDelay(t *testing.T) {
	var runs atomic.Int32
	s := New("test", func(context.Context) { runs.Add(1) }, time.Hour, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Start(ctx)
	assert.Zero(t, runs.Load())
}
