package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"fittrack/internal/infrastructure/config"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestManagerLimitsConcurrency(t *testing.T) {
	m := NewManager(config.QueueConfig{Workers: 1, MaxSize: 1})
	defer m.Close()

	release := make(chan struct{})
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- m.Run(context.Background(), func(ctx context.Context) error {
			<-release
			return nil
		})
	}()
	waitFor(t, func() bool { return m.GetQueueStatus().Active == 1 })

	secondDone := make(chan error, 1)
	go func() {
		secondDone <- m.Run(context.Background(), func(ctx context.Context) error { return nil })
	}()
	waitFor(t, func() bool { return m.GetQueueStatus().QueueLength == 1 })

	if err := m.Run(context.Background(), func(ctx context.Context) error { return nil }); !errors.Is(err, ErrQueueFull) {
		t.Errorf("third run err = %v, want ErrQueueFull", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Errorf("first run: %v", err)
	}
	if err := <-secondDone; err != nil {
		t.Errorf("second run: %v", err)
	}
	if got := m.GetQueueStatus().ProcessedCount; got != 2 {
		t.Errorf("processed = %d, want 2", got)
	}
}

func TestManagerHonoursContextWhileWaiting(t *testing.T) {
	m := NewManager(config.QueueConfig{Workers: 1, MaxSize: 5})
	defer m.Close()

	release := make(chan struct{})
	defer close(release)
	go m.Run(context.Background(), func(ctx context.Context) error {
		<-release
		return nil
	})
	waitFor(t, func() bool { return m.GetQueueStatus().Active == 1 })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	called := false
	err := m.Run(ctx, func(ctx context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) || called {
		t.Errorf("err = %v called = %v", err, called)
	}
}

func TestManagerPropagatesError(t *testing.T) {
	m := NewManager(config.QueueConfig{Workers: 2, MaxSize: 2})
	defer m.Close()

	boom := errors.New("boom")
	if err := m.Run(context.Background(), func(ctx context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if st := m.GetQueueStatus(); st.Active != 0 || st.ProcessedCount != 1 {
		t.Errorf("status after run = %+v", st)
	}
}
