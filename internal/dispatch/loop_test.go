package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()
	l := New(8, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	t.Cleanup(cancel)
	return l, cancel
}

func TestDo_RunsSerially(t *testing.T) {
	l, _ := startLoop(t)

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Do(context.Background(), func() { counter++ }); err != nil {
				t.Errorf("Do: %v", err)
			}
		}()
	}
	wg.Wait()

	var got int
	if err := l.Do(context.Background(), func() { got = counter }); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got != 50 {
		t.Fatalf("counter=%d want 50", got)
	}
}

func TestDo_PanicBecomesError(t *testing.T) {
	l, _ := startLoop(t)
	err := l.Do(context.Background(), func() { panic("boom") })
	if err == nil {
		t.Fatalf("expected error from panicking task")
	}
	// the loop survives
	if err := l.Do(context.Background(), func() {}); err != nil {
		t.Fatalf("loop dead after panic: %v", err)
	}
}

func TestDo_AfterStop(t *testing.T) {
	l := New(1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	cancel()
	<-l.Done()

	err := l.Do(context.Background(), func() {})
	if !errors.Is(err, ErrStopped) {
		t.Fatalf("err=%v want ErrStopped", err)
	}
	if l.Post(func() {}) {
		t.Fatalf("Post accepted after stop")
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	l := New(1, nil) // never run
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	l.tasks <- task{fn: func() {}} // fill the queue
	if err := l.Do(ctx, func() {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v want deadline exceeded", err)
	}
}

func TestPost_DropsWhenFull(t *testing.T) {
	l := New(1, nil) // never run
	if !l.Post(func() {}) {
		t.Fatalf("first post should queue")
	}
	if l.Post(func() {}) {
		t.Fatalf("second post should drop on a full queue")
	}
}

func TestPost_Executes(t *testing.T) {
	l, _ := startLoop(t)
	ran := make(chan struct{})
	if !l.Post(func() { close(ran) }) {
		t.Fatalf("post refused")
	}
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatalf("posted task never ran")
	}
}
