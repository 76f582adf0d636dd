package eventloop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestQueue_FIFO(t *testing.T) {
	q := New()

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		q.Post(func() { got = append(got, i) })
	}

	if q.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", q.Len())
	}
	if n := q.RunPending(); n != 5 {
		t.Fatalf("RunPending() = %d, want 5", n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order = %v, want ascending", got)
		}
	}
	if q.Len() != 0 {
		t.Error("queue should be empty")
	}
}

func TestQueue_PostDuringRunIsDeferred(t *testing.T) {
	q := New()

	ranInner := false
	q.Post(func() {
		q.Post(func() { ranInner = true })
	})

	if n := q.RunPending(); n != 1 {
		t.Fatalf("RunPending() = %d, want 1", n)
	}
	if ranInner {
		t.Fatal("task posted during RunPending must wait for the next call")
	}
	q.RunPending()
	if !ranInner {
		t.Error("inner task should run on the second call")
	}
}

func TestQueue_ConcurrentPosters(t *testing.T) {
	q := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const producers = 8
	const perProducer = 200

	var mu sync.Mutex
	last := make(map[int]int)
	inOrder := true
	count := 0
	done := make(chan struct{})

	go func() {
		_ = q.Run(ctx)
		close(done)
	}()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 1; i <= perProducer; i++ {
				i := i
				q.Post(func() {
					mu.Lock()
					if last[p] != i-1 {
						inOrder = false
					}
					last[p] = i
					count++
					mu.Unlock()
				})
			}
		}(p)
	}
	wg.Wait()

	deadline := time.Now().Add(5 * time.Second)
	for {
		mu.Lock()
		c := count
		mu.Unlock()
		if c == producers*perProducer {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("only %d of %d tasks ran", c, producers*perProducer)
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	<-done

	if !inOrder {
		t.Error("tasks from one producer ran out of order")
	}
	posted, ran := q.Stats()
	if posted != ran || posted != producers*perProducer {
		t.Errorf("Stats() = %d posted, %d ran", posted, ran)
	}
	t.Logf("✅ %d tasks from %d producers ran in per-producer order", ran, producers)
}

func TestQueue_RunStopsOnCancel(t *testing.T) {
	q := New()
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- q.Run(ctx) }()

	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestQueue_CloseDrainsAndDrops(t *testing.T) {
	q := New()

	ran := 0
	q.Post(func() { ran++ })
	q.Close()
	q.Post(func() { ran++ })

	if err := q.Run(context.Background()); err != nil {
		t.Fatalf("Run() after Close = %v", err)
	}
	if ran != 1 {
		t.Errorf("ran = %d, want 1 (task posted after close is dropped)", ran)
	}
}

func TestQueue_PostNil(t *testing.T) {
	q := New()
	q.Post(nil)
	if q.Len() != 0 {
		t.Error("nil task should be ignored")
	}
}
