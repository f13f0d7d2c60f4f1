package dedupx_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Abraxas-365/flowx/pkg/dedupx"
)

func TestGroup_CoalescesConcurrentIdenticalCalls(t *testing.T) {
	g := dedupx.NewGroup[string]()

	var executions atomic.Int32
	release := make(chan struct{})

	fn := func(ctx context.Context) (string, error) {
		executions.Add(1)
		<-release
		return "shared", nil
	}

	const callers = 3
	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = g.Do(context.Background(), "key", fn)
		}(i)
	}

	// Let all three callers register against the same flight.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := executions.Load(); n != 1 {
		t.Fatalf("expected exactly one underlying execution, got %d", n)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d got error %v", i, errs[i])
		}
		if results[i] != "shared" {
			t.Fatalf("caller %d got result %q", i, results[i])
		}
	}
}

func TestGroup_ErrorSharedWithAllWaiters(t *testing.T) {
	g := dedupx.NewGroup[int]()
	boom := errors.New("boom")
	release := make(chan struct{})

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = g.Do(context.Background(), "k", func(ctx context.Context) (int, error) {
				<-release
				return 0, boom
			})
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != boom {
			t.Fatalf("caller %d expected shared error, got %v", i, err)
		}
	}
}

func TestGroup_EntryRemovedAfterCompletion(t *testing.T) {
	g := dedupx.NewGroup[int]()

	var executions atomic.Int32
	fn := func(ctx context.Context) (int, error) {
		executions.Add(1)
		return int(executions.Load()), nil
	}

	v1, err := g.Do(context.Background(), "k", fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v2, err := g.Do(context.Background(), "k", fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Sequential calls are separate flights, not coalesced.
	if v1 != 1 || v2 != 2 {
		t.Fatalf("expected two separate executions, got %d and %d", v1, v2)
	}
}

func TestGroup_DistinctKeysRunIndependently(t *testing.T) {
	g := dedupx.NewGroup[string]()
	release := make(chan struct{})

	var executions atomic.Int32
	run := func(key string) (string, error) {
		return g.Do(context.Background(), key, func(ctx context.Context) (string, error) {
			executions.Add(1)
			<-release
			return key, nil
		})
	}

	var wg sync.WaitGroup
	for _, key := range []string{"a", "b"} {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			if v, err := run(key); err != nil || v != key {
				t.Errorf("key %q: got (%q, %v)", key, v, err)
			}
		}(key)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := executions.Load(); n != 2 {
		t.Fatalf("expected one execution per distinct key, got %d", n)
	}
}

func TestGroup_WaiterContextCancellation(t *testing.T) {
	g := dedupx.NewGroup[int]()
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_, _ = g.Do(context.Background(), "k", func(ctx context.Context) (int, error) {
			close(started)
			<-release
			return 42, nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := g.Do(ctx, "k", func(ctx context.Context) (int, error) {
		t.Error("joiner must not execute the function")
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled for cancelled waiter, got %v", err)
	}
	close(release)
}

func TestWrap_KeysOnArgumentDigest(t *testing.T) {
	g := dedupx.NewGroup[string]()

	var executions atomic.Int32
	release := make(chan struct{})

	lookup := dedupx.Wrap(g, "lookup", func(ctx context.Context, id string) (string, error) {
		executions.Add(1)
		<-release
		return "value-" + id, nil
	})

	var wg sync.WaitGroup
	for n := 0; n < 3; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := lookup(context.Background(), "same"); err != nil || v != "value-same" {
				t.Errorf("got (%q, %v)", v, err)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if v, err := lookup(context.Background(), "other"); err != nil || v != "value-other" {
			t.Errorf("got (%q, %v)", v, err)
		}
	}()

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	// Three identical-argument calls share one flight; the distinct
	// argument gets its own.
	if n := executions.Load(); n != 2 {
		t.Fatalf("expected 2 executions, got %d", n)
	}
}

func TestWrap_UndigestibleArgumentBypassesCoalescing(t *testing.T) {
	type signal struct {
		Ch chan int // not JSON-serializable, so the argument has no digest
	}

	g := dedupx.NewGroup[string]()

	var executions atomic.Int32
	release := make(chan struct{})

	lookup := dedupx.Wrap(g, "lookup", func(ctx context.Context, s signal) (string, error) {
		executions.Add(1)
		<-release
		return "direct", nil
	})

	arg := signal{Ch: make(chan int)}
	var wg sync.WaitGroup
	for n := 0; n < 3; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := lookup(context.Background(), arg); err != nil || v != "direct" {
				t.Errorf("got (%q, %v)", v, err)
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	// Without a digest there is no key to coalesce on; every caller runs
	// the function itself.
	if n := executions.Load(); n != 3 {
		t.Fatalf("expected 3 direct executions, got %d", n)
	}
}
