package playerlock

import (
	"sync"
	"testing"
)

func TestLockSerializesSamePlayer(t *testing.T) {
	ring := New(8)

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := ring.Lock("p1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Fatalf("counter = %d, want 100", counter)
	}
}

func TestStripeIsStable(t *testing.T) {
	ring := New(16)

	for _, id := range []string{"p1", "p2", "42", "long-player-identifier"} {
		if ring.stripe(id) != ring.stripe(id) {
			t.Fatalf("player %q maps to different stripes", id)
		}
	}
}

func TestNewDefaultsStripeCount(t *testing.T) {
	ring := New(0)
	if len(ring.stripes) != defaultStripes {
		t.Fatalf("stripes = %d, want %d", len(ring.stripes), defaultStripes)
	}
}
