package pathgen

import "testing"

func TestStreamDeterminism(t *testing.T) {
	a := NewStream(12345)
	b := NewStream(12345)

	for i := 0; i < 100; i++ {
		if a.Next() != b.Next() {
			t.Fatalf("streams diverged at draw %d", i)
		}
	}
}

func TestStreamZeroSeedUsesDefault(t *testing.T) {
	a := NewStream(0)
	b := NewStream(0)
	if a.Next() != b.Next() {
		t.Error("zero-seed streams should be identical")
	}
}

func TestStreamFloatRange(t *testing.T) {
	s := NewStream(99)
	for i := 0; i < 1000; i++ {
		f := s.Float()
		if f < 0 || f >= 1 {
			t.Fatalf("Float() = %f outside [0, 1)", f)
		}
	}
}

func TestRandDeterminism(t *testing.T) {
	a := NewRand(42, 1)
	b := NewRand(42, 1)

	for i := 0; i < 50; i++ {
		if a.Draw("heading", i) != b.Draw("heading", i) {
			t.Fatalf("identical rands diverged at iteration %d", i)
		}
	}
}

func TestRandLevelSeparation(t *testing.T) {
	a := NewRand(42, 1)
	b := NewRand(42, 2)
	if a.Draw("heading", 0) == b.Draw("heading", 0) {
		t.Error("different levels should produce different draw sequences")
	}
}

func TestRandMemoization(t *testing.T) {
	r := NewRand(7, 0)

	first := r.Draw("step", 3)
	second := r.Draw("step", 3)
	if first != second {
		t.Error("repeated draw for the same key should return the cached value")
	}

	// Iteration indexes wrap at the cache size, so iteration 103 shares
	// the key of iteration 3.
	wrapped := r.Draw("step", 3+drawCacheSize)
	if wrapped != first {
		t.Error("iteration index should wrap at the cache size")
	}

	hits, misses := r.CacheStats()
	if hits != 2 {
		t.Errorf("hits = %d, expected 2", hits)
	}
	if misses != 1 {
		t.Errorf("misses = %d, expected 1", misses)
	}
}

// Clearing the cache with the same seed must yield a different draw
// sequence: retries depend on differing from the initial attempt.
func TestRandClearCacheChangesDraws(t *testing.T) {
	r := NewRand(42, 1)

	before := make([]float64, 10)
	for i := range before {
		before[i] = r.Draw("heading", i)
	}

	r.ClearCache()

	changed := false
	for i := range before {
		if r.Draw("heading", i) != before[i] {
			changed = true
			break
		}
	}
	if !changed {
		t.Error("draws after ClearCache() should differ from the first attempt")
	}
}

// The cleared sequence must itself be reproducible: the same seed with
// the same clear pattern gives the same draws.
func TestRandClearCacheReproducible(t *testing.T) {
	run := func() []float64 {
		r := NewRand(42, 1)
		for i := 0; i < 10; i++ {
			r.Draw("heading", i)
		}
		r.ClearCache()
		out := make([]float64, 10)
		for i := range out {
			out[i] = r.Draw("heading", i)
		}
		return out
	}

	a := run()
	b := run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("post-clear sequences diverged at %d", i)
		}
	}
}

func TestRandEviction(t *testing.T) {
	r := NewRand(5, 0)

	// Fill the cache with one operation, then push it out with another.
	first := r.Draw("alpha", 0)
	for i := 0; i < drawCacheSize; i++ {
		r.Draw("beta", i)
	}

	// "alpha#0" was the oldest entry and has been evicted; the redraw
	// pulls a fresh value from the stream.
	if r.Draw("alpha", 0) == first {
		t.Error("evicted key should redraw a fresh value")
	}

	if len(r.cache) > drawCacheSize {
		t.Errorf("cache holds %d entries, capacity is %d", len(r.cache), drawCacheSize)
	}
}

func TestRandIntnBounds(t *testing.T) {
	r := NewRand(11, 0)
	for i := 0; i < 200; i++ {
		v := r.Intn("edge", i, 4)
		if v < 0 || v >= 4 {
			t.Fatalf("Intn() = %d outside [0, 4)", v)
		}
	}
	if r.Intn("none", 0, 0) != 0 {
		t.Error("Intn(0) should return 0")
	}
}
