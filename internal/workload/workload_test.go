package workload

import (
	"encoding/json"
	"math/rand"
	"testing"

	"tilebench/internal/grid"
)

func TestGenerateSelfConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pool := Generate(100, grid.TileX, 10000, rng)

	if pool.Len() != 100 {
		t.Fatalf("expected 100 entries, got %d", pool.Len())
	}

	// Payload and expectation must describe identical values.
	for i, e := range pool.entries {
		var decoded Write
		if err := json.Unmarshal(e.Payload, &decoded); err != nil {
			t.Fatalf("entry %d: failed to unmarshal payload: %v", i, err)
		}
		if decoded != e.Expect {
			t.Errorf("entry %d: payload %+v does not match expectation %+v", i, decoded, e.Expect)
		}
	}
}

func TestGenerateBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	pool := Generate(1000, grid.TileX, 10000, rng)

	for i, e := range pool.entries {
		if e.Expect.X >= grid.TileX || e.Expect.Y >= grid.TileX {
			t.Errorf("entry %d: coordinate (%d,%d) out of range", i, e.Expect.X, e.Expect.Y)
		}
		if e.Expect.Color > 10000 {
			t.Errorf("entry %d: color %d out of range", i, e.Expect.Color)
		}
	}
}

func TestPick(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	pool := Generate(10, grid.TileX, 255, rng)

	for range 50 {
		e := pool.Pick(rng)
		found := false
		for _, p := range pool.entries {
			if p.Expect == e.Expect {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("picked entry %+v not in pool", e.Expect)
		}
	}
}
