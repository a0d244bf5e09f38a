package embed

import (
	"context"
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	vec := Normalize([]float32{3, 4})

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Errorf("normalized vector has magnitude^2 = %f, want 1.0", sum)
	}

	// Zero vector passes through unchanged.
	zero := Normalize([]float32{0, 0, 0})
	for _, v := range zero {
		if v != 0 {
			t.Error("zero vector should remain zero")
		}
	}
}

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(8)
	ctx := context.Background()

	a, err := e.Embed(ctx, []string{"the mitochondria", "the mitochondria", "cell walls"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(a) != 3 {
		t.Fatalf("got %d vectors, want 3", len(a))
	}

	for i := range a[0] {
		if a[0][i] != a[1][i] {
			t.Fatal("identical texts must produce identical vectors")
		}
	}

	same := true
	for i := range a[0] {
		if a[0][i] != a[2][i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts should not produce identical vectors")
	}
}

func TestMockEmbedder_FailOn(t *testing.T) {
	e := NewMockEmbedder(8)
	e.FailOn("poison")

	if _, err := e.Embed(context.Background(), []string{"fine", "poison pill"}); err == nil {
		t.Error("expected failure for poisoned batch")
	}
	if _, err := e.Embed(context.Background(), []string{"fine"}); err != nil {
		t.Errorf("clean batch should succeed: %v", err)
	}
}
