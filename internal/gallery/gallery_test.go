package gallery

import (
	"math"
	"testing"
)

func TestCosineDistance_Identical(t *testing.T) {
	a := []float32{0.5, 0.3, 0.2}
	d := CosineDistance(a, a)
	if d > 1e-9 {
		t.Errorf("expected distance ~0 for identical vectors, got %v", d)
	}
}

func TestCosineDistance_Orthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	d := CosineDistance(a, b)
	if math.Abs(d-1) > 1e-9 {
		t.Errorf("expected distance 1 for orthogonal vectors, got %v", d)
	}
}

func TestCosineDistance_InvalidInput(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
	}{
		{"mismatched lengths", []float32{1, 0}, []float32{1}},
		{"empty", nil, nil},
		{"zero vector", []float32{0, 0}, []float32{1, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if d := CosineDistance(tc.a, tc.b); d != 2.0 {
				t.Errorf("expected max distance 2.0, got %v", d)
			}
		})
	}
}

func TestConfidence_Clamped(t *testing.T) {
	cases := []struct {
		distance float64
		want     float64
	}{
		{0.3, 0.7},
		{0, 1},
		{1, 0},
		{1.5, 0},  // clamped low
		{-0.1, 1}, // clamped high
	}
	for _, tc := range cases {
		if got := Confidence(tc.distance); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Confidence(%v) = %v, want %v", tc.distance, got, tc.want)
		}
	}
}

func TestGallery_EmptyNeverMatches(t *testing.T) {
	g := New()

	if _, ok := g.Nearest([]float32{1, 0, 0}); ok {
		t.Error("empty gallery must never return a neighbor")
	}
	if g.Size() != 0 {
		t.Errorf("expected empty gallery, got size %d", g.Size())
	}
}

func TestGallery_NearestFindsClosest(t *testing.T) {
	g := New()
	g.Load([]Identity{
		{Name: "Jane Doe", Embedding: []float32{1, 0, 0}},
		{Name: "John Smith", Embedding: []float32{0, 1, 0}},
		{Name: "Maria Cruz", Embedding: []float32{0, 0, 1}},
	})

	probe := []float32{0.95, 0.05, 0}
	n, ok := g.Nearest(probe)
	if !ok {
		t.Fatal("expected a neighbor")
	}
	if n.Name != "Jane Doe" {
		t.Errorf("expected nearest 'Jane Doe', got '%s'", n.Name)
	}
	if n.Distance < 0 || n.Distance > 0.1 {
		t.Errorf("unexpected distance %v for near-identical vectors", n.Distance)
	}
}

func TestGallery_LoadSkipsEmptyEmbeddings(t *testing.T) {
	g := New()
	g.Load([]Identity{
		{Name: "No Embedding"},
		{Name: "Jane Doe", Embedding: []float32{1, 0}},
	})

	if g.Size() != 1 {
		t.Errorf("expected 1 identity after load, got %d", g.Size())
	}
	names := g.Names()
	if len(names) != 1 || names[0] != "Jane Doe" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestGallery_LoadReplacesSnapshot(t *testing.T) {
	g := New()
	g.Load([]Identity{{Name: "Jane Doe", Embedding: []float32{1, 0}}})
	g.Load([]Identity{{Name: "John Smith", Embedding: []float32{0, 1}}})

	n, ok := g.Nearest([]float32{0, 1})
	if !ok || n.Name != "John Smith" {
		t.Errorf("expected reloaded gallery to contain only 'John Smith', got %+v ok=%v", n, ok)
	}
	if g.Size() != 1 {
		t.Errorf("expected size 1 after reload, got %d", g.Size())
	}
}
