package util

import "testing"

func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer(10)
	rb.Push(1, 2, 3, 4, 5, 6)
	rb.Push(7, 8, 9, 10, 11, 12)

	g := rb.Get(10)
	exp := []float64{3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	for i := range g {
		if g[i] != exp[i] {
			t.Fatal(exp, g)
		}
	}

	g = rb.GetOffset(10, 2)
	exp = []float64{11, 12, 3, 4, 5, 6, 7, 8, 9, 10}
	for i := range g {
		if g[i] != exp[i] {
			t.Fatal(exp, g)
		}
	}

	g = rb.GetOffset(10, -2)
	exp = []float64{5, 6, 7, 8, 9, 10, 11, 12, 3, 4}
	for i := range g {
		if g[i] != exp[i] {
			t.Fatal(exp, g)
		}
	}
}

func TestRingBufferRecent(t *testing.T) {
	rb := NewRingBuffer(4)
	if got := rb.Recent(4); len(got) != 0 {
		t.Fatal("expected nothing from an empty buffer, got", got)
	}

	rb.Push(1)
	rb.Push(2)
	got := rb.Recent(4)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatal("unexpected recent values", got)
	}

	rb.Push(3, 4, 5)
	if rb.Len() != 4 {
		t.Fatal("Len should saturate at Cap, got", rb.Len())
	}
	got = rb.Recent(4)
	exp := []float64{2, 3, 4, 5}
	for i := range exp {
		if got[i] != exp[i] {
			t.Fatal(exp, got)
		}
	}

	rb.Reset()
	if rb.Len() != 0 {
		t.Fatal("Reset should clear Len")
	}
}
