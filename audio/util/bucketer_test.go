package util

import (
	"testing"
)

func TestBucketer(t *testing.T) {
	for _, tc := range []struct {
		name    string
		scale   Scale
		buckets int
		bins    int
	}{
		{"mel 64 of 1024", MelScale, 64, 1024},
		{"log2 32 of 512", LogScale2, 32, 512},
		{"log2 60 of 64", LogScale2, 60, 64},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBucketer(tc.scale, tc.buckets, tc.bins, 48000, 20, 16000)
			ranges := b.Ranges()
			if len(ranges) != tc.buckets {
				t.Fatal("expected", tc.buckets, "ranges, got", len(ranges))
			}
			for i, r := range ranges {
				if r.Hi <= r.Lo {
					t.Fatal("empty bucket", i, r)
				}
				if r.Hi > tc.bins || r.Lo < 0 {
					t.Fatal("bucket out of bounds", i, r)
				}
				if i > 0 && r.Lo < ranges[i-1].Hi {
					t.Fatal("overlapping buckets", ranges[i-1], r)
				}
			}
		})
	}
}

func TestBucketWidthsGrow(t *testing.T) {
	b := NewBucketer(LogScale2, 16, 2048, 48000, 20, 16000)
	ranges := b.Ranges()
	first := ranges[2].Hi - ranges[2].Lo
	last := ranges[15].Hi - ranges[15].Lo
	if last <= first {
		t.Fatal("expected high buckets to be wider", first, last)
	}
}

func TestBucketAverages(t *testing.T) {
	size := 256
	frame := make([]float64, size)
	for i := range frame {
		frame[i] = 0.5
	}
	b := NewBucketer(MelScale, 8, size, 44100, 30, 16000)
	for i, v := range b.Bucket(frame) {
		if v != 0.5 {
			t.Fatal("bucket", i, "should average to 0.5, got", v)
		}
	}

	// a short frame reads as zero past its end
	out := b.BucketInto(make([]float64, 8), frame[:1])
	if out[7] != 0 {
		t.Fatal("expected zero for bins beyond a short frame, got", out[7])
	}
}
