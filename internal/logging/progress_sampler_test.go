package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 25},
		{"default bucket size for negative", -1, 25},
		{"custom bucket size", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSamplerNilSampler(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "train") {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset()
}

func TestProgressSamplerLabelChange(t *testing.T) {
	s := NewProgressSampler(25)

	if !s.ShouldLog(0, "source-a") {
		t.Error("first label should log")
	}
	if s.ShouldLog(10, "source-a") {
		t.Error("same label within bucket should not log")
	}
	if !s.ShouldLog(10, "source-b") {
		t.Error("new label should log")
	}
	if s.lastLabel != "source-b" {
		t.Errorf("lastLabel = %q, want source-b", s.lastLabel)
	}
}

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(25)
	var emitted []float64
	for _, p := range []float64{0, 5, 24, 25, 30, 49, 50, 99, 100, 100} {
		if s.ShouldLog(p, "") {
			emitted = append(emitted, p)
		}
	}
	want := []float64{0, 25, 50, 99, 100}
	if len(emitted) != len(want) {
		t.Fatalf("emitted %v, want %v", emitted, want)
	}
	for i := range want {
		if emitted[i] != want[i] {
			t.Fatalf("emitted %v, want %v", emitted, want)
		}
	}

	s.Reset()
	if !s.ShouldLog(0, "") {
		t.Error("reset sampler should emit the first bucket again")
	}
}
