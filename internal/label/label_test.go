package label

import "testing"

func TestGenerateAlwaysLowercaseLetter(t *testing.T) {
	for i := 0; i < 1000; i++ {
		c := Generate(nil, 0)
		if c < 'a' || c > 'z' {
			t.Fatalf("draw %d: got %q, want a-z", i, c)
		}
	}
}

func TestGenerateMapsIndexToLetter(t *testing.T) {
	tests := []struct {
		index int
		want  rune
	}{
		{0, 'a'},
		{16, 'q'},
		{25, 'z'},
	}
	for _, tt := range tests {
		src := func(n int) int { return tt.index }
		if got := Generate(src, 0); got != tt.want {
			t.Errorf("index %d: got %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestGenerateNeverEqualsExcluded(t *testing.T) {
	for excluded := 'a'; excluded <= 'z'; excluded++ {
		for i := 0; i < 100; i++ {
			if got := Generate(nil, excluded); got == excluded {
				t.Fatalf("draw equal to excluded %q", excluded)
			}
		}
	}
}

func TestGenerateResamplesUntilDistinct(t *testing.T) {
	// Scripted source: first two draws land on the excluded letter, third on
	// another one. Generate must keep drawing until the distinct value.
	draws := []int{16, 16, 17}
	i := 0
	src := func(n int) int {
		v := draws[i]
		i++
		return v
	}
	if got := Generate(src, 'q'); got != 'r' {
		t.Errorf("got %q, want %q after resampling", got, 'r')
	}
	if i != 3 {
		t.Errorf("source consulted %d times, want 3", i)
	}
}
