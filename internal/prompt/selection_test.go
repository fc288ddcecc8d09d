package prompt

import (
	"errors"
	"strconv"
	"testing"
)

func TestParseSelectionValid(t *testing.T) {
	for _, count := range []int{1, 3, 26} {
		for i := 1; i <= count; i++ {
			n, err := ParseSelection(strconv.Itoa(i), count)
			if err != nil {
				t.Fatalf("ParseSelection(%d, %d): %v", i, count, err)
			}
			if n != i {
				t.Errorf("ParseSelection(%d, %d) = %d", i, count, n)
			}
		}
	}
}

func TestParseSelectionTrimsWhitespace(t *testing.T) {
	n, err := ParseSelection("  2 ", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("got %d, want 2", n)
	}
}

func TestParseSelectionInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		count int
	}{
		{"zero", "0", 3},
		{"out of range high", "4", 3},
		{"way out of range", "99", 3},
		{"negative", "-1", 3},
		{"non-numeric", "first", 3},
		{"empty", "", 3},
		{"whitespace only", "   ", 3},
		{"float", "1.5", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSelection(tt.input, tt.count)
			if !errors.Is(err, ErrInvalidSelection) {
				t.Errorf("ParseSelection(%q, %d) error = %v, want ErrInvalidSelection", tt.input, tt.count, err)
			}
		})
	}
}
