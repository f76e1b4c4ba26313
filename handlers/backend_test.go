package handlers

import (
	"math"
	"testing"
)

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		name        string
		index, size int
		want        int
	}{
		{"first", 0, 2, 2},
		{"last partial", 2, 2, 1},
		{"past the end", 3, 2, 0},
		{"exact end", 1, 5, 0},
		{"negative", -1, 2, 0},
		{"zero size", 0, 0, 0},
		{"would overflow", math.MaxInt / 2, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := page(items, tt.index, tt.size); len(got) != tt.want {
				t.Errorf("expected %d items, got %v", tt.want, got)
			}
		})
	}
}
