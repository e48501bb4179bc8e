package geom

import "testing"

func TestClampToViewport(t *testing.T) {
	viewport := Size{Width: 800, Height: 600}
	half := Size{Width: 24, Height: 24}

	tests := []struct {
		name string
		in   Point
		want Point
	}{
		{name: "interior unchanged", in: Point{X: 400, Y: 300}, want: Point{X: 400, Y: 300}},
		{name: "past left", in: Point{X: -50, Y: 300}, want: Point{X: 40, Y: 300}},
		{name: "past bottom right", in: Point{X: 900, Y: 700}, want: Point{X: 760, Y: 560}},
		{name: "exactly on the limit", in: Point{X: 40, Y: 40}, want: Point{X: 40, Y: 40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampToViewport(tt.in, viewport, half, 16); got != tt.want {
				t.Errorf("ClampToViewport(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// A viewport smaller than the element collapses to the padded minimum
// instead of producing an inverted range.
func TestClampToViewportDegenerate(t *testing.T) {
	got := ClampToViewport(Point{X: 0, Y: 0}, Size{Width: 30, Height: 30}, Size{Width: 24, Height: 24}, 16)
	if got.X != 40 || got.Y != 40 {
		t.Errorf("degenerate clamp = %v, want padded minimum (40,40)", got)
	}
}
