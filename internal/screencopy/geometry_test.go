package screencopy

import "testing"

func TestRectIntersect(t *testing.T) {
	a := Rect{Pos: Point{X: 0, Y: 0}, Size: Size{W: 100, H: 100}}
	b := Rect{Pos: Point{X: 50, Y: 50}, Size: Size{W: 100, H: 100}}

	got := a.Intersect(b)
	want := Rect{Pos: Point{X: 50, Y: 50}, Size: Size{W: 50, H: 50}}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestRectIntersectDisjoint(t *testing.T) {
	a := Rect{Pos: Point{X: 0, Y: 0}, Size: Size{W: 10, H: 10}}
	b := Rect{Pos: Point{X: 100, Y: 100}, Size: Size{W: 10, H: 10}}

	if got := a.Intersect(b); !got.IsZero() {
		t.Errorf("expected zero-size intersection, got %+v", got)
	}
}

func TestRectBoundingRect(t *testing.T) {
	a := Rect{Pos: Point{X: 0, Y: 0}, Size: Size{W: 10, H: 10}}
	b := Rect{Pos: Point{X: 20, Y: 5}, Size: Size{W: 10, H: 10}}

	got := a.BoundingRect(b)
	want := Rect{Pos: Point{X: 0, Y: 0}, Size: Size{W: 30, H: 15}}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestRectTranslate(t *testing.T) {
	r := Rect{Pos: Point{X: 750, Y: 520}, Size: Size{W: 80, H: 80}}
	local := r.Translate(Point{X: 700, Y: 500})
	want := Rect{Pos: Point{X: 50, Y: 20}, Size: Size{W: 80, H: 80}}
	if local != want {
		t.Errorf("got %+v, want %+v", local, want)
	}
}

func TestRectIsZero(t *testing.T) {
	if !(Rect{}).IsZero() {
		t.Errorf("zero-value Rect must be zero-sized")
	}
	if (Rect{Size: Size{W: 1, H: 1}}).IsZero() {
		t.Errorf("1x1 rect must not be zero-sized")
	}
}
