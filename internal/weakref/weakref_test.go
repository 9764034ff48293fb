package weakref

import "testing"

func TestResolveLive(t *testing.T) {
	reg := NewRegistry[int]()
	v := 42
	h := reg.Insert(&v)

	got, ok := h.Resolve()
	if !ok {
		t.Fatalf("expected handle to resolve")
	}
	if *got != 42 {
		t.Errorf("expected 42, got %d", *got)
	}
}

func TestInvalidate(t *testing.T) {
	reg := NewRegistry[int]()
	v := 1
	h := reg.Insert(&v)
	h.Invalidate()

	if _, ok := h.Resolve(); ok {
		t.Errorf("expected handle to be invalid after Invalidate")
	}
	// Invalidate must be idempotent
	h.Invalidate()
}

func TestZeroHandle(t *testing.T) {
	var h Handle[int]
	if h.Valid() {
		t.Errorf("zero handle must never be valid")
	}
	if _, ok := h.Resolve(); ok {
		t.Errorf("zero handle must never resolve")
	}
	// Must be safe to call on the zero value
	h.Invalidate()
}

func TestIndependentHandles(t *testing.T) {
	reg := NewRegistry[string]()
	a := "a"
	b := "b"
	ha := reg.Insert(&a)
	hb := reg.Insert(&b)

	ha.Invalidate()

	if ha.Valid() {
		t.Errorf("ha should be invalid")
	}
	if !hb.Valid() {
		t.Errorf("hb should still be valid")
	}
}

func TestLiveReflectsInsertAndInvalidate(t *testing.T) {
	reg := NewRegistry[string]()
	a, b := "a", "b"
	ha := reg.Insert(&a)
	_ = reg.Insert(&b)

	if len(reg.Live()) != 2 {
		t.Fatalf("expected 2 live entries, got %d", len(reg.Live()))
	}

	ha.Invalidate()
	if len(reg.Live()) != 1 {
		t.Errorf("expected 1 live entry after Invalidate, got %d", len(reg.Live()))
	}
}
