package screencopy

import (
	"testing"

	"github.com/wl-compositor/wlr-screencopy/internal/weakref"
)

func newTestFrameHandle(t *testing.T, key FrameKey, shooter *fakeShooter, events *fakeEvents) (weakref.Handle[Frame], *weakref.Registry[Frame]) {
	t.Helper()
	reg := weakref.NewRegistry[Frame]()
	f := newFrame(key, weakref.Handle[Manager]{}, events, &fakeAllocator{}, shooter, syncExecutor{}, true)
	h := reg.Insert(f)
	f.setSelf(h)
	// A CaptureArea only ever captures a frame whose target has already been
	// prepared by copy/copy_with_damage; emulate that here directly.
	f.copyCalled = true
	f.target = argbBuffer(key.Region.Size.W, key.Region.Size.H)
	f.sendDamage = true
	return h, reg
}

func TestCaptureAreaAddFrameWithNoDamageUsesZeroSentinel(t *testing.T) {
	key := FrameKey{Region: Rect{Pos: Point{0, 0}, Size: Size{800, 600}}, Output: &fakeOutput{}}
	shooter := &fakeShooter{}
	events := &fakeEvents{}
	h, _ := newTestFrameHandle(t, key, shooter, events)

	area := newCaptureArea(key)
	area.AddFrame(h)
	if len(shooter.calls) != 0 {
		t.Fatalf("frame should still be waiting for damage, got %d calls", len(shooter.calls))
	}

	// Nothing ever damaged this area; draining it (via Close, here standing in
	// for whatever later event drains it) must still report a zero-size
	// sentinel rather than silently skipping the event.
	area.Close()
	if len(shooter.calls) != 1 {
		t.Fatalf("expected Close to drain the pending frame, got %d", len(shooter.calls))
	}
	if shooter.calls[0].region != key.Region {
		t.Errorf("shooter region = %+v, want %+v", shooter.calls[0].region, key.Region)
	}

	shooter.complete(0, tsPtr(1))
	dmg := findEvent(t, events, "damage")
	if dmg.x != 0 || dmg.y != 0 || dmg.dw != 0 || dmg.dh != 0 {
		t.Errorf("damage = %+v, want zero-size sentinel", dmg)
	}
}

func TestCaptureAreaApplyDamageThenAddFrame(t *testing.T) {
	key := FrameKey{Region: Rect{Pos: Point{0, 0}, Size: Size{800, 600}}, Output: &fakeOutput{}}
	area := newCaptureArea(key)

	area.ApplyDamage(&Rect{Pos: Point{10, 10}, Size: Size{20, 20}})
	r, ok := area.damage.PartialRect()
	if !ok || r != (Rect{Pos: Point{10, 10}, Size: Size{20, 20}}) {
		t.Fatalf("damage not accumulated as expected: %+v ok=%v", r, ok)
	}

	shooter := &fakeShooter{}
	events := &fakeEvents{}
	h, _ := newTestFrameHandle(t, key, shooter, events)
	area.AddFrame(h)

	if !area.damage.IsNone() {
		t.Errorf("damage must reset to None after capture_frame")
	}
	if area.pending.Valid() {
		t.Errorf("pending must be cleared after capture_frame")
	}
}

func TestCaptureAreaDamageCapturesPendingBeforeNextAddFrame(t *testing.T) {
	key := FrameKey{Region: Rect{Pos: Point{0, 0}, Size: Size{800, 600}}, Output: &fakeOutput{}}
	area := newCaptureArea(key)

	shooter1 := &fakeShooter{}
	events1 := &fakeEvents{}
	h1, _ := newTestFrameHandle(t, key, shooter1, events1)
	area.AddFrame(h1)
	// No damage yet: h1 just sits pending, no capture issued.
	if len(shooter1.calls) != 0 {
		t.Fatalf("expected no capture yet, got %d", len(shooter1.calls))
	}

	area.ApplyDamage(&Rect{Pos: Point{1, 1}, Size: Size{1, 1}})
	if len(shooter1.calls) != 1 {
		t.Fatalf("expected damage to capture the pending frame, got %d", len(shooter1.calls))
	}

	shooter2 := &fakeShooter{}
	events2 := &fakeEvents{}
	h2, _ := newTestFrameHandle(t, key, shooter2, events2)
	area.AddFrame(h2)
	if area.pending != h2 {
		t.Errorf("expected h2 to become the pending frame")
	}
}

func TestCaptureAreaCloseDrainsPendingFrame(t *testing.T) {
	key := FrameKey{Region: Rect{Pos: Point{0, 0}, Size: Size{800, 600}}, Output: &fakeOutput{}}
	area := newCaptureArea(key)

	shooter := &fakeShooter{}
	events := &fakeEvents{}
	h, _ := newTestFrameHandle(t, key, shooter, events)
	area.AddFrame(h)
	if len(shooter.calls) != 0 {
		t.Fatalf("frame should still be waiting for damage")
	}

	area.Close()
	if len(shooter.calls) != 1 {
		t.Errorf("expected Close to drain the pending frame, got %d calls", len(shooter.calls))
	}
}

func TestCaptureAreaApplyDamageOutsideRegionIsNoop(t *testing.T) {
	key := FrameKey{Region: Rect{Pos: Point{0, 0}, Size: Size{10, 10}}, Output: &fakeOutput{}}
	area := newCaptureArea(key)

	area.ApplyDamage(&Rect{Pos: Point{100, 100}, Size: Size{5, 5}})
	if !area.damage.IsNone() {
		t.Errorf("damage entirely outside the region must not accumulate")
	}
}

func TestCaptureAreaFullDamageDominatesPartial(t *testing.T) {
	key := FrameKey{Region: Rect{Pos: Point{0, 0}, Size: Size{10, 10}}, Output: &fakeOutput{}}
	area := newCaptureArea(key)

	area.ApplyDamage(&Rect{Pos: Point{1, 1}, Size: Size{1, 1}})
	area.ApplyDamage(nil)
	if !area.damage.IsFull() {
		t.Errorf("nil damage notification must mark the area fully damaged")
	}
}
