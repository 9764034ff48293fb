package screencopy

import "testing"

// newTestManager wires a Manager up with fakes and the output extents used
// throughout spec.md §8's scenarios: (0,0,800,600).
func newTestManager(t *testing.T) (*Manager, *fakeShooter, *fakeSurfaceStack, *fakeOutput) {
	t.Helper()
	shooter := &fakeShooter{}
	stack := newFakeSurfaceStack()
	global := NewManagerGlobal(100, stack, &fakeAllocator{}, shooter, syncExecutor{})
	mgr := global.Bind()
	output := &fakeOutput{extents: Rect{Pos: Point{0, 0}, Size: Size{800, 600}}}
	return mgr, shooter, stack, output
}

func tsPtr(ns int64) *Timestamp {
	ts := Timestamp(ns)
	return &ts
}

// S1 — plain copy
func TestScenarioPlainCopy(t *testing.T) {
	mgr, shooter, _, output := newTestManager(t)
	events := &fakeEvents{}

	frame := mgr.CaptureOutput(output, events)
	if err := frame.Copy(argbBuffer(800, 600)); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if len(shooter.calls) != 1 {
		t.Fatalf("expected 1 capture call, got %d", len(shooter.calls))
	}
	shooter.complete(0, tsPtr(17_500_000_000))

	got := events.kinds()
	want := []string{"buffer", "buffer_done", "flags", "ready"}
	assertKinds(t, got, want)

	last := events.log[len(events.log)-1]
	if last.secHi != 0 || last.secLo != 17 || last.nsec != 500_000_000 {
		t.Errorf("ready event = %+v, want sec_hi=0 sec_lo=17 nsec=500000000", last)
	}
}

// S2 — copy_with_damage with no prior damage on this key
func TestScenarioCopyWithDamageFirstTime(t *testing.T) {
	mgr, shooter, _, output := newTestManager(t)
	events := &fakeEvents{}

	frame := mgr.CaptureOutput(output, events)
	if err := frame.CopyWithDamage(argbBuffer(800, 600)); err != nil {
		t.Fatalf("CopyWithDamage failed: %v", err)
	}
	if len(shooter.calls) != 1 {
		t.Fatalf("expected immediate capture, got %d calls", len(shooter.calls))
	}
	shooter.complete(0, tsPtr(17_500_000_000))

	assertKinds(t, events.kinds(), []string{"buffer", "buffer_done", "flags", "damage", "ready"})

	// No CaptureArea exists for this key yet, so there is no damage baseline
	// to consult; the manager captures the whole region immediately, the
	// same as the dispatch table's Full case (spec.md §4.3 step 4).
	dmg := findEvent(t, events, "damage")
	if dmg.x != 0 || dmg.y != 0 || dmg.dw != 800 || dmg.dh != 600 {
		t.Errorf("damage = %+v, want full region (0,0,800,600)", dmg)
	}
}

// S3 — damage arrives, then copy_with_damage: captured immediately with that damage
func TestScenarioDamageThenCopyWithDamage(t *testing.T) {
	mgr, shooter, stack, output := newTestManager(t)

	// Drive S2 to completion first so a CaptureArea for this key exists.
	first := mgr.CaptureOutput(output, &fakeEvents{})
	_ = first.CopyWithDamage(argbBuffer(800, 600))
	shooter.complete(0, tsPtr(1_000_000_000))

	stack.notifyDamage(0, Rect{Pos: Point{100, 100}, Size: Size{50, 50}})

	events := &fakeEvents{}
	second := mgr.CaptureOutput(output, events)
	if err := second.CopyWithDamage(argbBuffer(800, 600)); err != nil {
		t.Fatalf("CopyWithDamage failed: %v", err)
	}
	if len(shooter.calls) != 2 {
		t.Fatalf("expected second frame to capture immediately, got %d total calls", len(shooter.calls))
	}
	shooter.complete(1, tsPtr(2_000_000_000))

	dmg := findEvent(t, events, "damage")
	if dmg.x != 100 || dmg.y != 100 || dmg.dw != 50 || dmg.dh != 50 {
		t.Errorf("damage = %+v, want (100,100,50,50)", dmg)
	}
}

// S4 — copy_with_damage then damage arrives: capture fires only once damage lands
func TestScenarioCopyWithDamageThenDamage(t *testing.T) {
	mgr, shooter, stack, output := newTestManager(t)

	first := mgr.CaptureOutput(output, &fakeEvents{})
	_ = first.CopyWithDamage(argbBuffer(800, 600))
	shooter.complete(0, tsPtr(1_000_000_000))

	events := &fakeEvents{}
	second := mgr.CaptureOutput(output, events)
	if err := second.CopyWithDamage(argbBuffer(800, 600)); err != nil {
		t.Fatalf("CopyWithDamage failed: %v", err)
	}
	if len(shooter.calls) != 1 {
		t.Fatalf("expected no capture before damage arrives, got %d calls", len(shooter.calls))
	}

	stack.notifyDamage(0, Rect{Pos: Point{10, 10}, Size: Size{5, 5}})
	if len(shooter.calls) != 2 {
		t.Fatalf("expected capture once damage arrives, got %d calls", len(shooter.calls))
	}
	shooter.complete(1, tsPtr(2_000_000_000))

	dmg := findEvent(t, events, "damage")
	if dmg.x != 10 || dmg.y != 10 || dmg.dw != 5 || dmg.dh != 5 {
		t.Errorf("damage = %+v, want (10,10,5,5)", dmg)
	}
}

// S5 — region clipping and local-coordinate damage translation. Mirrors S3's
// setup: the region's CaptureArea must already exist before damage can
// accumulate against it, since a key's first copy_with_damage always
// captures immediately (spec.md §4.3 step 4) rather than consulting damage
// that arrived before any area for that key was created.
func TestScenarioRegionClipping(t *testing.T) {
	mgr, shooter, stack, output := newTestManager(t)
	requested := Rect{Pos: Point{700, 500}, Size: Size{200, 200}}

	first := mgr.CaptureOutputRegion(output, &fakeEvents{}, requested)
	wantRegion := Rect{Pos: Point{700, 500}, Size: Size{100, 100}}
	if first.key.Region != wantRegion {
		t.Fatalf("clipped region = %+v, want %+v", first.key.Region, wantRegion)
	}
	if err := first.CopyWithDamage(argbBuffer(100, 100)); err != nil {
		t.Fatalf("CopyWithDamage failed: %v", err)
	}
	shooter.complete(0, tsPtr(1_000_000_000))

	// (750,520,80,80) clipped to the region (700,500,100,100) loses 30px off
	// its right edge: width 100-50=50, not 80.
	stack.notifyDamage(0, Rect{Pos: Point{750, 520}, Size: Size{80, 80}})

	events := &fakeEvents{}
	second := mgr.CaptureOutputRegion(output, events, requested)
	if err := second.CopyWithDamage(argbBuffer(100, 100)); err != nil {
		t.Fatalf("CopyWithDamage failed: %v", err)
	}
	if len(shooter.calls) != 2 {
		t.Fatalf("expected second frame to capture immediately against accumulated damage, got %d", len(shooter.calls))
	}
	shooter.complete(1, tsPtr(2_000_000_000))

	dmg := findEvent(t, events, "damage")
	if dmg.x != 50 || dmg.y != 20 || dmg.dw != 50 || dmg.dh != 80 {
		t.Errorf("damage = %+v, want (50,20,50,80)", dmg)
	}
}

// S6 — second copy on the same frame raises already_used
func TestScenarioDoubleCopyErrors(t *testing.T) {
	mgr, shooter, _, output := newTestManager(t)
	events := &fakeEvents{}
	frame := mgr.CaptureOutput(output, events)

	if err := frame.Copy(argbBuffer(800, 600)); err != nil {
		t.Fatalf("first copy failed: %v", err)
	}
	if len(shooter.calls) != 1 {
		t.Fatalf("expected first copy to submit a capture")
	}

	err := frame.Copy(argbBuffer(800, 600))
	if err == nil {
		t.Fatalf("expected second copy to fail")
	}
	pe, ok := err.(*ProtocolError)
	if !ok || pe.Code != FrameErrorAlreadyUsed {
		t.Errorf("expected already_used protocol error, got %v", err)
	}
	if len(shooter.calls) != 1 {
		t.Errorf("second copy must not submit another capture")
	}
}

// S7 — invalid buffer dimensions raise invalid_buffer, no further events
func TestScenarioInvalidBuffer(t *testing.T) {
	mgr, shooter, _, output := newTestManager(t)
	events := &fakeEvents{}
	frame := mgr.CaptureOutput(output, events)

	err := frame.Copy(argbBuffer(799, 600))
	if err == nil {
		t.Fatalf("expected invalid_buffer error")
	}
	pe, ok := err.(*ProtocolError)
	if !ok || pe.Code != FrameErrorInvalidBuffer {
		t.Errorf("expected invalid_buffer protocol error, got %v", err)
	}
	if len(shooter.calls) != 0 {
		t.Errorf("invalid buffer must not reach the shooter")
	}
	assertKinds(t, events.kinds(), []string{"buffer", "buffer_done"})
}

// S8 — shooter failure emits failed, nothing else
func TestScenarioCaptureFailure(t *testing.T) {
	mgr, shooter, _, output := newTestManager(t)
	events := &fakeEvents{}
	frame := mgr.CaptureOutput(output, events)

	if err := frame.Copy(argbBuffer(800, 600)); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	shooter.complete(0, nil)

	assertKinds(t, events.kinds(), []string{"buffer", "buffer_done", "failed"})
}

// Property: bound — area list never exceeds the configured cap.
func TestPropertyAreaListBound(t *testing.T) {
	shooter := &fakeShooter{}
	stack := newFakeSurfaceStack()
	global := NewManagerGlobal(100, stack, &fakeAllocator{}, shooter, syncExecutor{})
	mgr := global.Bind()

	for i := 0; i < 101; i++ {
		output := &fakeOutput{extents: Rect{Pos: Point{int32(i), 0}, Size: Size{10, 10}}}
		frame := mgr.CaptureOutput(output, &fakeEvents{})
		_ = frame.CopyWithDamage(argbBuffer(10, 10))
	}

	if len(mgr.areas) > 100 {
		t.Errorf("areas len = %d, want <= 100", len(mgr.areas))
	}
}

// Property: destroying a manager with a still-pending copy_with_damage frame
// captures it rather than orphaning it.
func TestPropertyNoOrphanPendingOnDestroy(t *testing.T) {
	mgr, shooter, _, output := newTestManager(t)

	first := mgr.CaptureOutput(output, &fakeEvents{})
	_ = first.CopyWithDamage(argbBuffer(800, 600))
	shooter.complete(0, tsPtr(1_000_000_000))

	events := &fakeEvents{}
	second := mgr.CaptureOutput(output, events)
	if err := second.CopyWithDamage(argbBuffer(800, 600)); err != nil {
		t.Fatalf("CopyWithDamage failed: %v", err)
	}
	if len(shooter.calls) != 1 {
		t.Fatalf("second frame should still be waiting for damage")
	}

	mgr.Destroy()

	if len(shooter.calls) != 2 {
		t.Fatalf("expected Destroy to drain the pending frame, got %d total calls", len(shooter.calls))
	}
	shooter.complete(1, tsPtr(2_000_000_000))
	assertKinds(t, events.kinds(), []string{"buffer", "buffer_done", "flags", "damage", "ready"})
}

// Destroying a Frame mid-flight must not panic when its capture later completes.
func TestFrameDestroyDuringInFlightCapture(t *testing.T) {
	mgr, shooter, _, output := newTestManager(t)
	events := &fakeEvents{}
	frame := mgr.CaptureOutput(output, events)

	if err := frame.Copy(argbBuffer(800, 600)); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	frame.Destroy()
	shooter.complete(0, tsPtr(1_000_000_000))

	if len(events.log) != 2 {
		t.Errorf("expected only the construction buffer/buffer_done events, got %v", events.kinds())
	}
}

func assertKinds(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("event kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event kinds = %v, want %v", got, want)
		}
	}
}

func findEvent(t *testing.T, events *fakeEvents, kind string) eventRecord {
	t.Helper()
	for _, r := range events.log {
		if r.kind == kind {
			return r
		}
	}
	t.Fatalf("no %q event found in %v", kind, events.kinds())
	return eventRecord{}
}
