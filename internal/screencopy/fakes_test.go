package screencopy

// Test doubles for the external collaborators described in spec.md §6.3.
// Kept deliberately simple: they record what happened so tests can assert on
// ordering and values rather than reimplementing wlroots.

type fakeOutput struct {
	extents Rect
}

func (o *fakeOutput) Extents() Rect { return o.extents }

type fakeBuffer struct {
	format ShmFormat
	w, h   uint32
	stride uint32
}

func (b *fakeBuffer) PixelFormat() ShmFormat { return b.format }
func (b *fakeBuffer) Width() uint32          { return b.w }
func (b *fakeBuffer) Height() uint32         { return b.h }
func (b *fakeBuffer) Stride() uint32         { return b.stride }

func argbBuffer(w, h uint32) *fakeBuffer {
	return &fakeBuffer{format: ShmFormatArgb8888, w: w, h: h, stride: w * 4}
}

type fakeAllocator struct {
	failNext bool
}

func (a *fakeAllocator) BufferFromShm(buffer BufferResource, _ func()) (MappableBuffer, error) {
	return buffer.(MappableBuffer), nil
}

type pendingCapture struct {
	target MappableBuffer
	region Rect
	cb     ShooterResultFunc
}

type fakeShooter struct {
	calls []pendingCapture
}

func (s *fakeShooter) Capture(target MappableBuffer, region Rect, cb ShooterResultFunc) {
	s.calls = append(s.calls, pendingCapture{target: target, region: region, cb: cb})
}

// complete resolves the i-th capture request with ts (nil means failure).
func (s *fakeShooter) complete(i int, ts *Timestamp) {
	s.calls[i].cb(ts)
}

type fakeSurfaceStack struct {
	nextID    ObserverHandle
	observers map[ObserverHandle]DamageObserver
}

func newFakeSurfaceStack() *fakeSurfaceStack {
	return &fakeSurfaceStack{observers: make(map[ObserverHandle]DamageObserver)}
}

func (s *fakeSurfaceStack) AddObserver(obs DamageObserver) ObserverHandle {
	s.nextID++
	s.observers[s.nextID] = obs
	return s.nextID
}

func (s *fakeSurfaceStack) RemoveObserver(h ObserverHandle) {
	delete(s.observers, h)
}

func (s *fakeSurfaceStack) notifyDamage(layer int32, rect Rect) {
	for _, obs := range s.observers {
		if obs.OnDamage != nil {
			obs.OnDamage(layer, rect)
		}
	}
}

func (s *fakeSurfaceStack) notifyGlobal() {
	for _, obs := range s.observers {
		if obs.OnGlobalChange != nil {
			obs.OnGlobalChange()
		}
	}
}

// syncExecutor runs spawned tasks inline, modelling the single dispatch
// context collapsed into the calling goroutine for deterministic tests.
type syncExecutor struct{}

func (syncExecutor) Spawn(fn func()) { fn() }

type eventRecord struct {
	kind               string
	format             ShmFormat
	w, h, stride       uint32
	yInvert            bool
	x, y, dw, dh       uint32
	secHi, secLo, nsec uint32
}

type fakeEvents struct {
	log []eventRecord
}

func (e *fakeEvents) SendBuffer(format ShmFormat, width, height, stride uint32) {
	e.log = append(e.log, eventRecord{kind: "buffer", format: format, w: width, h: height, stride: stride})
}

func (e *fakeEvents) SendBufferDone() {
	e.log = append(e.log, eventRecord{kind: "buffer_done"})
}

func (e *fakeEvents) SendFlags(yInvert bool) {
	e.log = append(e.log, eventRecord{kind: "flags", yInvert: yInvert})
}

func (e *fakeEvents) SendDamage(x, y, w, h uint32) {
	e.log = append(e.log, eventRecord{kind: "damage", x: x, y: y, dw: w, dh: h})
}

func (e *fakeEvents) SendReady(secHi, secLo, nsec uint32) {
	e.log = append(e.log, eventRecord{kind: "ready", secHi: secHi, secLo: secLo, nsec: nsec})
}

func (e *fakeEvents) SendFailed() {
	e.log = append(e.log, eventRecord{kind: "failed"})
}

func (e *fakeEvents) kinds() []string {
	out := make([]string, len(e.log))
	for i, r := range e.log {
		out[i] = r.kind
	}
	return out
}
