package viewer

import (
	"testing"

	"github.com/Faultbox/plyview/pkg/math"
)

// feedPointer hands gestures to the mapper, resetting translation whenever
// the mapper consumed it.
func feedPointer(p *PointerGestures, m *GestureMapper, rec *recordingController, gs []PanGesture) {
	for _, g := range gs {
		if m.Handle(g, rec) {
			p.ResetTranslation()
		}
	}
}

func TestPointerPrimaryDragRotates(t *testing.T) {
	var p PointerGestures
	m := NewGestureMapper()
	rec := &recordingController{}

	feed := func(gs []PanGesture) { feedPointer(&p, m, rec, gs) }

	feed(p.Press(PointerPrimary, 10, 10))
	if !p.Active() {
		t.Fatal("expected drag to be active")
	}
	feed(p.Move(30, 0))
	feed(p.Release(PointerPrimary))

	if p.Active() {
		t.Error("expected drag to end on release")
	}
	if len(rec.calls) != 1 || rec.calls[0].op != "rotate" {
		t.Fatalf("expected one rotate, got %+v", rec.calls)
	}
	if !near(rec.calls[0].dx, 0.1) || !near(rec.calls[0].dy, -0.05) {
		t.Errorf("expected rotate(0.1, -0.05), got (%f, %f)", rec.calls[0].dx, rec.calls[0].dy)
	}
}

func TestPointerSecondaryDragPans(t *testing.T) {
	var p PointerGestures
	m := NewGestureMapper()
	rec := &recordingController{}

	for _, g := range p.Press(PointerSecondary, 0, 0) {
		m.Handle(g, rec)
	}
	for _, g := range p.Move(40, 20) {
		m.Handle(g, rec)
	}

	if len(rec.calls) != 1 || rec.calls[0].op != "panzoom" {
		t.Fatalf("expected one panzoom, got %+v", rec.calls)
	}
	got := rec.calls[0]
	if !near(got.dx, 0.2) || !near(got.dy, 0.1) || got.dz != 0 {
		t.Errorf("expected panzoom(0.2, 0.1, 0), got (%f, %f, %f)", got.dx, got.dy, got.dz)
	}
}

func TestPointerWheelZooms(t *testing.T) {
	var p PointerGestures
	m := NewGestureMapper()
	rec := &recordingController{}

	for _, g := range p.Wheel(1) {
		m.Handle(g, rec)
	}

	if len(rec.calls) != 1 || rec.calls[0].op != "panzoom" {
		t.Fatalf("expected one panzoom, got %+v", rec.calls)
	}
	if !near(rec.calls[0].dz, -WheelStep*DefaultGestureSensitivity) {
		t.Errorf("expected zoom in, got dz=%f", rec.calls[0].dz)
	}
	if m.Pinching() {
		t.Error("expected wheel pinch to end")
	}
}

func TestPointerIgnoresStrayEvents(t *testing.T) {
	var p PointerGestures

	if g := p.Move(5, 5); g != nil {
		t.Errorf("expected no gesture without a press, got %+v", g)
	}
	if g := p.Release(PointerPrimary); g != nil {
		t.Errorf("expected no gesture for unmatched release, got %+v", g)
	}

	p.Press(PointerPrimary, 0, 0)
	if g := p.Press(PointerSecondary, 0, 0); g != nil {
		t.Error("expected second button to be ignored during a drag")
	}
	if g := p.Release(PointerSecondary); g != nil {
		t.Error("expected release of the other button to be ignored")
	}
	if g := p.Wheel(1); g != nil {
		t.Error("expected wheel to be ignored during a drag")
	}
	if g := p.Move(0, 0); g != nil {
		t.Error("expected zero motion to produce nothing")
	}
}

func TestPointerTranslationIsIncrementalAfterReset(t *testing.T) {
	var p PointerGestures
	m := NewGestureMapper()
	rec := &recordingController{}

	feedPointer(&p, m, rec, p.Press(PointerPrimary, 0, 0))
	feedPointer(&p, m, rec, p.Move(20, 0))
	feedPointer(&p, m, rec, p.Move(30, 0))

	if len(rec.calls) != 2 {
		t.Fatalf("expected 2 rotates, got %+v", rec.calls)
	}
	if !near(rec.calls[1].dx, 0.05) {
		t.Errorf("expected second rotate from a 10 point move, got dx=%f", rec.calls[1].dx)
	}
}

func TestPointerTranslationAccumulatesWithoutReset(t *testing.T) {
	var p PointerGestures
	p.Press(PointerPrimary, 0, 0)
	p.Move(20, 0)

	g := p.Move(30, 5)
	if len(g) != 1 || g[0].Translation != (math.Vec2{X: 30, Y: 5}) {
		t.Errorf("expected accumulated translation (30,5), got %+v", g)
	}

	p.ResetTranslation()
	g = p.Move(31, 5)
	if len(g) != 1 || g[0].Translation != (math.Vec2{X: 1, Y: 0}) {
		t.Errorf("expected translation (1,0) after reset, got %+v", g)
	}
}
