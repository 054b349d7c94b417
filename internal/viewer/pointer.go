package viewer

import "github.com/Faultbox/plyview/pkg/math"

// Pointer buttons understood by PointerGestures.
const (
	PointerPrimary = iota + 1
	PointerMiddle
	PointerSecondary
)

// Desktop emulation of the two-finger gesture.
const (
	// emulatedSpread is the distance between the two synthetic touches.
	emulatedSpread = 200

	// WheelStep is the change in synthetic finger spread per wheel notch.
	WheelStep = 20
)

// PointerGestures converts mouse input into the pan gestures a touch screen
// would produce. Primary drag is a one-finger pan; middle or secondary drag
// is a two-finger pan at a fixed spread; the wheel is a pinch.
// Translation accumulates from an anchor until ResetTranslation is called.
type PointerGestures struct {
	button  int
	anchor  math.Vec2
	last    math.Vec2
	touches int
}

// Press starts a drag. A press while another button is held is ignored.
func (p *PointerGestures) Press(button int, x, y float32) []PanGesture {
	if p.button != 0 {
		return nil
	}
	touches := 1
	switch button {
	case PointerPrimary:
	case PointerMiddle, PointerSecondary:
		touches = 2
	default:
		return nil
	}

	p.button = button
	p.touches = touches
	p.last = math.Vec2{X: x, Y: y}
	p.anchor = p.last
	return []PanGesture{{Phase: GestureBegan, Touches: p.fingers(p.last, 0)}}
}

// Move continues the active drag, if any.
func (p *PointerGestures) Move(x, y float32) []PanGesture {
	if p.button == 0 {
		return nil
	}
	pos := math.Vec2{X: x, Y: y}
	if pos == p.last {
		return nil
	}
	p.last = pos
	return []PanGesture{{
		Phase:       GestureChanged,
		Translation: pos.Sub(p.anchor),
		Touches:     p.fingers(pos, 0),
	}}
}

// ResetTranslation makes the current position the new translation origin.
// Call it when the gesture mapper consumed a Changed event.
func (p *PointerGestures) ResetTranslation() {
	p.anchor = p.last
}

// Release ends the drag started by button.
func (p *PointerGestures) Release(button int) []PanGesture {
	if p.button == 0 || button != p.button {
		return nil
	}
	p.button = 0
	p.touches = 0
	return []PanGesture{{Phase: GestureEnded}}
}

// Wheel emits a complete pinch. Positive notches spread the fingers,
// which zooms in.
func (p *PointerGestures) Wheel(notches float32) []PanGesture {
	if notches == 0 || p.button != 0 {
		return nil
	}
	center := math.Vec2{}
	return []PanGesture{
		{Phase: GestureBegan, Touches: twoFingers(center, 0)},
		{Phase: GestureChanged, Touches: twoFingers(center, notches*WheelStep)},
		{Phase: GestureEnded},
	}
}

// Active reports whether a drag is in progress.
func (p *PointerGestures) Active() bool {
	return p.button != 0
}

func (p *PointerGestures) fingers(pos math.Vec2, extra float32) []math.Vec2 {
	if p.touches == 2 {
		return twoFingers(pos, extra)
	}
	return []math.Vec2{pos}
}

func twoFingers(center math.Vec2, extra float32) []math.Vec2 {
	half := (emulatedSpread + extra) / 2
	return []math.Vec2{
		{X: center.X - half, Y: center.Y},
		{X: center.X + half, Y: center.Y},
	}
}
