package viewer

import "github.com/Faultbox/plyview/pkg/math"

// DefaultGestureSensitivity scales gesture deltas (in points) into camera units.
const DefaultGestureSensitivity = 0.005

// GesturePhase is the lifecycle stage of a pan gesture.
type GesturePhase int

// Gesture phases as reported by the host event system.
const (
	GestureBegan GesturePhase = iota
	GestureChanged
	GestureEnded
	GestureCancelled
	GestureFailed
)

// String returns the phase name.
func (p GesturePhase) String() string {
	switch p {
	case GestureBegan:
		return "began"
	case GestureChanged:
		return "changed"
	case GestureEnded:
		return "ended"
	case GestureCancelled:
		return "cancelled"
	case GestureFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PanGesture is one pan event. Translation is accumulated since the
// previous Changed event; Touches holds the finger positions.
type PanGesture struct {
	Phase       GesturePhase
	Translation math.Vec2
	Touches     []math.Vec2
}

// CameraController receives camera mutations. *Session implements it.
type CameraController interface {
	Rotate(dx, dy float32)
	PanZoom(dx, dy, dz float32)
}

// GestureMapper turns pan gestures into camera updates. One finger
// rotates; two fingers pan, and the change in finger spread zooms.
type GestureMapper struct {
	Sensitivity float32

	lastDistance float32
	hasDistance  bool
}

// NewGestureMapper creates a mapper with the default sensitivity.
func NewGestureMapper() *GestureMapper {
	return &GestureMapper{Sensitivity: DefaultGestureSensitivity}
}

// Handle applies g to target. It returns true when the caller should reset
// the gesture's accumulated translation.
func (m *GestureMapper) Handle(g PanGesture, target CameraController) bool {
	switch g.Phase {
	case GestureBegan:
		if len(g.Touches) == 2 {
			m.lastDistance = g.Touches[0].Distance(g.Touches[1])
			m.hasDistance = true
		}
		return false

	case GestureChanged:
		s := m.Sensitivity
		dx, dy := g.Translation.X*s, g.Translation.Y*s

		switch len(g.Touches) {
		case 1:
			target.Rotate(dx, dy)
		case 2:
			dist := g.Touches[0].Distance(g.Touches[1])
			if m.hasDistance {
				target.PanZoom(dx, dy, -(dist-m.lastDistance)*s)
			}
			m.lastDistance = dist
			m.hasDistance = true
		default:
			return false
		}
		return true

	case GestureEnded, GestureCancelled, GestureFailed:
		m.hasDistance = false
		m.lastDistance = 0
	}
	return false
}

// Pinching reports whether a two-finger distance is being tracked.
func (m *GestureMapper) Pinching() bool {
	return m.hasDistance
}
