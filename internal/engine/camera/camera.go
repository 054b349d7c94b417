// Package camera provides the orbit camera used by the viewer.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/plyview/pkg/math"
)

// Camera defaults.
const (
	DefaultDistance    = 1.5
	DefaultMinDistance = 0.5
	DefaultSensitivity = 1.0

	// PoleMargin keeps pitch strictly inside (-pi/2, pi/2).
	PoleMargin = 0.01
)

// WorldUp is the fixed up axis used for panning and the view matrix.
var WorldUp = math.Vec3{X: 0, Y: 1, Z: 0}

// OrbitCamera orbits a target point at a given distance.
// Yaw is unbounded; pitch is clamped short of the poles.
type OrbitCamera struct {
	Target math.Vec3

	Distance float32
	Yaw      float32 // Horizontal angle (radians)
	Pitch    float32 // Vertical angle (radians)

	// Constraints
	MinDistance float32
	MaxPitch    float32

	Sensitivity float32
}

// NewOrbitCamera creates an orbit camera at the default distance with zero rotation.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:    DefaultDistance,
		MinDistance: DefaultMinDistance,
		MaxPitch:    math32.Pi/2 - PoleMargin,
		Sensitivity: DefaultSensitivity,
	}
}

// Position returns the eye position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cosPitch := math32.Cos(c.Pitch)

	offset := math.Vec3{
		X: cosPitch * math32.Sin(c.Yaw),
		Y: math32.Sin(c.Pitch),
		Z: cosPitch * math32.Cos(c.Yaw),
	}
	return c.Target.Add(offset.Scale(c.Distance))
}

// ViewMatrix returns the look-at matrix from the eye to the target.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Target, WorldUp)
}

// Rotate orbits the camera. Positive dx turns the yaw negative.
func (c *OrbitCamera) Rotate(dx, dy float32) {
	c.Yaw -= dx * c.Sensitivity
	c.Pitch += dy * c.Sensitivity

	// Clamp pitch
	if c.Pitch > c.MaxPitch {
		c.Pitch = c.MaxPitch
	}
	if c.Pitch < -c.MaxPitch {
		c.Pitch = -c.MaxPitch
	}
}

// PanZoom moves the target along the camera's right/up axes and changes
// the distance by dz. Distance never drops below MinDistance.
func (c *OrbitCamera) PanZoom(dx, dy, dz float32) {
	right, up := c.Basis()

	c.Target = c.Target.Add(right.Scale(dx)).Add(up.Scale(dy))

	c.Distance += dz
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
}

// Basis returns the camera-relative right and up axes.
func (c *OrbitCamera) Basis() (right, up math.Vec3) {
	forward := c.Target.Sub(c.Position()).Normalize()
	right = WorldUp.Cross(forward).Normalize()
	up = forward.Cross(right)
	return right, up
}
