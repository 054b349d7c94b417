package camera

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/plyview/pkg/math"
)

func TestNewOrbitCamera(t *testing.T) {
	c := NewOrbitCamera()

	if c.Distance != DefaultDistance {
		t.Errorf("expected distance %v, got %v", DefaultDistance, c.Distance)
	}
	if c.Yaw != 0 || c.Pitch != 0 {
		t.Errorf("expected zero rotation, got yaw=%v pitch=%v", c.Yaw, c.Pitch)
	}
	if c.Target != (math.Vec3{}) {
		t.Errorf("expected origin target, got %v", c.Target)
	}
}

func TestPosition(t *testing.T) {
	c := NewOrbitCamera()

	// Zero rotation looks down -Z from +Z.
	assertVecClose(t, c.Position(), math.Vec3{X: 0, Y: 0, Z: 1.5})

	c.Yaw = gomath.Pi / 2
	assertVecClose(t, c.Position(), math.Vec3{X: 1.5, Y: 0, Z: 0})

	c.Yaw = 0
	c.Pitch = gomath.Pi / 6
	c.Target = math.Vec3{X: 1, Y: 2, Z: 3}
	want := math.Vec3{
		X: 1,
		Y: 2 + 1.5*float32(gomath.Sin(gomath.Pi/6)),
		Z: 3 + 1.5*float32(gomath.Cos(gomath.Pi/6)),
	}
	assertVecClose(t, c.Position(), want)
}

func TestRotateZeroIsNoop(t *testing.T) {
	c := NewOrbitCamera()
	c.Yaw = 0.3
	c.Pitch = -0.2

	c.Rotate(0, 0)

	if c.Yaw != 0.3 || c.Pitch != -0.2 {
		t.Errorf("Rotate(0,0) changed angles: yaw=%v pitch=%v", c.Yaw, c.Pitch)
	}
}

func TestRotateDirections(t *testing.T) {
	c := NewOrbitCamera()
	c.Rotate(0.25, 0.1)

	if c.Yaw != -0.25 {
		t.Errorf("expected yaw -0.25, got %v", c.Yaw)
	}
	if c.Pitch != 0.1 {
		t.Errorf("expected pitch 0.1, got %v", c.Pitch)
	}
}

func TestRotatePitchClamped(t *testing.T) {
	limit := NewOrbitCamera().MaxPitch
	if d := gomath.Abs(float64(limit) - (gomath.Pi/2 - PoleMargin)); d > 1e-6 {
		t.Fatalf("expected max pitch ~pi/2-%v, got %v", PoleMargin, limit)
	}

	tests := []struct {
		name string
		dy   float32
		want float32
	}{
		{"up", 10, limit},
		{"down", -10, -limit},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewOrbitCamera()
			c.Rotate(0, tc.dy)
			if c.Pitch != tc.want {
				t.Errorf("expected pitch %v, got %v", tc.want, c.Pitch)
			}
			// Repeated pushes stay pinned.
			c.Rotate(0, tc.dy)
			if c.Pitch != tc.want {
				t.Errorf("expected pitch to stay %v, got %v", tc.want, c.Pitch)
			}
		})
	}
}

func TestRotateYawUnbounded(t *testing.T) {
	c := NewOrbitCamera()
	for i := 0; i < 10; i++ {
		c.Rotate(-1, 0)
	}
	if c.Yaw != 10 {
		t.Errorf("expected yaw 10 without wraparound, got %v", c.Yaw)
	}
}

func TestPanZoomDistanceFloor(t *testing.T) {
	c := NewOrbitCamera()

	c.PanZoom(0, 0, -5)
	if c.Distance != DefaultMinDistance {
		t.Errorf("expected distance floor %v, got %v", DefaultMinDistance, c.Distance)
	}

	// No ceiling.
	c.PanZoom(0, 0, 1000)
	if c.Distance != DefaultMinDistance+1000 {
		t.Errorf("expected distance %v, got %v", DefaultMinDistance+1000, c.Distance)
	}
}

func TestPanZoomMovesTargetInCameraPlane(t *testing.T) {
	c := NewOrbitCamera()

	// At zero rotation the camera looks down -Z, so right is -X in the
	// cross(worldUp, forward) convention and up is +Y.
	c.PanZoom(1, 0, 0)
	assertVecClose(t, c.Target, math.Vec3{X: -1, Y: 0, Z: 0})

	c.PanZoom(0, 2, 0)
	assertVecClose(t, c.Target, math.Vec3{X: -1, Y: 2, Z: 0})

	if c.Distance != DefaultDistance {
		t.Errorf("pan should not change distance, got %v", c.Distance)
	}
}

func TestBasisOrthonormal(t *testing.T) {
	c := NewOrbitCamera()
	c.Rotate(0.7, 0.4)

	right, up := c.Basis()
	if d := right.Dot(up); d > 1e-5 || d < -1e-5 {
		t.Errorf("right and up should be orthogonal, dot=%v", d)
	}
	if l := right.Length(); l < 0.9999 || l > 1.0001 {
		t.Errorf("right should be unit length, got %v", l)
	}
	if l := up.Length(); l < 0.9999 || l > 1.0001 {
		t.Errorf("up should be unit length, got %v", l)
	}
}

func TestViewMatrixMapsTargetOnAxis(t *testing.T) {
	c := NewOrbitCamera()
	c.Target = math.Vec3{X: 3, Y: -1, Z: 2}
	c.Rotate(1.1, -0.6)

	p := c.ViewMatrix().TransformPoint(c.Target)
	assertVecClose(t, p, math.Vec3{X: 0, Y: 0, Z: -c.Distance})
}

func assertVecClose(t *testing.T, got, want math.Vec3) {
	t.Helper()
	if got.Distance(want) > 1e-4 {
		t.Errorf("got %v, want %v", got, want)
	}
}
