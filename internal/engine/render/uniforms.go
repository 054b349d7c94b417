package render

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/plyview/internal/engine/camera"
	"github.com/Faultbox/plyview/pkg/formats"
	"github.com/Faultbox/plyview/pkg/math"
)

// Fixed projection policy.
const (
	FieldOfViewY = math32.Pi / 3
	NearPlane    = 0.01
	FarPlane     = 100.0
)

// Uniforms is the per-frame uniform block.
type Uniforms struct {
	// Center is min+max of the vertex bounds (twice the midpoint).
	// Shaders offset positions by exactly this value.
	Center math.Vec3
	Scale  float32
	MVP    math.Mat4
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// ComputeBounds folds vertex positions into an AABB. The fold starts from
// +Inf/-Inf, so an empty slice yields a non-finite box.
func ComputeBounds(vertices []formats.PLYVertex) Bounds {
	b := Bounds{
		Min: math.Splat(math32.Inf(1)),
		Max: math.Splat(math32.Inf(-1)),
	}
	for i := range vertices {
		p := vertices[i].Position
		pos := math.Vec3{X: p[0], Y: p[1], Z: p[2]}
		b.Min = b.Min.Min(pos)
		b.Max = b.Max.Max(pos)
	}
	return b
}

// Extent returns Max - Min.
func (b Bounds) Extent() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns Min + Max. It is intentionally not halved.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max)
}

// Scale returns 1 / largest extent. Coincident vertices give +Inf.
func (b Bounds) Scale() float32 {
	return 1 / b.Extent().MaxComponent()
}

// ViewProjection returns projection * view for the camera at the given aspect.
func ViewProjection(cam *camera.OrbitCamera, aspect float32) math.Mat4 {
	projection := math.Perspective(FieldOfViewY, aspect, NearPlane, FarPlane)
	return projection.Mul(cam.ViewMatrix())
}

// BuildUniforms computes the uniform block for one frame.
func BuildUniforms(vertices []formats.PLYVertex, cam *camera.OrbitCamera, aspect float32) Uniforms {
	bounds := ComputeBounds(vertices)
	return Uniforms{
		Center: bounds.Center(),
		Scale:  bounds.Scale(),
		MVP:    ViewProjection(cam, aspect),
	}
}
