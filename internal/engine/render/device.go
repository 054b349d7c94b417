// Package render turns loaded geometry and camera state into draw
// submissions against an abstract GPU device.
package render

// Buffer is an opaque device buffer handle. Zero is never a valid buffer.
type Buffer uint32

// Pipeline is an opaque compiled pipeline handle. Zero is never valid.
type Pipeline uint32

// BufferKind distinguishes vertex and index storage.
type BufferKind int

// Buffer kinds.
const (
	VertexBuffer BufferKind = iota
	IndexBuffer
)

// Primitive is the topology of a draw call.
type Primitive int

// Draw topologies.
const (
	PrimitiveTriangles Primitive = iota
	PrimitivePoints
)

// String returns a short name for logging.
func (p Primitive) String() string {
	if p == PrimitiveTriangles {
		return "triangles"
	}
	return "points"
}

// VertexAttribute describes one float attribute inside an interleaved vertex.
type VertexAttribute struct {
	Location   uint32
	Components int32
	Offset     int
}

// PipelineDesc describes the vertex layout a pipeline consumes.
type PipelineDesc struct {
	Stride     int32
	Attributes []VertexAttribute
}

// DrawCall is a single submission. Indexed draws read Count indices from
// IndexBuffer; point draws read Count vertices starting at 0.
type DrawCall struct {
	Primitive    Primitive
	Pipeline     Pipeline
	VertexBuffer Buffer
	IndexBuffer  Buffer
	Count        int
	Uniforms     Uniforms
}

// Indexed returns true if the call reads from an index buffer.
func (c DrawCall) Indexed() bool {
	return c.Primitive == PrimitiveTriangles && c.IndexBuffer != 0
}

// Surface is a drawable target for one frame.
type Surface interface {
	Size() (width, height int)
}

// Device is the capability set the dispatcher needs from a GPU backend.
type Device interface {
	CreateBuffer(kind BufferKind, data []byte) (Buffer, error)
	ReleaseBuffer(buf Buffer)
	CreatePipeline(desc PipelineDesc) (Pipeline, error)

	// CurrentSurface returns the drawable for this frame, or false if
	// there is nothing to draw into (e.g. a minimized window).
	CurrentSurface() (Surface, bool)
	SubmitDraw(surface Surface, call DrawCall) error
}
