package render

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/Faultbox/plyview/internal/engine/camera"
	"github.com/Faultbox/plyview/internal/logger"
	"github.com/Faultbox/plyview/pkg/formats"
)

// VertexStride is the size of one interleaved PLYVertex.
const VertexStride = int32(unsafe.Sizeof(formats.PLYVertex{}))

// VertexLayout is the pipeline layout for PLYVertex data:
// position at location 0, color at location 1.
var VertexLayout = PipelineDesc{
	Stride: VertexStride,
	Attributes: []VertexAttribute{
		{Location: 0, Components: 3, Offset: 0},
		{Location: 1, Components: 3, Offset: 12},
	},
}

// Dispatcher owns the device buffers for the loaded geometry and decides,
// once per frame, between an indexed triangle draw and a point draw.
type Dispatcher struct {
	device   Device
	pipeline Pipeline

	vertices     []formats.PLYVertex
	vertexBuffer Buffer
	indexBuffer  Buffer
	indexCount   int
}

// NewDispatcher creates a dispatcher bound to device. Call Init before use.
func NewDispatcher(device Device) *Dispatcher {
	return &Dispatcher{device: device}
}

// Init compiles the pipeline. Until it succeeds every frame is skipped.
func (d *Dispatcher) Init() error {
	pipeline, err := d.device.CreatePipeline(VertexLayout)
	if err != nil {
		return fmt.Errorf("creating pipeline: %w", err)
	}
	d.pipeline = pipeline
	logger.Debug("render pipeline created", zap.Uint32("pipeline", uint32(pipeline)))
	return nil
}

// Upload replaces the device buffers with new geometry. The new buffers
// are created first; if either fails, whatever was just created is
// released and the previous geometry stays in place. No vertex buffer is
// created for an empty vertex set and no index buffer for an empty index set.
func (d *Dispatcher) Upload(vertices []formats.PLYVertex, indices []uint32) error {
	var vertexBuffer, indexBuffer Buffer

	if len(vertices) > 0 {
		buf, err := d.device.CreateBuffer(VertexBuffer, VertexBytes(vertices))
		if err != nil {
			return fmt.Errorf("creating vertex buffer: %w", err)
		}
		vertexBuffer = buf
	}

	if len(indices) > 0 {
		buf, err := d.device.CreateBuffer(IndexBuffer, IndexBytes(indices))
		if err != nil {
			if vertexBuffer != 0 {
				d.device.ReleaseBuffer(vertexBuffer)
			}
			return fmt.Errorf("creating index buffer: %w", err)
		}
		indexBuffer = buf
	}

	d.release()
	d.vertices = vertices
	d.vertexBuffer = vertexBuffer
	d.indexBuffer = indexBuffer
	d.indexCount = len(indices)

	logger.Debug("geometry uploaded",
		zap.Int("vertices", len(vertices)),
		zap.Int("indices", len(indices)),
	)
	return nil
}

// Render builds the frame's uniforms and submits at most one draw.
// It returns false without error when the surface, pipeline or vertex
// buffer is missing.
func (d *Dispatcher) Render(cam *camera.OrbitCamera, aspect float32) (bool, error) {
	surface, ok := d.device.CurrentSurface()
	if !ok || d.pipeline == 0 || d.vertexBuffer == 0 {
		return false, nil
	}

	call := d.drawCall(BuildUniforms(d.vertices, cam, aspect))
	if err := d.device.SubmitDraw(surface, call); err != nil {
		return false, fmt.Errorf("submitting %s draw: %w", call.Primitive, err)
	}
	return true, nil
}

func (d *Dispatcher) drawCall(u Uniforms) DrawCall {
	call := DrawCall{
		Pipeline:     d.pipeline,
		VertexBuffer: d.vertexBuffer,
		Uniforms:     u,
	}
	if d.indexBuffer != 0 && d.indexCount > 0 {
		call.Primitive = PrimitiveTriangles
		call.IndexBuffer = d.indexBuffer
		call.Count = d.indexCount
	} else {
		call.Primitive = PrimitivePoints
		call.Count = len(d.vertices)
	}
	return call
}

// Vertices returns the geometry currently uploaded.
func (d *Dispatcher) Vertices() []formats.PLYVertex {
	return d.vertices
}

// IndexCount returns the number of uploaded indices.
func (d *Dispatcher) IndexCount() int {
	return d.indexCount
}

// Close releases all device buffers.
func (d *Dispatcher) Close() {
	d.release()
	d.vertices = nil
}

func (d *Dispatcher) release() {
	if d.vertexBuffer != 0 {
		d.device.ReleaseBuffer(d.vertexBuffer)
		d.vertexBuffer = 0
	}
	if d.indexBuffer != 0 {
		d.device.ReleaseBuffer(d.indexBuffer)
		d.indexBuffer = 0
	}
	d.indexCount = 0
}

// VertexBytes views vertices as raw bytes without copying.
func VertexBytes(vertices []formats.PLYVertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*int(VertexStride))
}

// IndexBytes views indices as raw bytes without copying.
func IndexBytes(indices []uint32) []byte {
	if len(indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*4)
}
