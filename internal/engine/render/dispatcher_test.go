package render_test

import (
	"encoding/binary"
	gomath "math"
	"testing"
	"unsafe"

	"github.com/Faultbox/plyview/internal/engine/camera"
	"github.com/Faultbox/plyview/internal/engine/render"
	"github.com/Faultbox/plyview/internal/engine/render/rendertest"
	"github.com/Faultbox/plyview/pkg/formats"
)

func newDispatcher(t *testing.T) (*render.Dispatcher, *rendertest.Device) {
	t.Helper()
	dev := rendertest.NewDevice()
	d := render.NewDispatcher(dev)
	if err := d.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return d, dev
}

func TestVertexStride(t *testing.T) {
	if render.VertexStride != 24 {
		t.Errorf("expected 24-byte stride, got %d", render.VertexStride)
	}
	if int(render.VertexStride) != int(unsafe.Sizeof(formats.PLYVertex{})) {
		t.Error("stride does not match PLYVertex size")
	}
}

func TestRender_PointCloudFallback(t *testing.T) {
	d, dev := newDispatcher(t)
	if err := d.Upload(cubeCorners(), nil); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	ok, err := d.Render(camera.NewOrbitCamera(), 1)
	if err != nil || !ok {
		t.Fatalf("expected a draw, got ok=%v err=%v", ok, err)
	}

	draws := dev.Draws()
	if len(draws) != 1 {
		t.Fatalf("expected 1 draw, got %d", len(draws))
	}
	if draws[0].Primitive != render.PrimitivePoints {
		t.Errorf("expected point draw, got %s", draws[0].Primitive)
	}
	if draws[0].Indexed() {
		t.Error("point draw should not be indexed")
	}
	if draws[0].Count != 8 {
		t.Errorf("expected 8 points, got %d", draws[0].Count)
	}
}

func TestRender_IndexedTriangles(t *testing.T) {
	d, dev := newDispatcher(t)
	indices := []uint32{0, 1, 2, 0, 2, 3}
	if err := d.Upload(cubeCorners(), indices); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if _, err := d.Render(camera.NewOrbitCamera(), 1); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	draws := dev.Draws()
	if len(draws) != 1 {
		t.Fatalf("expected 1 draw, got %d", len(draws))
	}
	call := draws[0]
	if call.Primitive != render.PrimitiveTriangles || !call.Indexed() {
		t.Errorf("expected indexed triangle draw, got %+v", call)
	}
	if call.Count != len(indices) {
		t.Errorf("expected %d indices, got %d", len(indices), call.Count)
	}
	if call.Uniforms.Scale != 0.5 {
		t.Errorf("expected scale 0.5, got %v", call.Uniforms.Scale)
	}

	data, ok := dev.BufferData(call.IndexBuffer)
	if !ok {
		t.Fatal("index buffer not live")
	}
	if got := binary.LittleEndian.Uint32(data[8:]); got != 2 {
		t.Errorf("expected third index 2, got %d", got)
	}
}

func TestRender_SkipsWithoutPreconditions(t *testing.T) {
	cam := camera.NewOrbitCamera()

	t.Run("no vertex buffer", func(t *testing.T) {
		d, dev := newDispatcher(t)
		ok, err := d.Render(cam, 1)
		if ok || err != nil {
			t.Errorf("expected silent skip, got ok=%v err=%v", ok, err)
		}
		if len(dev.Draws()) != 0 {
			t.Error("expected no draws")
		}
	})

	t.Run("no surface", func(t *testing.T) {
		d, dev := newDispatcher(t)
		d.Upload(cubeCorners(), nil)
		dev.NoSurface = true
		ok, err := d.Render(cam, 1)
		if ok || err != nil {
			t.Errorf("expected silent skip, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("no pipeline", func(t *testing.T) {
		dev := rendertest.NewDevice()
		d := render.NewDispatcher(dev)
		d.Upload(cubeCorners(), nil)
		ok, err := d.Render(cam, 1)
		if ok || err != nil {
			t.Errorf("expected silent skip, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("empty geometry", func(t *testing.T) {
		d, dev := newDispatcher(t)
		d.Upload(nil, nil)
		if ok, _ := d.Render(cam, 1); ok {
			t.Error("expected no draw for empty geometry")
		}
		if dev.LiveBuffers() != 0 {
			t.Errorf("expected no buffers, got %d", dev.LiveBuffers())
		}
	})
}

func TestRender_DegenerateUniformsPropagate(t *testing.T) {
	d, dev := newDispatcher(t)
	d.Upload([]formats.PLYVertex{vertexAt(1, 1, 1)}, nil)

	if ok, err := d.Render(camera.NewOrbitCamera(), 1); !ok || err != nil {
		t.Fatalf("expected a draw, got ok=%v err=%v", ok, err)
	}
	if s := dev.Draws()[0].Uniforms.Scale; !gomath.IsInf(float64(s), 1) {
		t.Errorf("expected +Inf scale to reach the device, got %v", s)
	}
}

func TestRender_SubmitError(t *testing.T) {
	d, dev := newDispatcher(t)
	d.Upload(cubeCorners(), nil)
	dev.FailDraw = true

	if _, err := d.Render(camera.NewOrbitCamera(), 1); err == nil {
		t.Error("expected submit error")
	}
}

func TestInit_PipelineError(t *testing.T) {
	dev := rendertest.NewDevice()
	dev.FailPipeline = true
	if err := render.NewDispatcher(dev).Init(); err == nil {
		t.Error("expected pipeline error")
	}
}

func TestUpload_ReplacesBuffers(t *testing.T) {
	d, dev := newDispatcher(t)

	d.Upload(cubeCorners(), []uint32{0, 1, 2})
	if dev.LiveBuffers() != 2 {
		t.Fatalf("expected 2 live buffers, got %d", dev.LiveBuffers())
	}

	// A point cloud upload must drop the stale index buffer.
	d.Upload(cubeCorners()[:3], nil)
	if dev.LiveBuffers() != 1 {
		t.Errorf("expected 1 live buffer, got %d", dev.LiveBuffers())
	}
	if len(dev.Released()) != 2 {
		t.Errorf("expected 2 released buffers, got %d", len(dev.Released()))
	}

	d.Render(camera.NewOrbitCamera(), 1)
	draws := dev.Draws()
	if draws[len(draws)-1].Primitive != render.PrimitivePoints {
		t.Error("expected point draw after replacing mesh with points")
	}

	d.Close()
	if dev.LiveBuffers() != 0 {
		t.Errorf("expected no live buffers after Close, got %d", dev.LiveBuffers())
	}
}

func TestUpload_BufferError(t *testing.T) {
	d, dev := newDispatcher(t)
	dev.FailBuffers = true
	if err := d.Upload(cubeCorners(), nil); err == nil {
		t.Error("expected buffer error")
	}
}

func TestUpload_IndexBufferErrorKeepsGeometry(t *testing.T) {
	d, dev := newDispatcher(t)
	cube := cubeCorners()
	if err := d.Upload(cube, []uint32{0, 1, 2, 0, 2, 3}); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	dev.FailIndexBuffers = true
	quad := cube[:4]
	if err := d.Upload(quad, []uint32{0, 1, 2, 0, 2, 3}); err == nil {
		t.Fatal("expected index buffer error")
	}

	if dev.LiveBuffers() != 2 {
		t.Errorf("expected the original 2 buffers to stay live, got %d", dev.LiveBuffers())
	}
	if len(d.Vertices()) != 8 || d.IndexCount() != 6 {
		t.Errorf("expected 8 vertices and 6 indices, got %d and %d", len(d.Vertices()), d.IndexCount())
	}

	d.Render(camera.NewOrbitCamera(), 1)
	draws := dev.Draws()
	if len(draws) != 1 {
		t.Fatalf("expected 1 draw, got %d", len(draws))
	}
	if draws[0].Primitive != render.PrimitiveTriangles || draws[0].Count != 6 {
		t.Errorf("expected the previous mesh to draw, got %s draw of %d", draws[0].Primitive, draws[0].Count)
	}
}

func TestUpload_VertexBufferErrorKeepsGeometry(t *testing.T) {
	d, dev := newDispatcher(t)
	if err := d.Upload(cubeCorners(), nil); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	dev.FailBuffers = true
	if err := d.Upload(cubeCorners()[:2], nil); err == nil {
		t.Fatal("expected vertex buffer error")
	}
	dev.FailBuffers = false

	if dev.LiveBuffers() != 1 || len(dev.Released()) != 0 {
		t.Errorf("expected the original buffer untouched, live=%d released=%d", dev.LiveBuffers(), len(dev.Released()))
	}
	if len(d.Vertices()) != 8 {
		t.Errorf("expected 8 vertices to remain, got %d", len(d.Vertices()))
	}
	if ok, _ := d.Render(camera.NewOrbitCamera(), 1); !ok {
		t.Error("expected the previous geometry to keep drawing")
	}
}

func TestBufferDataIsCopy(t *testing.T) {
	d, dev := newDispatcher(t)
	d.Upload(cubeCorners(), []uint32{0, 1, 2})
	d.Render(camera.NewOrbitCamera(), 1)

	buf := dev.Draws()[0].IndexBuffer
	data, _ := dev.BufferData(buf)
	data[0] = 0xff

	again, _ := dev.BufferData(buf)
	if again[0] != 0 {
		t.Error("expected BufferData to return an independent copy")
	}
}

func TestVertexBytes(t *testing.T) {
	vertices := []formats.PLYVertex{{
		Position: [3]float32{1, 2, 3},
		Color:    [3]float32{4, 5, 6},
	}}
	b := render.VertexBytes(vertices)
	if len(b) != 24 {
		t.Fatalf("expected 24 bytes, got %d", len(b))
	}
	if got := gomath.Float32frombits(binary.LittleEndian.Uint32(b[12:])); got != 4 {
		t.Errorf("expected red at offset 12, got %v", got)
	}
	if render.VertexBytes(nil) != nil || render.IndexBytes(nil) != nil {
		t.Error("expected nil bytes for empty input")
	}
}
