// Package gldevice implements render.Device on OpenGL 4.1 core.
// Every method must be called on the thread that owns the GL context.
package gldevice

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/plyview/internal/engine/gldevice/shaders"
	"github.com/Faultbox/plyview/internal/engine/render"
	"github.com/Faultbox/plyview/internal/engine/shader"
	"github.com/Faultbox/plyview/internal/logger"
)

// ErrUnknownHandle is returned when a draw references a released or foreign handle.
var ErrUnknownHandle = errors.New("gldevice: unknown handle")

// SizeFunc reports the current drawable size in pixels.
type SizeFunc func() (width, height int)

// Options controls fixed-function state.
type Options struct {
	PointSize  float32
	ClearColor [4]float32
}

// Surface is the default framebuffer at a given size.
type Surface struct {
	Width, Height int
}

// Size implements render.Surface.
func (s Surface) Size() (int, int) {
	return s.Width, s.Height
}

type pipeline struct {
	program *shader.Program
	vao     uint32
	desc    render.PipelineDesc
}

// Device draws into the current GL context's default framebuffer.
type Device struct {
	size SizeFunc
	opts Options

	buffers   map[render.Buffer]render.BufferKind
	pipelines map[render.Pipeline]*pipeline
	nextPipe  render.Pipeline
}

// New loads GL function pointers and returns a device. A GL context must
// be current.
func New(size SizeFunc, opts Options) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl.Init failed: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	return &Device{
		size:      size,
		opts:      opts,
		buffers:   make(map[render.Buffer]render.BufferKind),
		pipelines: make(map[render.Pipeline]*pipeline),
	}, nil
}

func target(kind render.BufferKind) uint32 {
	if kind == render.IndexBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

// CreateBuffer implements render.Device.
func (d *Device) CreateBuffer(kind render.BufferKind, data []byte) (render.Buffer, error) {
	if len(data) == 0 {
		return 0, errors.New("creating buffer: empty data")
	}

	var id uint32
	gl.GenBuffers(1, &id)
	if id == 0 {
		return 0, errors.New("glGenBuffers returned no name")
	}

	t := target(kind)
	gl.BindBuffer(t, id)
	gl.BufferData(t, len(data), gl.Ptr(data), gl.STATIC_DRAW)
	gl.BindBuffer(t, 0)

	buf := render.Buffer(id)
	d.buffers[buf] = kind
	return buf, nil
}

// ReleaseBuffer implements render.Device.
func (d *Device) ReleaseBuffer(buf render.Buffer) {
	if _, ok := d.buffers[buf]; !ok {
		return
	}
	delete(d.buffers, buf)
	id := uint32(buf)
	gl.DeleteBuffers(1, &id)
}

// CreatePipeline implements render.Device.
func (d *Device) CreatePipeline(desc render.PipelineDesc) (render.Pipeline, error) {
	prog, err := shader.Compile(shaders.GeometryVertexShader, shaders.GeometryFragmentShader)
	if err != nil {
		return 0, fmt.Errorf("compiling geometry shader: %w", err)
	}

	p := &pipeline{program: prog, desc: desc}
	gl.GenVertexArrays(1, &p.vao)

	d.nextPipe++
	d.pipelines[d.nextPipe] = p

	logger.Debug("geometry pipeline compiled",
		zap.Uint32("program", prog.ID),
		zap.Int32("stride", desc.Stride),
	)
	return d.nextPipe, nil
}

// CurrentSurface implements render.Device. A zero-sized drawable, as with
// a minimized window, has no surface.
func (d *Device) CurrentSurface() (render.Surface, bool) {
	w, h := d.size()
	if w <= 0 || h <= 0 {
		return nil, false
	}
	return Surface{Width: w, Height: h}, true
}

// SubmitDraw implements render.Device. It clears the framebuffer and
// issues exactly one draw.
func (d *Device) SubmitDraw(surface render.Surface, call render.DrawCall) error {
	p, ok := d.pipelines[call.Pipeline]
	if !ok {
		return fmt.Errorf("%w: pipeline %d", ErrUnknownHandle, call.Pipeline)
	}
	if _, ok := d.buffers[call.VertexBuffer]; !ok {
		return fmt.Errorf("%w: vertex buffer %d", ErrUnknownHandle, call.VertexBuffer)
	}

	w, h := surface.Size()
	gl.Viewport(0, 0, int32(w), int32(h))
	c := d.opts.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	p.program.Use()
	u := call.Uniforms
	gl.Uniform3f(p.program.Uniform("uCenter"), u.Center.X, u.Center.Y, u.Center.Z)
	gl.Uniform1f(p.program.Uniform("uScale"), u.Scale)
	gl.UniformMatrix4fv(p.program.Uniform("uMVP"), 1, false, u.MVP.Ptr())
	gl.Uniform1f(p.program.Uniform("uPointSize"), d.opts.PointSize)

	gl.BindVertexArray(p.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(call.VertexBuffer))
	for _, attr := range p.desc.Attributes {
		gl.EnableVertexAttribArray(attr.Location)
		gl.VertexAttribPointerWithOffset(attr.Location, attr.Components, gl.FLOAT, false, p.desc.Stride, uintptr(attr.Offset))
	}

	if call.Indexed() {
		if _, ok := d.buffers[call.IndexBuffer]; !ok {
			gl.BindVertexArray(0)
			return fmt.Errorf("%w: index buffer %d", ErrUnknownHandle, call.IndexBuffer)
		}
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(call.IndexBuffer))
		gl.DrawElementsWithOffset(gl.TRIANGLES, int32(call.Count), gl.UNSIGNED_INT, 0)
	} else {
		gl.DrawArrays(gl.POINTS, 0, int32(call.Count))
	}

	gl.BindVertexArray(0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("GL error 0x%x after %s draw", code, call.Primitive)
	}
	return nil
}

// Clear fills the framebuffer with the clear color without drawing.
func (d *Device) Clear() {
	if w, h := d.size(); w > 0 && h > 0 {
		gl.Viewport(0, 0, int32(w), int32(h))
	}
	c := d.opts.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Close releases every pipeline and buffer still alive.
func (d *Device) Close() {
	for buf := range d.buffers {
		d.ReleaseBuffer(buf)
	}
	for id, p := range d.pipelines {
		gl.DeleteVertexArrays(1, &p.vao)
		p.program.Delete()
		delete(d.pipelines, id)
	}
	logger.Debug("GL device closed")
}
