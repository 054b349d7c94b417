// Package rendertest provides a recording render.Device for headless tests.
package rendertest

import (
	"errors"
	"sync"

	"github.com/Faultbox/plyview/internal/engine/render"
)

// ErrInjected is returned by operations configured to fail.
var ErrInjected = errors.New("rendertest: injected failure")

// Surface is a fixed-size drawable.
type Surface struct {
	Width, Height int
}

// Size implements render.Surface.
func (s Surface) Size() (int, int) {
	return s.Width, s.Height
}

// Device records every buffer, pipeline and draw it is asked for.
type Device struct {
	mu sync.Mutex

	// Toggle to simulate an unavailable drawable.
	NoSurface bool

	FailBuffers      bool
	FailIndexBuffers bool
	FailPipeline     bool
	FailDraw     bool

	nextID   uint32
	buffers  map[render.Buffer][]byte
	kinds    map[render.Buffer]render.BufferKind
	released []render.Buffer
	draws    []render.DrawCall
}

// NewDevice creates a device whose surface is 800x600.
func NewDevice() *Device {
	return &Device{
		buffers: make(map[render.Buffer][]byte),
		kinds:   make(map[render.Buffer]render.BufferKind),
	}
}

// CreateBuffer implements render.Device. The data is copied.
func (d *Device) CreateBuffer(kind render.BufferKind, data []byte) (render.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.FailBuffers || (d.FailIndexBuffers && kind == render.IndexBuffer) {
		return 0, ErrInjected
	}
	d.nextID++
	buf := render.Buffer(d.nextID)
	d.buffers[buf] = append([]byte(nil), data...)
	d.kinds[buf] = kind
	return buf, nil
}

// ReleaseBuffer implements render.Device.
func (d *Device) ReleaseBuffer(buf render.Buffer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.buffers, buf)
	delete(d.kinds, buf)
	d.released = append(d.released, buf)
}

// CreatePipeline implements render.Device.
func (d *Device) CreatePipeline(desc render.PipelineDesc) (render.Pipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.FailPipeline {
		return 0, ErrInjected
	}
	d.nextID++
	return render.Pipeline(d.nextID), nil
}

// CurrentSurface implements render.Device.
func (d *Device) CurrentSurface() (render.Surface, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.NoSurface {
		return nil, false
	}
	return Surface{Width: 800, Height: 600}, true
}

// SubmitDraw implements render.Device.
func (d *Device) SubmitDraw(surface render.Surface, call render.DrawCall) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.FailDraw {
		return ErrInjected
	}
	d.draws = append(d.draws, call)
	return nil
}

// Draws returns all submitted draw calls.
func (d *Device) Draws() []render.DrawCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]render.DrawCall(nil), d.draws...)
}

// LiveBuffers returns the number of created buffers not yet released.
func (d *Device) LiveBuffers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.buffers)
}

// BufferData returns a copy of the bytes a live buffer was created with.
func (d *Device) BufferData(buf render.Buffer) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.buffers[buf]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Released returns the buffers released so far, in order.
func (d *Device) Released() []render.Buffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]render.Buffer(nil), d.released...)
}
