// Package viewer ties PLY loading, the orbit camera and the render
// dispatcher together into a single session owned by the render thread.
package viewer

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/plyview/internal/engine/camera"
	"github.com/Faultbox/plyview/internal/engine/render"
	"github.com/Faultbox/plyview/internal/logger"
	"github.com/Faultbox/plyview/pkg/formats"
)

// Options configures a Session.
type Options struct {
	InitialDistance   float32
	MinDistance       float32
	RotateSensitivity float32

	// HeaderPrefix is the number of bytes scanned for the PLY header.
	HeaderPrefix int
}

// DefaultOptions returns the stock camera and loader settings.
func DefaultOptions() Options {
	return Options{
		InitialDistance:   camera.DefaultDistance,
		MinDistance:       camera.DefaultMinDistance,
		RotateSensitivity: camera.DefaultSensitivity,
		HeaderPrefix:      formats.DefaultPLYHeaderPrefix,
	}
}

// loadResult is what a background load hands back to the render thread.
type loadResult struct {
	ticket   uuid.UUID
	path     string
	geometry *formats.PLYGeometry
	err      error
}

// Session is the viewer state: camera, uploaded geometry and the redraw
// flag. All methods except Load must be called from the render thread.
type Session struct {
	camera     *camera.OrbitCamera
	dispatcher *render.Dispatcher
	prefix     int

	results chan loadResult
	wg      sync.WaitGroup

	// pending is the most recent ticket; older results are discarded.
	mu      sync.Mutex
	pending uuid.UUID
	closed  bool

	path  string
	dirty bool
	log   *zap.Logger
}

// NewSession creates a session drawing through device. The pipeline is
// created immediately; a failure there is returned and the session is
// unusable.
func NewSession(device render.Device, opts Options) (*Session, error) {
	cam := camera.NewOrbitCamera()
	if opts.InitialDistance > 0 {
		cam.Distance = opts.InitialDistance
	}
	if opts.MinDistance > 0 {
		cam.MinDistance = opts.MinDistance
	}
	if opts.RotateSensitivity > 0 {
		cam.Sensitivity = opts.RotateSensitivity
	}
	if cam.Distance < cam.MinDistance {
		cam.Distance = cam.MinDistance
	}

	dispatcher := render.NewDispatcher(device)
	if err := dispatcher.Init(); err != nil {
		return nil, err
	}

	return &Session{
		camera:     cam,
		dispatcher: dispatcher,
		prefix:     opts.HeaderPrefix,
		results:    make(chan loadResult, 1),
		dirty:      true,
		log:        logger.Named("viewer"),
	}, nil
}

// Camera returns the session camera.
func (s *Session) Camera() *camera.OrbitCamera {
	return s.camera
}

// Path returns the file whose geometry is currently uploaded.
func (s *Session) Path() string {
	return s.path
}

// Geometry returns the uploaded vertices and index count.
func (s *Session) Geometry() ([]formats.PLYVertex, int) {
	return s.dispatcher.Vertices(), s.dispatcher.IndexCount()
}

// Load starts parsing path on a background goroutine and returns the load
// ticket. The result is applied by a later Poll or Await on the render
// thread. A newer Load supersedes any load still in flight. After Close,
// Load does nothing and returns uuid.Nil.
func (s *Session) Load(path string) uuid.UUID {
	ticket := uuid.Must(uuid.NewV7())

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.log.Debug("ignoring load on closed session", zap.String("path", path))
		return uuid.Nil
	}
	s.pending = ticket
	s.wg.Add(1)
	s.mu.Unlock()

	s.log.Info("loading PLY file",
		zap.String("path", path),
		zap.Stringer("load", ticket),
	)

	go func() {
		defer s.wg.Done()
		geom, err := formats.ParsePLYFile(path, s.prefix)
		s.results <- loadResult{ticket: ticket, path: path, geometry: geom, err: err}
	}()
	return ticket
}

// Poll applies any finished load without blocking. It returns true if new
// geometry was uploaded.
func (s *Session) Poll() bool {
	applied := false
	for {
		select {
		case res, ok := <-s.results:
			if !ok {
				return applied
			}
			if s.apply(res) {
				applied = true
			}
		default:
			return applied
		}
	}
}

// Await blocks until one load result arrives or ctx is done, then applies
// it. It returns true if the result was uploaded.
func (s *Session) Await(ctx context.Context) (bool, error) {
	select {
	case res, ok := <-s.results:
		if !ok {
			return false, nil
		}
		return s.apply(res), nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// apply uploads a finished load. Failed and superseded loads leave the
// current geometry untouched.
func (s *Session) apply(res loadResult) bool {
	s.mu.Lock()
	current := res.ticket == s.pending
	s.mu.Unlock()

	log := s.log.With(zap.String("path", res.path), zap.Stringer("load", res.ticket))

	if !current {
		log.Debug("discarding superseded load")
		return false
	}
	if res.err != nil {
		log.Warn("PLY load failed", zap.Error(res.err))
		return false
	}

	geom := res.geometry
	if err := s.dispatcher.Upload(geom.Vertices, geom.Indices); err != nil {
		log.Error("geometry upload failed", zap.Error(err))
		return false
	}

	s.path = res.path
	s.dirty = true
	log.Info("PLY loaded",
		zap.String("format", geom.Header.Format.String()),
		zap.Int("vertices", len(geom.Vertices)),
		zap.Int("declared", geom.Header.VertexCount),
		zap.Int("triangles", geom.TriangleCount()),
	)
	return true
}

// Rotate orbits the camera and requests a redraw.
func (s *Session) Rotate(dx, dy float32) {
	s.camera.Rotate(dx, dy)
	s.dirty = true
}

// PanZoom moves the camera target and distance and requests a redraw.
func (s *Session) PanZoom(dx, dy, dz float32) {
	s.camera.PanZoom(dx, dy, dz)
	s.dirty = true
}

// RequestRedraw marks the session for drawing on the next frame.
func (s *Session) RequestRedraw() {
	s.dirty = true
}

// NeedsRedraw reports whether anything changed since the last Render.
func (s *Session) NeedsRedraw() bool {
	return s.dirty
}

// Render draws one frame at the given viewport aspect ratio and clears the
// redraw flag. Frames missing a surface, pipeline or geometry are skipped
// and reported as false.
func (s *Session) Render(aspect float32) bool {
	s.dirty = false

	drawn, err := s.dispatcher.Render(s.camera, aspect)
	if err != nil {
		s.log.Warn("frame dropped", zap.Error(err))
		return false
	}
	if !drawn {
		s.log.Debug("frame skipped")
	}
	return drawn
}

// Close waits for in-flight loads and releases device buffers. Calling it
// again is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	go func() {
		s.wg.Wait()
		close(s.results)
	}()
	for range s.results {
	}
	s.dispatcher.Close()
}
