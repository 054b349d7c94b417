package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gopxl/mainthread/v2"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/plyview/internal/config"
	"github.com/Faultbox/plyview/internal/engine/gldevice"
	"github.com/Faultbox/plyview/internal/engine/input"
	"github.com/Faultbox/plyview/internal/engine/window"
	"github.com/Faultbox/plyview/internal/logger"
	"github.com/Faultbox/plyview/internal/viewer"
)

// idleWaitMs bounds how long an idle frame sleeps in the event queue, so
// finished background loads are picked up promptly.
const idleWaitMs = 16

// App owns the window, GL device and viewer session. Everything except
// Run itself executes on the main thread.
type App struct {
	cfg     *config.Config
	window  *window.Window
	device  *gldevice.Device
	session *viewer.Session
	input   *input.Input
	gesture *viewer.GestureMapper

	shownPath     string
	openRequested bool
}

func newApp(cfg *config.Config) (*App, error) {
	app := &App{
		cfg:     cfg,
		input:   input.New(),
		gesture: viewer.NewGestureMapper(),
	}
	app.gesture.Sensitivity = cfg.Viewer.GestureSensitivity
	app.input.OnGesture = func(g viewer.PanGesture) bool {
		return app.gesture.Handle(g, app.session)
	}

	var err error
	mainthread.Call(func() {
		err = app.init()
	})
	if err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) init() error {
	var err error
	a.window, err = window.New(window.Config{
		Title:      a.cfg.Window.Title,
		Width:      a.cfg.Window.Width,
		Height:     a.cfg.Window.Height,
		Fullscreen: a.cfg.Window.Fullscreen,
		VSync:      a.cfg.Window.VSync,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}

	a.device, err = gldevice.New(a.window.DrawableSize, gldevice.Options{
		PointSize:  a.cfg.Viewer.PointSize,
		ClearColor: a.cfg.Viewer.ClearColor,
	})
	if err != nil {
		return fmt.Errorf("failed to create GL device: %w", err)
	}

	a.session, err = viewer.NewSession(a.device, viewer.Options{
		InitialDistance:   a.cfg.Viewer.InitialDistance,
		MinDistance:       a.cfg.Viewer.MinDistance,
		RotateSensitivity: a.cfg.Viewer.RotateSensitivity,
		HeaderPrefix:      a.cfg.Loader.HeaderPrefixBytes,
	})
	if err != nil {
		return fmt.Errorf("failed to create viewer session: %w", err)
	}
	return nil
}

// Run processes frames until the window is closed.
func (a *App) Run() error {
	logger.Info("starting render loop")

	for {
		var quit bool
		mainthread.Call(func() {
			quit = a.frame()
		})
		if quit {
			return nil
		}

		if a.openRequested {
			a.openRequested = false
			if path := pickFile(); path != "" {
				a.session.Load(path)
			}
		}
	}
}

// frame handles input and draws only when something changed.
func (a *App) frame() bool {
	wait := idleWaitMs
	if a.session.NeedsRedraw() {
		wait = 0
	}
	if a.input.Update(wait) {
		return true
	}

	if a.input.IsKeyPressed(sdl.SCANCODE_ESCAPE) {
		return true
	}
	if a.input.IsKeyPressed(sdl.SCANCODE_O) {
		a.openRequested = true
	}
	for _, ev := range a.input.Events() {
		switch ev.Type {
		case input.EventRedraw:
			a.session.RequestRedraw()
		case input.EventDrop:
			a.session.Load(ev.Path)
		}
	}

	if a.session.Poll() {
		a.updateTitle()
	}

	if a.session.NeedsRedraw() {
		if !a.session.Render(a.window.Aspect()) {
			a.device.Clear()
		}
		a.window.SwapBuffers()
	}
	return false
}

func (a *App) updateTitle() {
	path := a.session.Path()
	if path == a.shownPath {
		return
	}
	a.shownPath = path

	vertices, indexCount := a.session.Geometry()
	kind := "points"
	if indexCount > 0 {
		kind = fmt.Sprintf("%d triangles", indexCount/3)
	}
	a.window.SetTitle(fmt.Sprintf("%s - %s (%d vertices, %s)",
		a.cfg.Window.Title, filepath.Base(path), len(vertices), kind))
}

// Close releases GPU resources and the window on the main thread.
func (a *App) Close() {
	mainthread.Call(func() {
		if a.session != nil {
			a.session.Close()
		}
		if a.device != nil {
			a.device.Close()
		}
		if a.window != nil {
			a.window.Close()
		}
	})
}

// pickFile shows a native open dialog. Cocoa requires it on the main thread.
func pickFile() string {
	var (
		path string
		err  error
	)
	mainthread.Call(func() {
		path, err = dialog.File().
			Filter("PLY Files", "ply").
			Filter("All Files", "*").
			Title("Open PLY File").
			Load()
	})
	if err != nil {
		if !errors.Is(err, dialog.ErrCancelled) {
			logger.Warn("file dialog failed", zap.Error(err))
		}
		return ""
	}
	return path
}
