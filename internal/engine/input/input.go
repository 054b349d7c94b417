// Package input polls SDL2 events and turns them into viewer events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/plyview/internal/viewer"
)

// EventType identifies a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventRedraw
	EventKeyDown
	EventDrop
)

// Event represents a processed input event.
type Event struct {
	Type EventType
	Key  sdl.Scancode
	Path string // EventDrop
}

// Input handles all input processing.
type Input struct {
	// OnGesture receives pointer gestures as they are produced. Returning
	// true consumes the accumulated translation.
	OnGesture func(viewer.PanGesture) bool

	events  []Event
	pointer viewer.PointerGestures
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update drains pending SDL events, waiting up to timeoutMs for the first
// one. A zero timeout never blocks. Returns true if the viewer should quit.
func (i *Input) Update(timeoutMs int) bool {
	i.events = i.events[:0]

	var event sdl.Event
	if timeoutMs > 0 {
		event = sdl.WaitEventTimeout(timeoutMs)
	} else {
		event = sdl.PollEvent()
	}

	for ; event != nil; event = sdl.PollEvent() {
		if i.handle(event) {
			return true
		}
	}
	return false
}

func (i *Input) handle(event sdl.Event) bool {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.events = append(i.events, Event{Type: EventQuit})
		return true

	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED,
			sdl.WINDOWEVENT_EXPOSED, sdl.WINDOWEVENT_RESTORED:
			i.events = append(i.events, Event{Type: EventRedraw})
		}

	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
			i.events = append(i.events, Event{
				Type: EventKeyDown,
				Key:  e.Keysym.Scancode,
			})
		}

	case *sdl.MouseButtonEvent:
		button := pointerButton(e.Button)
		if e.Type == sdl.MOUSEBUTTONDOWN {
			i.gestures(i.pointer.Press(button, float32(e.X), float32(e.Y)))
		} else if e.Type == sdl.MOUSEBUTTONUP {
			i.gestures(i.pointer.Release(button))
		}

	case *sdl.MouseMotionEvent:
		i.gestures(i.pointer.Move(float32(e.X), float32(e.Y)))

	case *sdl.MouseWheelEvent:
		notches := float32(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			notches = -notches
		}
		i.gestures(i.pointer.Wheel(notches))

	case *sdl.DropEvent:
		if e.Type == sdl.DROPFILE && e.File != "" {
			i.events = append(i.events, Event{Type: EventDrop, Path: e.File})
		}
	}
	return false
}

func (i *Input) gestures(gs []viewer.PanGesture) {
	if i.OnGesture == nil {
		return
	}
	for _, g := range gs {
		if i.OnGesture(g) {
			i.pointer.ResetTranslation()
		}
	}
}

func pointerButton(b uint8) int {
	switch b {
	case sdl.BUTTON_LEFT:
		return viewer.PointerPrimary
	case sdl.BUTTON_MIDDLE:
		return viewer.PointerMiddle
	case sdl.BUTTON_RIGHT:
		return viewer.PointerSecondary
	default:
		return 0
	}
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this update.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}
