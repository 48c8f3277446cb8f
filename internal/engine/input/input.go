// Package input turns SDL2 events into map gestures.
//
// Mouse drags become pan gestures, the wheel becomes a pinch around the
// pointer, and short clicks become taps. The viewer feeds these straight
// into the map's gesture handlers.
package input

import (
	"math"

	"github.com/veandco/go-sdl2/sdl"
)

// Gesture event types.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventTap
	EventDoubleTap
	EventPan
	EventPinch
)

const (
	// clickSlopPx is how far the pointer may travel before a press stops
	// counting as a tap.
	clickSlopPx = 3.0

	// pinchPerNotch is the pinch scale produced by one wheel notch.
	pinchPerNotch = 1.25
)

// Event represents a processed gesture or host event.
type Event struct {
	Type EventType

	Key sdl.Scancode

	Width  int
	Height int

	// X, Y is the gesture position in window pixels.
	X, Y float64

	// DX, DY is the pan delta in pixels since the last event.
	DX, DY float64

	// Scale is the pinch factor; >1 zooms in.
	Scale float64
}

// Input handles all input processing.
type Input struct {
	events []Event

	dragging bool
	dragDist float64
	mouseX   float64
	mouseY   float64
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events and converts them to gesture events.
// Returns true if the host should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0] // Clear previous events

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			// Key repeat passes through so held arrow keys keep panning.
			if e.Type == sdl.KEYDOWN {
				i.events = append(i.events, Event{
					Type: EventKeyDown,
					Key:  e.Keysym.Scancode,
				})
			}

		case *sdl.MouseMotionEvent:
			i.mouseX, i.mouseY = float64(e.X), float64(e.Y)
			if i.dragging {
				dx, dy := float64(e.XRel), float64(e.YRel)
				i.dragDist += math.Abs(dx) + math.Abs(dy)
				i.events = append(i.events, Event{
					Type: EventPan,
					X:    i.mouseX,
					Y:    i.mouseY,
					DX:   dx,
					DY:   dy,
				})
			}

		case *sdl.MouseButtonEvent:
			if e.Button != sdl.BUTTON_LEFT {
				break
			}
			if e.Type == sdl.MOUSEBUTTONDOWN {
				i.dragging = true
				i.dragDist = 0
				i.mouseX, i.mouseY = float64(e.X), float64(e.Y)
			} else if e.Type == sdl.MOUSEBUTTONUP {
				i.dragging = false
				if i.dragDist <= clickSlopPx {
					kind := EventTap
					if e.Clicks >= 2 {
						kind = EventDoubleTap
					}
					i.events = append(i.events, Event{
						Type: kind,
						X:    float64(e.X),
						Y:    float64(e.Y),
					})
				}
			}

		case *sdl.MouseWheelEvent:
			notches := float64(e.Y)
			if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
				notches = -notches
			}
			if notches != 0 {
				i.events = append(i.events, Event{
					Type:  EventPinch,
					X:     i.mouseX,
					Y:     i.mouseY,
					Scale: math.Pow(pinchPerNotch, notches),
				})
			}
		}
	}

	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}
