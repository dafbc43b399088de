// Package overlay manages floating popovers that escape their owner's
// layout box. A session has one Manager; at most one overlay is open in it.
package overlay

import (
	"fmt"
	"sync"
)

const (
	// MinSpaceAbove is the room above an anchor, inside its container,
	// below which an overlay always opens underneath.
	MinSpaceAbove = 120
	// Gap separates an overlay placed below from its anchor.
	Gap = 8
	// Height is the offset used for an overlay placed above its anchor.
	Height = 120
	ZIndex = 10000
)

type Side string

const (
	Top    Side = "top"
	Bottom Side = "bottom"
)

// Rect is a box in viewport coordinates.
type Rect struct {
	Top    float64
	Bottom float64
	Left   float64
	Width  float64
}

// Place picks the side of anchor an overlay opens on, given the container
// the anchor sits in.
func Place(anchor Rect, container Rect) Side {
	spaceAbove := anchor.Top - container.Top
	spaceBelow := container.Bottom - anchor.Bottom
	if spaceAbove < MinSpaceAbove || spaceBelow > spaceAbove {
		return Bottom
	}
	return Top
}

// Style is the absolute position of an overlay in document coordinates.
type Style struct {
	Left   float64
	Top    float64
	ZIndex int
}

func Position(side Side, anchor Rect, scrollY float64) Style {
	style := Style{
		Left:   anchor.Left + anchor.Width/2,
		ZIndex: ZIndex,
	}
	if side == Bottom {
		style.Top = anchor.Bottom + scrollY + Gap
	} else {
		style.Top = anchor.Top + scrollY - Height
	}
	return style
}

func (s Style) CSS() string {
	return fmt.Sprintf("position:absolute;left:%gpx;top:%gpx;transform:translateX(-50%%);z-index:%d",
		s.Left, s.Top, s.ZIndex)
}

// Elements a pointer can land on that belong to an open overlay's owner.
const (
	ElementOverlay = "overlay"
	ElementToggle  = "toggle"
)

// Target is what a pointer-down event landed on.
type Target struct {
	Owner   string
	Element string
}

// Request asks for an overlay owned by Owner. Anchor and ScrollY are only
// used for positioned overlays; an inline overlay leaves them zero.
type Request struct {
	Owner   string
	Side    Side
	Anchor  Rect
	ScrollY float64
}

type Manager struct {
	mu   sync.Mutex
	open *Handle
}

func NewManager() *Manager {
	return &Manager{}
}

// Open releases whatever overlay is open and opens a new one.
func (m *Manager) Open(req Request) *Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open != nil {
		m.open.released = true
	}
	h := &Handle{manager: m, req: req}
	m.open = h
	return h
}

// Current returns the open overlay, or nil.
func (m *Manager) Current() *Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// PointerDown closes the open overlay unless the pointer landed inside it
// or on its owner's toggle. It reports whether an overlay was closed.
func (m *Manager) PointerDown(target Target) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open == nil {
		return false
	}
	if target.Owner == m.open.req.Owner &&
		(target.Element == ElementOverlay || target.Element == ElementToggle) {
		return false
	}
	m.open.released = true
	m.open = nil
	return true
}

// Handle is a subscription to an open overlay. Release it when the owner
// closes the overlay or goes away.
type Handle struct {
	manager  *Manager
	req      Request
	released bool
}

func (h *Handle) Active() bool {
	if h == nil {
		return false
	}
	h.manager.mu.Lock()
	defer h.manager.mu.Unlock()
	return !h.released
}

func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.manager.mu.Lock()
	defer h.manager.mu.Unlock()
	h.released = true
	if h.manager.open == h {
		h.manager.open = nil
	}
}

func (h *Handle) Owner() string {
	return h.req.Owner
}

func (h *Handle) Side() Side {
	return h.req.Side
}

func (h *Handle) Style() Style {
	return Position(h.req.Side, h.req.Anchor, h.req.ScrollY)
}
