package ui

import (
	"context"
	"log/slog"

	"github.com/mrshanahan/core-notes/internal/overlay"
	"github.com/mrshanahan/core-notes/internal/palette"
	"github.com/mrshanahan/core-notes/pkg/todos"
)

const (
	ComposerOwner       = "composer"
	ComposerPlaceholder = "Take a note..."
)

// Composer is the collapsed-by-default panel that creates todos.
type Composer struct {
	service  TodoService
	overlays *overlay.Manager
	onCreate func(ctx context.Context, created *todos.Todo)

	composing bool
	draft     todos.Draft
	popover   *overlay.Handle
}

func NewComposer(service TodoService, overlays *overlay.Manager, onCreate func(ctx context.Context, created *todos.Todo)) *Composer {
	return &Composer{
		service:  service,
		overlays: overlays,
		onCreate: onCreate,
	}
}

func (c *Composer) Composing() bool {
	return c.composing
}

func (c *Composer) Draft() todos.Draft {
	return c.draft
}

func (c *Composer) PaletteOpen() bool {
	return c.composing && c.popover.Active()
}

func (c *Composer) Open() {
	c.composing = true
}

func (c *Composer) Input(title string, description string) {
	if !c.composing {
		return
	}
	c.draft.Title = title
	c.draft.Description = description
}

// ToggleStar flips the draft's favorited flag locally.
func (c *Composer) ToggleStar() {
	if !c.composing {
		return
	}
	c.draft.Favorited = !c.draft.Favorited
}

// TogglePalette opens the popover above the palette button, or closes it.
func (c *Composer) TogglePalette() {
	if !c.composing {
		return
	}
	if c.popover.Active() {
		c.closePalette()
		return
	}
	c.popover = c.overlays.Open(overlay.Request{Owner: ComposerOwner, Side: overlay.Top})
}

func (c *Composer) SelectColor(color string) bool {
	if !c.PaletteOpen() {
		return false
	}
	p := palette.Palette{OnSelect: func(selected string) {
		c.draft.Color = selected
	}}
	if !p.Select(color) {
		return false
	}
	c.closePalette()
	return true
}

// Save creates the draft as-is; empty fields are allowed. On failure the
// panel stays open with the draft intact.
func (c *Composer) Save(ctx context.Context) error {
	if !c.composing {
		return nil
	}
	created, err := c.service.Create(ctx, c.draft)
	if err != nil {
		slog.Error("failed to create todo",
			"title", c.draft.Title,
			"err", err)
		return err
	}
	if c.onCreate != nil {
		c.onCreate(ctx, created)
	}
	c.reset()
	return nil
}

func (c *Composer) Cancel() {
	c.reset()
}

func (c *Composer) reset() {
	c.composing = false
	c.draft = todos.Draft{}
	c.closePalette()
}

func (c *Composer) closePalette() {
	c.popover.Release()
	c.popover = nil
}

type ComposerView struct {
	Composing   bool
	Placeholder string
	Draft       todos.Draft
	Background  string
	PaletteOpen bool
	Swatches    []palette.Swatch
}

func (c *Composer) View() ComposerView {
	view := ComposerView{
		Composing:   c.composing,
		Placeholder: ComposerPlaceholder,
		Draft:       c.draft,
		Background:  todos.Background(c.draft.Color),
		PaletteOpen: c.PaletteOpen(),
	}
	if view.PaletteOpen {
		view.Swatches = palette.Palette{}.Swatches(c.draft.Color)
	}
	return view
}
