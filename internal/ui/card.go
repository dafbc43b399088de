package ui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mrshanahan/core-notes/internal/overlay"
	"github.com/mrshanahan/core-notes/internal/palette"
	"github.com/mrshanahan/core-notes/pkg/todos"
)

// CardListener receives the outcome of a card's successful mutations.
type CardListener interface {
	OnToggleFavorite(ctx context.Context, id int64, favorited bool)
	OnUpdate(ctx context.Context, id int64, patch todos.Patch)
	OnDelete(ctx context.Context, id int64)
}

// Buffer is the edit-mode draft of a card.
type Buffer struct {
	Title       string
	Description string
	Color       string
}

// Card renders one persisted todo and edits it in place.
//
// A card is viewing until its body is clicked, then editing until Cancel or
// a successful Save or Delete. The color popover can only be open while
// editing. Failed API calls are logged and leave the card as it was.
type Card struct {
	todo     todos.Todo
	service  TodoService
	listener CardListener
	overlays *overlay.Manager

	editing bool
	buffer  Buffer
	popover *overlay.Handle
}

func NewCard(todo todos.Todo, service TodoService, listener CardListener, overlays *overlay.Manager) *Card {
	return &Card{
		todo:     todo,
		service:  service,
		listener: listener,
		overlays: overlays,
	}
}

func (c *Card) ID() int64 {
	return c.todo.ID
}

// Todo returns the todo as last supplied by the page.
func (c *Card) Todo() todos.Todo {
	return c.todo
}

func (c *Card) Owner() string {
	return CardOwner(c.todo.ID)
}

func CardOwner(id int64) string {
	return fmt.Sprintf("card:%d", id)
}

func (c *Card) SetTodo(todo todos.Todo) {
	c.todo = todo
}

func (c *Card) Editing() bool {
	return c.editing
}

func (c *Card) Buffer() Buffer {
	return c.buffer
}

func (c *Card) PaletteOpen() bool {
	return c.editing && c.popover.Active()
}

// Click enters edit mode, seeding the buffer from the current todo.
func (c *Card) Click() {
	if c.editing {
		return
	}
	c.editing = true
	c.buffer = Buffer{
		Title:       c.todo.Title,
		Description: c.todo.Description,
		Color:       c.todo.Color,
	}
}

func (c *Card) Input(title string, description string) {
	if !c.editing {
		return
	}
	c.buffer.Title = title
	c.buffer.Description = description
}

// Star toggles the favorite flag on the backend. The displayed flag only
// changes once the page hands the card a refreshed todo.
func (c *Card) Star(ctx context.Context) error {
	updated, err := c.service.ToggleFavorite(ctx, c.todo.ID)
	if err != nil {
		slog.Error("failed to toggle favorite",
			"id", c.todo.ID,
			"err", err)
		return err
	}
	c.listener.OnToggleFavorite(ctx, c.todo.ID, updated.Favorited)
	return nil
}

func (c *Card) Save(ctx context.Context) error {
	if !c.editing {
		return nil
	}
	id := c.todo.ID
	patch := todos.Patch{
		Title:       todos.String(c.buffer.Title),
		Description: todos.String(c.buffer.Description),
		Color:       todos.String(c.buffer.Color),
	}
	if _, err := c.service.Update(ctx, id, patch); err != nil {
		slog.Error("failed to update todo",
			"id", id,
			"err", err)
		return err
	}
	c.listener.OnUpdate(ctx, id, patch)
	c.editing = false
	c.closePalette()
	return nil
}

// Cancel discards the buffer without calling the backend.
func (c *Card) Cancel() {
	c.editing = false
	c.buffer = Buffer{}
	c.closePalette()
}

func (c *Card) Delete(ctx context.Context) error {
	id := c.todo.ID
	if err := c.service.Delete(ctx, id); err != nil {
		slog.Error("failed to delete todo",
			"id", id,
			"err", err)
		return err
	}
	c.listener.OnDelete(ctx, id)
	c.editing = false
	c.closePalette()
	return nil
}

// TogglePalette opens the color popover above or below the palette button,
// whichever side has more room inside the card, or closes it if open.
func (c *Card) TogglePalette(button overlay.Rect, card overlay.Rect, scrollY float64) {
	if !c.editing {
		return
	}
	if c.popover.Active() {
		c.closePalette()
		return
	}
	c.popover = c.overlays.Open(overlay.Request{
		Owner:   c.Owner(),
		Side:    overlay.Place(button, card),
		Anchor:  button,
		ScrollY: scrollY,
	})
}

// SelectColor writes color into the buffer and closes the popover. It does
// not save. It reports false when the popover is closed or the color is not
// in the palette.
func (c *Card) SelectColor(color string) bool {
	if !c.PaletteOpen() {
		return false
	}
	p := palette.Palette{OnSelect: func(selected string) {
		c.buffer.Color = selected
	}}
	if !p.Select(color) {
		return false
	}
	c.closePalette()
	return true
}

// Close releases anything the card holds outside itself.
func (c *Card) Close() {
	c.closePalette()
}

func (c *Card) closePalette() {
	c.popover.Release()
	c.popover = nil
}

type CardView struct {
	ID          int64
	Title       string
	Description string
	Favorited   bool
	Background  string
	Editing     bool
	Buffer      Buffer
	PaletteOpen bool
}

func (c *Card) View() CardView {
	background := c.todo.Background()
	if c.editing {
		background = todos.Background(c.buffer.Color)
	}
	return CardView{
		ID:          c.todo.ID,
		Title:       c.todo.Title,
		Description: c.todo.Description,
		Favorited:   c.todo.Favorited,
		Background:  background,
		Editing:     c.editing,
		Buffer:      c.buffer,
		PaletteOpen: c.PaletteOpen(),
	}
}

// PopoverView is a card's color popover rendered at the top level of the page.
type PopoverView struct {
	TodoID   int64
	Side     overlay.Side
	Style    string
	Swatches []palette.Swatch
}

func (c *Card) popoverView() *PopoverView {
	if !c.PaletteOpen() {
		return nil
	}
	return &PopoverView{
		TodoID:   c.todo.ID,
		Side:     c.popover.Side(),
		Style:    c.popover.Style().CSS(),
		Swatches: palette.Palette{}.Swatches(c.buffer.Color),
	}
}
