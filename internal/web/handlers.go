package web

import (
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/mrshanahan/core-notes/internal/overlay"
	"github.com/mrshanahan/core-notes/internal/palette"
	"github.com/mrshanahan/core-notes/internal/ui"
)

// pointer reports a pointer-down on owner's element to the overlay manager
// before the event runs.
func (s *Server) pointer(owner string, element string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		getSessionFromContext(c).page.Overlays().PointerDown(overlay.Target{Owner: owner, Element: element})
		return c.Next()
	}
}

func (s *Server) cardPointer(element string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		card := getCardFromContext(c)
		getSessionFromContext(c).page.Overlays().PointerDown(overlay.Target{Owner: card.Owner(), Element: element})
		return c.Next()
	}
}

func (s *Server) loadCardFromRoute(localName string, param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := c.Params(param)
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			c.Status(fiber.StatusBadRequest)
			return c.SendString("invalid request")
		}
		page := getSessionFromContext(c).page
		if !page.Loaded() {
			page.Load(c.UserContext())
		}
		card, ok := page.Card(id)
		if !ok {
			c.Status(fiber.StatusNotFound)
			return c.SendString(fmt.Sprintf("no todo with id: %d", id))
		}
		c.Locals(localName, card)
		return c.Next()
	}
}

func getCardFromContext(c *fiber.Ctx) *ui.Card {
	return c.Locals(CardLocalName).(*ui.Card)
}

// backToPage answers an event with a redirect to the page, keeping the
// search term in the URL.
func backToPage(c *fiber.Ctx) error {
	target := "/"
	if term := getSessionFromContext(c).page.Search(); term != "" {
		target += "?q=" + url.QueryEscape(term)
	}
	return c.Redirect(target, fiber.StatusSeeOther)
}

// formInput returns the title and description fields, and whether the form
// carried them at all.
func formInput(c *fiber.Ctx) (string, string, bool) {
	args := c.Request().PostArgs()
	if !args.Has("title") && !args.Has("description") {
		return "", "", false
	}
	return c.FormValue("title"), c.FormValue("description"), true
}

func formFloat(c *fiber.Ctx, name string) float64 {
	v, err := strconv.ParseFloat(c.FormValue(name), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func invalidColor(c *fiber.Ctx, color string) error {
	c.Status(fiber.StatusBadRequest)
	return c.SendString(fmt.Sprintf("invalid color: %q", color))
}

func (s *Server) ShowPage(c *fiber.Ctx) error {
	page := getSessionFromContext(c).page
	page.SetSearch(c.Query("q"))
	if !page.Loaded() {
		page.Load(c.UserContext())
	}
	return s.render(c, page.View())
}

func (s *Server) Search(c *fiber.Ctx) error {
	getSessionFromContext(c).page.Header().Change(c.FormValue("q"))
	return backToPage(c)
}

func (s *Server) Refresh(c *fiber.Ctx) error {
	getSessionFromContext(c).page.Load(c.UserContext())
	return backToPage(c)
}

// Composer events

func (s *Server) OpenComposer(c *fiber.Ctx) error {
	getSessionFromContext(c).page.Composer().Open()
	return backToPage(c)
}

func (s *Server) StarDraft(c *fiber.Ctx) error {
	composer := getSessionFromContext(c).page.Composer()
	if title, description, ok := formInput(c); ok {
		composer.Input(title, description)
	}
	composer.ToggleStar()
	return backToPage(c)
}

func (s *Server) ToggleComposerPalette(c *fiber.Ctx) error {
	composer := getSessionFromContext(c).page.Composer()
	if title, description, ok := formInput(c); ok {
		composer.Input(title, description)
	}
	composer.TogglePalette()
	return backToPage(c)
}

func (s *Server) SelectDraftColor(c *fiber.Ctx) error {
	color := c.FormValue("color")
	if !palette.Contains(color) {
		return invalidColor(c, color)
	}
	getSessionFromContext(c).page.Composer().SelectColor(color)
	return backToPage(c)
}

func (s *Server) SaveDraft(c *fiber.Ctx) error {
	composer := getSessionFromContext(c).page.Composer()
	if title, description, ok := formInput(c); ok {
		composer.Input(title, description)
	}
	composer.Save(c.UserContext())
	return backToPage(c)
}

func (s *Server) CancelDraft(c *fiber.Ctx) error {
	getSessionFromContext(c).page.Composer().Cancel()
	return backToPage(c)
}

// Card events

func (s *Server) EditCard(c *fiber.Ctx) error {
	getCardFromContext(c).Click()
	return backToPage(c)
}

func (s *Server) StarCard(c *fiber.Ctx) error {
	getCardFromContext(c).Star(c.UserContext())
	return backToPage(c)
}

func (s *Server) ToggleCardPalette(c *fiber.Ctx) error {
	card := getCardFromContext(c)
	if title, description, ok := formInput(c); ok {
		card.Input(title, description)
	}
	anchor := overlay.Rect{
		Top:    formFloat(c, "anchor_top"),
		Bottom: formFloat(c, "anchor_bottom"),
		Left:   formFloat(c, "anchor_left"),
		Width:  formFloat(c, "anchor_width"),
	}
	container := overlay.Rect{
		Top:    formFloat(c, "card_top"),
		Bottom: formFloat(c, "card_bottom"),
	}
	card.TogglePalette(anchor, container, formFloat(c, "scroll_y"))
	return backToPage(c)
}

func (s *Server) SelectCardColor(c *fiber.Ctx) error {
	color := c.FormValue("color")
	if !palette.Contains(color) {
		return invalidColor(c, color)
	}
	getCardFromContext(c).SelectColor(color)
	return backToPage(c)
}

func (s *Server) SaveCard(c *fiber.Ctx) error {
	card := getCardFromContext(c)
	if title, description, ok := formInput(c); ok {
		card.Input(title, description)
	}
	card.Save(c.UserContext())
	return backToPage(c)
}

func (s *Server) CancelCard(c *fiber.Ctx) error {
	getCardFromContext(c).Cancel()
	return backToPage(c)
}

func (s *Server) DeleteCard(c *fiber.Ctx) error {
	card := getCardFromContext(c)
	if err := card.Delete(c.UserContext()); err == nil {
		slog.Debug("deleted todo", "id", card.ID())
	}
	return backToPage(c)
}
