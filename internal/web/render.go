package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/mrshanahan/core-notes/internal/ui"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	// position is generated by the overlay package, never from user input.
	"position": func(css string) template.CSS {
		return template.CSS(css)
	},
}

func parseTemplates() (*template.Template, error) {
	t, err := template.New("page").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("error parsing templates: %w", err)
	}
	return t, nil
}

func (s *Server) render(c *fiber.Ctx, view ui.PageView) error {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "page.html", view); err != nil {
		slog.Error("failed to render page", "err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
