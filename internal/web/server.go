// Package web serves the notes page over HTTP. Each browser session owns a
// ui.Page; user events arrive as form posts and are answered with a
// redirect back to the page.
package web

import (
	"errors"
	"html/template"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/mrshanahan/core-notes/internal/auth"
	"github.com/mrshanahan/core-notes/internal/cache"
	"github.com/mrshanahan/core-notes/internal/middleware"
	"github.com/mrshanahan/core-notes/internal/overlay"
	"github.com/mrshanahan/core-notes/internal/ui"
	"github.com/mrshanahan/core-notes/pkg/client"
)

var (
	DefaultSessionTTL  time.Duration = 30 * time.Minute
	DefaultMaxSessions int           = 1000
	CardLocalName      string        = "card"
)

type Options struct {
	Client      *client.Client
	SessionTTL  time.Duration
	MaxSessions int
	// Auth enables sign-in when set; every page route then requires a
	// token that Verifier accepts.
	Auth     *auth.Handlers
	Verifier auth.Verifier
	// AccessLog turns on the request logger.
	AccessLog bool
}

type Server struct {
	app       *fiber.App
	client    *client.Client
	sessions  *cache.TimedCache[*session]
	templates *template.Template
}

func New(opts Options) (*Server, error) {
	if opts.Client == nil {
		return nil, errors.New("a backend client is required")
	}
	if opts.Auth != nil && opts.Verifier == nil {
		return nil, errors.New("auth requires a token verifier")
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	maxSessions := opts.MaxSessions
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		client:    opts.Client,
		sessions:  cache.NewTimedCache[*session](ttl, maxSessions),
		templates: templates,
	}
	s.sessions.OnEvict(func(_ string, _ *session) {
		slog.Warn("session store full; evicted least recently used session", "max_sessions", maxSessions)
	})
	s.sessions.StartJanitor(ttl / 2)

	// Form values end up in session state that outlives the request.
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
	})
	app.Use(requestid.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	app.Use(recover.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	if opts.Auth != nil {
		opts.Auth.Register(app.Group("/auth"))
		app.Use(middleware.ValidateAccessToken(TokenLocalName, opts.Auth.TokenCookieName(), opts.Verifier, "/auth/login"))
	} else {
		slog.Warn("skipping registration of authentication-related endpoints")
	}
	app.Use(s.loadSession)

	app.Get("/", s.ShowPage)
	app.Post("/search", s.pointer("header", "search"), s.Search)
	app.Post("/refresh", s.pointer("header", "refresh"), s.Refresh)

	app.Route("/composer", func(composer fiber.Router) {
		composer.Post("/open", s.pointer(ui.ComposerOwner, "placeholder"), s.OpenComposer)
		composer.Post("/star", s.pointer(ui.ComposerOwner, "star"), s.StarDraft)
		composer.Post("/palette", s.pointer(ui.ComposerOwner, overlay.ElementToggle), s.ToggleComposerPalette)
		composer.Post("/color", s.pointer(ui.ComposerOwner, overlay.ElementOverlay), s.SelectDraftColor)
		composer.Post("/save", s.pointer(ui.ComposerOwner, "save"), s.SaveDraft)
		composer.Post("/cancel", s.pointer(ui.ComposerOwner, "cancel"), s.CancelDraft)
	})

	app.Route("/todos/:todoID", func(todo fiber.Router) {
		todo.Use(s.loadCardFromRoute(CardLocalName, "todoID"))
		todo.Post("/edit", s.cardPointer("body"), s.EditCard)
		todo.Post("/star", s.cardPointer("star"), s.StarCard)
		todo.Post("/palette", s.cardPointer(overlay.ElementToggle), s.ToggleCardPalette)
		todo.Post("/color", s.cardPointer(overlay.ElementOverlay), s.SelectCardColor)
		todo.Post("/save", s.cardPointer("save"), s.SaveCard)
		todo.Post("/cancel", s.cardPointer("cancel"), s.CancelCard)
		todo.Post("/delete", s.cardPointer("delete"), s.DeleteCard)
	})

	s.app = app
	return s, nil
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops accepting requests and releases the session store.
func (s *Server) Shutdown() error {
	err := s.app.Shutdown()
	s.sessions.Close()
	return err
}
