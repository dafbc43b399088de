package web

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/mrshanahan/core-notes/internal/ui"
	"github.com/mrshanahan/core-notes/pkg/client"
	"github.com/mrshanahan/core-notes/pkg/todos"
)

var (
	SessionCookieName string = "core_notes_session"
	SessionLocalName  string = "session"
	TokenLocalName    string = "token"
)

// session is one browser's page. mu is held for a whole request, so the
// events of a session run one at a time.
type session struct {
	mu      sync.Mutex
	page    *ui.Page
	service *tokenService
}

func newSession(base *client.Client) *session {
	service := &tokenService{client: base}
	return &session{
		page:    ui.NewPage(service),
		service: service,
	}
}

// tokenService forwards the session's current access token to the backend.
type tokenService struct {
	client *client.Client
	token  string
}

func (s *tokenService) api() *client.Client {
	if s.token == "" {
		return s.client
	}
	return s.client.WithToken(s.token)
}

func (s *tokenService) ListFavorited(ctx context.Context) ([]*todos.Todo, error) {
	return s.api().ListFavorited(ctx)
}

func (s *tokenService) ListUnfavorited(ctx context.Context) ([]*todos.Todo, error) {
	return s.api().ListUnfavorited(ctx)
}

func (s *tokenService) Create(ctx context.Context, draft todos.Draft) (*todos.Todo, error) {
	return s.api().Create(ctx, draft)
}

func (s *tokenService) Update(ctx context.Context, id int64, patch todos.Patch) (*todos.Todo, error) {
	return s.api().Update(ctx, id, patch)
}

func (s *tokenService) ToggleFavorite(ctx context.Context, id int64) (*todos.Todo, error) {
	return s.api().ToggleFavorite(ctx, id)
}

func (s *tokenService) Delete(ctx context.Context, id int64) error {
	return s.api().Delete(ctx, id)
}

// loadSession finds or starts the caller's session and locks it for the
// rest of the request.
func (s *Server) loadSession(c *fiber.Ctx) error {
	id := c.Cookies(SessionCookieName)
	var sess *session
	if _, err := uuid.Parse(id); err == nil {
		sess, _ = s.sessions.Get(id)
	}
	if sess == nil {
		id = uuid.NewString()
		sess = newSession(s.client)
		s.sessions.Insert(id, sess)
		slog.Debug("started session", "sessions", s.sessions.Len())
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookieName,
			Value:    id,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if token, ok := c.Locals(TokenLocalName).(string); ok {
		sess.service.token = token
	}
	c.Locals(SessionLocalName, sess)
	return c.Next()
}

func getSessionFromContext(c *fiber.Ctx) *session {
	return c.Locals(SessionLocalName).(*session)
}
