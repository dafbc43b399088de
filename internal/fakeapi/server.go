// Package fakeapi is an in-process implementation of the todos REST service
// that the frontend consumes. It backs the client, page and web tests with
// a real HTTP round trip over an in-memory sqlite database.
package fakeapi

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/mrshanahan/core-notes/pkg/todos"
)

const todoLocalName = "todo"

// Request is one call the server received.
type Request struct {
	Method string
	Path   string
	Body   string
	Header http.Header
}

type Server struct {
	App *fiber.App
	DB  *sql.DB

	mu       sync.Mutex
	requests []Request
	failures map[string]int
}

func New() (*Server, error) {
	db, err := OpenDB(":memory:")
	if err != nil {
		return nil, fmt.Errorf("error opening todos database: %w", err)
	}

	s := &Server{
		App:      fiber.New(fiber.Config{DisableStartupMessage: true}),
		DB:       db,
		failures: map[string]int{},
	}
	s.App.Use(s.recordRequest)
	s.App.Route("/todos", func(todos fiber.Router) {
		todos.Get("/", s.ListTodos)
		todos.Post("/", s.CreateTodo)
		todos.Route("/:todoID", func(todo fiber.Router) {
			todo.Use(loadTodoFromRoute(todoLocalName, "todoID", db))
			todo.Put("/", s.UpdateTodo)
			todo.Patch("/favorite", s.ToggleFavorite)
			todo.Delete("/", s.DeleteTodo)
		})
	})
	return s, nil
}

// Handler exposes the app to net/http, e.g. for httptest.NewServer.
func (s *Server) Handler() http.HandlerFunc {
	return adaptor.FiberApp(s.App)
}

func (s *Server) Close() error {
	return s.DB.Close()
}

func (s *Server) Seed(list ...todos.Todo) error {
	for _, t := range list {
		if err := InsertTodo(s.DB, t); err != nil {
			return fmt.Errorf("error seeding todo %d: %w", t.ID, err)
		}
	}
	return nil
}

// Fail makes every following request matching method and path (including
// the query string) answer with status until Recover is called.
func (s *Server) Fail(method string, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = status
}

func (s *Server) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[string]int{}
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) recordRequest(c *fiber.Ctx) error {
	header := http.Header{}
	for k, vs := range c.GetReqHeaders() {
		for _, v := range vs {
			header.Add(k, v)
		}
	}
	req := Request{
		Method: c.Method(),
		Path:   c.OriginalURL(),
		Body:   string(c.Body()),
		Header: header,
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	status, fail := s.failures[req.Method+" "+req.Path]
	s.mu.Unlock()

	if fail {
		return c.SendStatus(status)
	}
	return c.Next()
}

func getTodoFromContext(c *fiber.Ctx) *todos.Todo {
	return c.Locals(todoLocalName).(*todos.Todo)
}

func (s *Server) ListTodos(c *fiber.Ctx) error {
	var favorited *bool
	if raw := c.Query("favorited"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			c.Status(fiber.StatusBadRequest)
			return c.SendString(fmt.Sprintf("invalid favorited filter: %s", raw))
		}
		favorited = &value
	}

	list, err := GetTodos(s.DB, favorited)
	if err != nil {
		slog.Error("failed to execute query to retrieve todos",
			"err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	return c.JSON(list)
}

func (s *Server) CreateTodo(c *fiber.Ctx) error {
	draft := todos.Draft{}
	if err := json.Unmarshal(c.Body(), &draft); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	todo, err := NewTodo(s.DB, draft)
	if err != nil {
		slog.Error("failed to create todo",
			"title", draft.Title,
			"err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	c.Status(fiber.StatusCreated)
	return c.JSON(todo)
}

func (s *Server) UpdateTodo(c *fiber.Ctx) error {
	existing := getTodoFromContext(c)

	patch := todos.Patch{}
	if err := json.Unmarshal(c.Body(), &patch); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := UpdateTodo(s.DB, existing.ID, patch); err != nil {
		slog.Error("failed to update todo",
			"id", existing.ID,
			"err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	updated, err := GetTodo(s.DB, existing.ID)
	if err != nil || updated == nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	return c.JSON(updated)
}

func (s *Server) ToggleFavorite(c *fiber.Ctx) error {
	existing := getTodoFromContext(c)
	if err := ToggleFavorite(s.DB, existing.ID); err != nil {
		slog.Error("failed to toggle favorite",
			"id", existing.ID,
			"err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	updated, err := GetTodo(s.DB, existing.ID)
	if err != nil || updated == nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	return c.JSON(updated)
}

func (s *Server) DeleteTodo(c *fiber.Ctx) error {
	id := getTodoFromContext(c).ID
	if err := DeleteTodo(s.DB, id); err != nil {
		slog.Error("failed to remove todo",
			"err", err,
			"id", id)
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func loadTodoFromRoute(localName string, param string, db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := c.Params(param)
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			c.Status(fiber.StatusBadRequest)
			return c.SendString("invalid request")
		}
		found, err := GetTodo(db, id)
		if err != nil {
			slog.Error("failed to execute query to retrieve todo",
				"id", id,
				"err", err)
			c.Status(fiber.StatusInternalServerError)
			return c.SendString("failed to load todo")
		}
		if found == nil {
			c.Status(fiber.StatusNotFound)
			return c.SendString(fmt.Sprintf("no todo with id: %d", id))
		}
		c.Locals(localName, found)
		return c.Next()
	}
}
