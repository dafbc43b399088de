// Package ui holds the notes page and its components as server-side state
// machines. Each browser session owns one Page; the web package turns
// requests into calls on it and renders its View.
package ui

import (
	"context"

	"github.com/mrshanahan/core-notes/pkg/todos"
)

// TodoService is the backend the components persist through.
// *client.Client implements it.
type TodoService interface {
	ListFavorited(ctx context.Context) ([]*todos.Todo, error)
	ListUnfavorited(ctx context.Context) ([]*todos.Todo, error)
	Create(ctx context.Context, draft todos.Draft) (*todos.Todo, error)
	Update(ctx context.Context, id int64, patch todos.Patch) (*todos.Todo, error)
	ToggleFavorite(ctx context.Context, id int64) (*todos.Todo, error)
	Delete(ctx context.Context, id int64) error
}
