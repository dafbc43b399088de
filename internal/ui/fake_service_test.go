package ui

import (
	"context"
	"errors"
	"time"

	"github.com/mrshanahan/core-notes/pkg/todos"
)

var errBackend = errors.New("backend unavailable")

type call struct {
	Method string
	ID     int64
	Patch  todos.Patch
	Draft  todos.Draft
}

// fakeService is an in-memory TodoService that records every call.
type fakeService struct {
	store  []*todos.Todo
	nextID int64
	calls  []call
	fail   map[string]error
}

func newFakeService(seed ...todos.Todo) *fakeService {
	f := &fakeService{nextID: 100, fail: map[string]error{}}
	for _, t := range seed {
		t := t
		f.store = append(f.store, &t)
	}
	return f
}

func (f *fakeService) methods() []string {
	methods := []string{}
	for _, c := range f.calls {
		methods = append(methods, c.Method)
	}
	return methods
}

func (f *fakeService) find(id int64) *todos.Todo {
	for _, t := range f.store {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (f *fakeService) list(method string, favorited bool) ([]*todos.Todo, error) {
	f.calls = append(f.calls, call{Method: method})
	if err := f.fail[method]; err != nil {
		return nil, err
	}
	list := []*todos.Todo{}
	for _, t := range f.store {
		if t.Favorited == favorited {
			cp := *t
			list = append(list, &cp)
		}
	}
	return list, nil
}

func (f *fakeService) ListFavorited(ctx context.Context) ([]*todos.Todo, error) {
	return f.list("ListFavorited", true)
}

func (f *fakeService) ListUnfavorited(ctx context.Context) ([]*todos.Todo, error) {
	return f.list("ListUnfavorited", false)
}

func (f *fakeService) Create(ctx context.Context, draft todos.Draft) (*todos.Todo, error) {
	f.calls = append(f.calls, call{Method: "Create", Draft: draft})
	if err := f.fail["Create"]; err != nil {
		return nil, err
	}
	f.nextID++
	t := &todos.Todo{
		ID:          f.nextID,
		Title:       draft.Title,
		Description: draft.Description,
		Color:       draft.Color,
		Favorited:   draft.Favorited,
		CreatedAt:   time.Now(),
	}
	f.store = append(f.store, t)
	cp := *t
	return &cp, nil
}

func (f *fakeService) Update(ctx context.Context, id int64, patch todos.Patch) (*todos.Todo, error) {
	f.calls = append(f.calls, call{Method: "Update", ID: id, Patch: patch})
	if err := f.fail["Update"]; err != nil {
		return nil, err
	}
	t := f.find(id)
	if t == nil {
		return nil, errBackend
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Color != nil {
		t.Color = *patch.Color
	}
	if patch.Favorited != nil {
		t.Favorited = *patch.Favorited
	}
	cp := *t
	return &cp, nil
}

func (f *fakeService) ToggleFavorite(ctx context.Context, id int64) (*todos.Todo, error) {
	f.calls = append(f.calls, call{Method: "ToggleFavorite", ID: id})
	if err := f.fail["ToggleFavorite"]; err != nil {
		return nil, err
	}
	t := f.find(id)
	if t == nil {
		return nil, errBackend
	}
	t.Favorited = !t.Favorited
	cp := *t
	return &cp, nil
}

func (f *fakeService) Delete(ctx context.Context, id int64) error {
	f.calls = append(f.calls, call{Method: "Delete", ID: id})
	if err := f.fail["Delete"]; err != nil {
		return err
	}
	kept := []*todos.Todo{}
	for _, t := range f.store {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	f.store = kept
	return nil
}
