package ui

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/mrshanahan/core-notes/internal/overlay"
	"github.com/mrshanahan/core-notes/internal/utils"
	"github.com/mrshanahan/core-notes/pkg/todos"
)

const (
	FavoritedSectionTitle = "Favorited"
	OthersSectionTitle    = "Others"
)

// Page owns the two todo lists and the search term and composes the header,
// the composer and one card per todo.
//
// Every mutation is followed by a refetch of both lists; delete also drops
// the todo locally first so it disappears even when the refetch fails.
type Page struct {
	service  TodoService
	overlays *overlay.Manager

	loaded    bool
	favorited []*todos.Todo
	others    []*todos.Todo
	search    string

	cards    map[int64]*Card
	composer *Composer
}

func NewPage(service TodoService) *Page {
	p := &Page{
		service:   service,
		overlays:  overlay.NewManager(),
		favorited: []*todos.Todo{},
		others:    []*todos.Todo{},
		cards:     map[int64]*Card{},
	}
	p.composer = NewComposer(service, p.overlays, p.onCreate)
	return p
}

func (p *Page) Overlays() *overlay.Manager {
	return p.overlays
}

func (p *Page) Composer() *Composer {
	return p.composer
}

func (p *Page) Card(id int64) (*Card, bool) {
	c, ok := p.cards[id]
	return c, ok
}

// Loaded reports whether the page has been mounted, i.e. Load was called.
func (p *Page) Loaded() bool {
	return p.loaded
}

func (p *Page) Favorited() []*todos.Todo {
	return append([]*todos.Todo(nil), p.favorited...)
}

func (p *Page) Others() []*todos.Todo {
	return append([]*todos.Todo(nil), p.others...)
}

func (p *Page) Search() string {
	return p.search
}

func (p *Page) SetSearch(term string) {
	p.search = term
}

func (p *Page) Header() Header {
	return Header{
		Title:       AppTitle,
		Placeholder: SearchPlaceholder,
		Value:       p.search,
		OnChange:    p.SetSearch,
	}
}

// Load fetches both lists and replaces the local ones. On failure the
// previous lists are kept.
func (p *Page) Load(ctx context.Context) error {
	p.loaded = true

	others, err := p.service.ListUnfavorited(ctx)
	if err != nil {
		slog.Error("failed to fetch todos", "favorited", false, "err", err)
		return err
	}
	favorited, err := p.service.ListFavorited(ctx)
	if err != nil {
		slog.Error("failed to fetch todos", "favorited", true, "err", err)
		return err
	}

	p.replace(append(favorited, others...))
	return nil
}

// OnToggleFavorite persists the flag reported by a card and refetches.
func (p *Page) OnToggleFavorite(ctx context.Context, id int64, favorited bool) {
	if _, err := p.service.Update(ctx, id, todos.Patch{Favorited: todos.Bool(favorited)}); err != nil {
		slog.Error("failed to toggle favorite", "id", id, "err", err)
		return
	}
	p.Load(ctx)
}

func (p *Page) OnUpdate(ctx context.Context, id int64, patch todos.Patch) {
	if _, err := p.service.Update(ctx, id, patch); err != nil {
		slog.Error("failed to update todo", "id", id, "err", err)
		return
	}
	p.Load(ctx)
}

func (p *Page) OnDelete(ctx context.Context, id int64) {
	notID := func(t *todos.Todo) bool { return t.ID != id }
	p.favorited = utils.Filter(p.favorited, notID)
	p.others = utils.Filter(p.others, notID)
	p.dropCard(id)
	p.Load(ctx)
}

// onCreate ignores the created todo; it shows up once the backend lists it.
func (p *Page) onCreate(ctx context.Context, _ *todos.Todo) {
	p.Load(ctx)
}

func (p *Page) replace(list []*todos.Todo) {
	seen := map[int64]bool{}
	unique := utils.Filter(list, func(t *todos.Todo) bool {
		if t == nil || seen[t.ID] {
			return false
		}
		seen[t.ID] = true
		return true
	})
	p.favorited, p.others = todos.Partition(unique)
	p.reconcileCards()
}

// reconcileCards keeps the local state of cards whose todo is still listed,
// creates cards for new todos and drops the rest.
func (p *Page) reconcileCards() {
	listed := func(id int64) bool {
		hasID := func(t *todos.Todo) bool { return t.ID == id }
		return utils.Any(p.favorited, hasID) || utils.Any(p.others, hasID)
	}
	for id := range p.cards {
		if !listed(id) {
			p.dropCard(id)
		}
	}
	for _, list := range [][]*todos.Todo{p.favorited, p.others} {
		for _, t := range list {
			if c, ok := p.cards[t.ID]; ok {
				c.SetTodo(*t)
			} else {
				p.cards[t.ID] = NewCard(*t, p.service, p, p.overlays)
			}
		}
	}
}

func (p *Page) dropCard(id int64) {
	if c, ok := p.cards[id]; ok {
		c.Close()
		delete(p.cards, id)
	}
}

// Matches reports whether term is a case-insensitive substring of the
// todo's title or description. The empty term matches everything.
func Matches(t *todos.Todo, term string) bool {
	if term == "" {
		return true
	}
	needle := fold(term)
	return strings.Contains(fold(t.Title), needle) || strings.Contains(fold(t.Description), needle)
}

func fold(s string) string {
	// A Caser is stateful, so each call gets its own.
	return cases.Fold().String(norm.NFC.String(s))
}

func (p *Page) filter(list []*todos.Todo) []*todos.Todo {
	return utils.Filter(list, func(t *todos.Todo) bool { return Matches(t, p.search) })
}

type SectionView struct {
	Title string
	Cards []CardView
}

type PageView struct {
	Header   Header
	Composer ComposerView
	// Sections holds only non-empty sections, favorited first.
	Sections []SectionView
	Popover  *PopoverView
}

func (p *Page) View() PageView {
	view := PageView{
		Header:   p.Header(),
		Composer: p.composer.View(),
		Sections: []SectionView{},
	}
	sections := []struct {
		title string
		list  []*todos.Todo
	}{
		{FavoritedSectionTitle, p.filter(p.favorited)},
		{OthersSectionTitle, p.filter(p.others)},
	}
	for _, s := range sections {
		if len(s.list) == 0 {
			continue
		}
		section := SectionView{Title: s.title}
		for _, t := range s.list {
			c := p.cards[t.ID]
			section.Cards = append(section.Cards, c.View())
			if pv := c.popoverView(); pv != nil {
				view.Popover = pv
			}
		}
		view.Sections = append(view.Sections, section)
	}
	return view
}
