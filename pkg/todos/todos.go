package todos

import "time"

// DefaultColor is the background used for a todo without a color.
const DefaultColor = "#fff"

type Todo struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Favorited   bool      `json:"favorited"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Background returns the color a todo is rendered with.
func (t *Todo) Background() string {
	return Background(t.Color)
}

func Background(color string) string {
	if color == "" {
		return DefaultColor
	}
	return color
}

// Draft is the body of a create request. The backend assigns id and createdAt.
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Favorited   bool   `json:"favorited"`
}

// Patch is a partial todo sent on update. Nil fields are left out of the
// request body; a non-nil empty string is sent as "".
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	Favorited   *bool   `json:"favorited,omitempty"`
}

func String(s string) *string {
	return &s
}

func Bool(b bool) *bool {
	return &b
}

// Partition splits todos by their favorited flag, keeping order.
func Partition(list []*Todo) (favorited []*Todo, others []*Todo) {
	favorited, others = []*Todo{}, []*Todo{}
	for _, t := range list {
		if t.Favorited {
			favorited = append(favorited, t)
		} else {
			others = append(others, t)
		}
	}
	return favorited, others
}
