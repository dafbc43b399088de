package ui

const (
	AppTitle          = "Core Notes"
	SearchPlaceholder = "Search notes..."
)

// Header is the controlled search bar. It holds no state of its own.
type Header struct {
	Title       string
	Placeholder string
	Value       string
	OnChange    func(value string)
}

func (h Header) Change(value string) {
	if h.OnChange != nil {
		h.OnChange(value)
	}
}
