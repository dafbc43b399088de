package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlace(t *testing.T) {
	tests := []struct {
		name      string
		anchor    Rect
		container Rect
		want      Side
	}{
		{
			name:      "little room above",
			anchor:    Rect{Top: 150, Bottom: 170},
			container: Rect{Top: 100, Bottom: 400},
			want:      Bottom,
		},
		{
			name:      "more room below than above",
			anchor:    Rect{Top: 250, Bottom: 270},
			container: Rect{Top: 100, Bottom: 500},
			want:      Bottom,
		},
		{
			name:      "enough room above and less below",
			anchor:    Rect{Top: 300, Bottom: 320},
			container: Rect{Top: 100, Bottom: 360},
			want:      Top,
		},
		{
			name:      "exactly the threshold above",
			anchor:    Rect{Top: 220, Bottom: 240},
			container: Rect{Top: 100, Bottom: 250},
			want:      Top,
		},
		{
			name:      "equal room above and below",
			anchor:    Rect{Top: 300, Bottom: 320},
			container: Rect{Top: 100, Bottom: 520},
			want:      Top,
		},
		{
			name: "no geometry",
			want: Bottom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Place(tt.anchor, tt.container))
		})
	}
}

func TestPosition(t *testing.T) {
	anchor := Rect{Top: 300, Bottom: 320, Left: 40, Width: 20}

	below := Position(Bottom, anchor, 50)
	assert.Equal(t, Style{Left: 50, Top: 378, ZIndex: ZIndex}, below)

	above := Position(Top, anchor, 50)
	assert.Equal(t, Style{Left: 50, Top: 230, ZIndex: ZIndex}, above)

	assert.Equal(t, "position:absolute;left:50px;top:230px;transform:translateX(-50%);z-index:10000", above.CSS())
}

func TestOpenReleasesPrevious(t *testing.T) {
	m := NewManager()

	first := m.Open(Request{Owner: "card:1", Side: Bottom})
	require.True(t, first.Active())

	second := m.Open(Request{Owner: "card:2", Side: Top})
	assert.False(t, first.Active())
	assert.True(t, second.Active())
	assert.Same(t, second, m.Current())

	// Releasing a stale handle must not close the current one.
	first.Release()
	assert.True(t, second.Active())

	second.Release()
	second.Release()
	assert.False(t, second.Active())
	assert.Nil(t, m.Current())
}

func TestPointerDown(t *testing.T) {
	m := NewManager()
	assert.False(t, m.PointerDown(Target{Owner: "card:1", Element: "body"}))

	h := m.Open(Request{Owner: "card:1", Side: Bottom})

	assert.False(t, m.PointerDown(Target{Owner: "card:1", Element: ElementOverlay}))
	assert.False(t, m.PointerDown(Target{Owner: "card:1", Element: ElementToggle}))
	assert.True(t, h.Active())

	assert.True(t, m.PointerDown(Target{Owner: "card:1", Element: "save"}))
	assert.False(t, h.Active())
	assert.Nil(t, m.Current())

	h = m.Open(Request{Owner: "card:1", Side: Bottom})
	assert.True(t, m.PointerDown(Target{Owner: "card:2", Element: ElementToggle}))
	assert.False(t, h.Active())
}

func TestNilHandle(t *testing.T) {
	var h *Handle
	assert.False(t, h.Active())
	h.Release()
}
