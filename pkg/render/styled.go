package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dungenlab/dungen/pkg/dungeon"
	"github.com/dungenlab/dungen/pkg/geom"
)

// Palette maps tile types to terminal styles.
type Palette map[dungeon.TileType]lipgloss.Style

// DefaultPalette colors floors grey, walls white, and portals yellow.
func DefaultPalette() Palette {
	return Palette{
		dungeon.TileFloor:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		dungeon.TileWall:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		dungeon.TilePortal: lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true),
	}
}

// Styled renders a map like [ASCII] but with each tile wrapped in its
// palette style. A nil palette falls back to [DefaultPalette].
func Styled(m *dungeon.Map, pal Palette) string {
	if pal == nil {
		pal = DefaultPalette()
	}
	size := m.Size()
	var sb strings.Builder
	for y := 0; y < size.Height; y++ {
		for x := 0; x < size.Width; x++ {
			t := m.TileAt(geom.Pt(x, y))
			ch := string(t.Rune())
			if st, ok := pal[t]; ok {
				ch = st.Render(ch)
			}
			sb.WriteString(ch)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
