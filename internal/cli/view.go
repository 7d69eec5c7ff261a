package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dungenlab/dungen/pkg/dungeon"
	"github.com/dungenlab/dungen/pkg/recipe"
	"github.com/dungenlab/dungen/pkg/render"
)

// newViewCmd creates the interactive view command.
func newViewCmd() *cobra.Command {
	var seed uint64

	cmd := &cobra.Command{
		Use:   "view <recipe.toml>",
		Short: "Browse generated dungeons interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := recipe.LoadFile(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				seed = rec.Seed
			}

			model := newViewModel(rec, seed)
			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "starting seed")
	return cmd
}

// =============================================================================
// viewModel - Interactive dungeon browsing
// =============================================================================

// viewModel is the bubbletea model for browsing dungeons seed by seed.
type viewModel struct {
	rec  *recipe.Recipe
	seed uint64
	flat bool

	reg  *dungeon.Registry
	root dungeon.Handle
	err  error
}

func newViewModel(rec *recipe.Recipe, seed uint64) viewModel {
	m := viewModel{rec: rec, seed: seed}
	m.regenerate()
	return m
}

// regenerate rebuilds the dungeon for the current seed.
func (m *viewModel) regenerate() {
	defer func() {
		if r := recover(); r != nil {
			m.err = fmt.Errorf("generation failed: %v", r)
		}
	}()
	m.err = nil
	m.reg, m.root = recipe.Build(m.rec, m.seed)
}

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "n", "right", "l":
			m.seed++
			m.regenerate()
		case "p", "left", "h":
			if m.seed > 0 {
				m.seed--
				m.regenerate()
			}
		case "f":
			m.flat = !m.flat
		}
	}
	return m, nil
}

func (m viewModel) View() string {
	var b strings.Builder

	name := m.rec.Name
	if name == "" {
		name = "dungeon"
	}
	b.WriteString(StyleTitle.Render(name))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  seed %d", m.seed)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("n/p seed  f flatten  q quit"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + m.err.Error())
		b.WriteString("\n")
		return b.String()
	}

	if m.flat {
		b.WriteString(render.ASCIIFlat(m.reg, m.root))
	} else {
		var out string
		m.reg.Read(m.root, func(mp *dungeon.Map) { out = render.Styled(mp, nil) })
		b.WriteString(out)
	}

	var portals, subs int
	m.reg.Read(m.root, func(mp *dungeon.Map) {
		portals = mp.PortalCount()
		subs = mp.SubMapCount()
	})
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d maps · %d portals · %d embeds", m.reg.Len(), portals, subs)))
	b.WriteString("\n")
	return b.String()
}
