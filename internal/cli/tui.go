package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/possible/pkg/dag"
	"github.com/matzehuels/possible/pkg/store"
	"github.com/matzehuels/possible/pkg/view"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

const browseHelp = "↑/↓ move  ⏎ expand  x done  f follow  h hide done  n new  d delete  r reduce  q quit"

func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse and edit the current graph interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editGraph(cmd, func(st *store.Store, g *dag.Graph) error {
				m := newBrowseModel(st, g.ID)
				_, err := tea.NewProgram(m, tea.WithContext(cmd.Context()), tea.WithAltScreen()).Run()
				return err
			})
		},
	}
}

// =============================================================================
// BrowseModel - Interactive graph outline
// =============================================================================

// browseRow is one visible node in the outline.
type browseRow struct {
	ID    string
	Depth int
	Line  string
}

// BrowseModel is the bubbletea model for walking and editing one graph.
// Every edit goes through the store, which schedules its own saves.
type BrowseModel struct {
	store   *store.Store
	graphID string

	Title  string
	Rows   []browseRow
	Cursor int
	Height int
	Offset int
	Status string
}

func newBrowseModel(st *store.Store, graphID string) BrowseModel {
	m := BrowseModel{store: st, graphID: graphID, Height: 20}
	m.refresh()
	return m
}

// refresh rebuilds the rows from the store, keeping the cursor on the
// same node when it is still visible.
func (m *BrowseModel) refresh() {
	current := m.current()
	g, ok := m.store.Graph(m.graphID)
	if !ok {
		m.Title, m.Rows = "", nil
		m.Status = "graph removed"
		return
	}
	m.Title = g.Name
	if g.HideCompleted {
		m.Title += listDimStyle.Render(" (hiding completed)")
	}

	d := view.Project(g)
	lines := outline(d)
	idx := d.Index()
	depth := make(map[string]int, len(d.Nodes))
	m.Rows = nil
	for i := range d.Nodes {
		n := &d.Nodes[i]
		if _, ok := idx[n.Parent]; ok {
			depth[n.ID] = depth[n.Parent] + 1
		}
		m.Rows = append(m.Rows, browseRow{ID: n.ID, Depth: depth[n.ID], Line: lines[i]})
	}

	m.Cursor = 0
	for i, r := range m.Rows {
		if r.ID == current {
			m.Cursor = i
		}
	}
	m.clamp()
}

func (m *BrowseModel) current() string {
	if m.Cursor < 0 || m.Cursor >= len(m.Rows) {
		return ""
	}
	return m.Rows[m.Cursor].ID
}

func (m *BrowseModel) clamp() {
	if m.Cursor >= len(m.Rows) {
		m.Cursor = len(m.Rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.Status = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.Cursor--
			m.clamp()
		case "down", "j":
			m.Cursor++
			m.clamp()
		case "enter", " ":
			m.edit(func(id string) bool {
				return m.store.ToggleNodeExpanded(m.graphID, id, store.Default)
			})
		case "x":
			m.edit(func(id string) bool {
				n, ok := m.store.Node(m.graphID, id)
				done := ok && !n.Completed
				return ok && m.store.UpdateNode(m.graphID, id, store.NodePatch{Completed: &done}, store.Default)
			})
		case "f":
			m.edit(func(id string) bool {
				n, ok := m.store.Node(m.graphID, id)
				follow := ok && !n.IsFollowed
				return ok && m.store.UpdateNode(m.graphID, id, store.NodePatch{IsFollowed: &follow}, store.Default)
			})
		case "h":
			g, ok := m.store.Graph(m.graphID)
			if ok {
				hide := !g.HideCompleted
				m.store.UpdateGraph(m.graphID, store.GraphPatch{HideCompleted: &hide}, store.Default)
			}
			m.refresh()
		case "n":
			id := m.current()
			var added string
			if id == "" {
				added = m.store.AddNewNode(m.graphID, store.Default)
			} else {
				added = m.store.AppendNewNode(m.graphID, id, store.Default)
			}
			if added == "" {
				m.Status = "cannot add a node here"
			}
			m.refresh()
			m.moveTo(added)
		case "d":
			m.edit(func(id string) bool {
				return m.store.DeleteNodeKeepEdges(m.graphID, id, store.Default)
			})
		case "r":
			removed, err := m.store.ReduceGraph(m.graphID, store.Default)
			if err != nil {
				m.Status = err.Error()
			} else {
				m.Status = fmt.Sprintf("removed %d redundant edges", removed)
			}
			m.refresh()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
		m.clamp()
	}
	return m, nil
}

// edit applies fn to the node under the cursor and reloads the rows.
func (m *BrowseModel) edit(fn func(id string) bool) {
	id := m.current()
	if id == "" {
		return
	}
	if !fn(id) {
		m.Status = "no change"
	}
	m.refresh()
}

func (m *BrowseModel) moveTo(id string) {
	for i, r := range m.Rows {
		if r.ID == id {
			m.Cursor = i
			m.clamp()
			return
		}
	}
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(browseHelp))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("  (no visible nodes; press n to add one)"))
		b.WriteString("\n")
	}
	end := min(m.Offset+m.Height, len(m.Rows))
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		b.WriteString(style.Render(cursor) + m.Rows[i].Line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if len(m.Rows) > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))
	}
	if m.Status != "" {
		b.WriteString("  " + StyleWarning.Render(m.Status))
	}
	return b.String()
}

// visibleIDs returns the node IDs in row order.
func (m BrowseModel) visibleIDs() []string {
	ids := make([]string, len(m.Rows))
	for i, r := range m.Rows {
		ids[i] = r.ID
	}
	return ids
}

var _ tea.Model = BrowseModel{}
