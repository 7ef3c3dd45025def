package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	reflection "github.com/wippyai/swift-reflection"
	"github.com/wippyai/swift-reflection/typeref"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// pageSize is the number of types listed at once.
const pageSize = 20

var browseCmd = &cobra.Command{
	Use:   "browse [images...]",
	Short: "Browse types and their resolved fields interactively",
	RunE:  runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	paths, err := active.imagesOrDefault(args)
	if err != nil {
		return err
	}
	p := tea.NewProgram(newBrowseModel(cmd.Context(), paths), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

type browseState int

const (
	stateList browseState = iota
	stateFilter
	stateDetail
)

type typeEntry struct {
	mangled string
	name    string
	kind    string
	image   string
}

type browseModel struct {
	ctx      context.Context
	err      error
	b        *reflection.Builder
	paths    []string
	types    []typeEntry
	visible  []int
	filter   textinput.Model
	detail   string
	selected int
	state    browseState
	loaded   bool
}

func newBrowseModel(ctx context.Context, paths []string) *browseModel {
	ti := textinput.New()
	ti.Placeholder = "type name"
	ti.Prompt = "/"
	ti.Width = 40
	return &browseModel{ctx: ctx, paths: paths, filter: ti, state: stateList}
}

type loadedMsg struct {
	err   error
	b     *reflection.Builder
	types []typeEntry
}

func (m *browseModel) Init() tea.Cmd {
	return m.load
}

func (m *browseModel) load() tea.Msg {
	b, err := loadImages(m.ctx, active, m.paths)
	if err != nil {
		return loadedMsg{err: err}
	}
	// The snapshot is complete even when some records are malformed.
	snap, _ := b.Snapshot()

	var types []typeEntry
	for _, img := range snap.Images {
		for _, t := range img.Types {
			if t.MangledName == "" {
				continue
			}
			types = append(types, typeEntry{mangled: t.MangledName, name: t.Name, kind: t.Kind, image: img.Name})
		}
	}
	return loadedMsg{b: b, types: types}
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateFilter {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateList && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateList && m.selected < len(m.visible)-1 {
				m.selected++
			}

		case "/":
			if m.state == stateList {
				m.state = stateFilter
				return m, m.filter.Focus()
			}

		case "enter":
			switch m.state {
			case stateList:
				if len(m.visible) > 0 {
					m.detail = m.describe(m.types[m.visible[m.selected]])
					m.state = stateDetail
				}
			case stateDetail:
				m.state = stateList
			}

		case "esc":
			if m.state == stateDetail {
				m.state = stateList
			}
		}

	case loadedMsg:
		m.loaded = true
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.b = msg.b
		m.types = msg.types
		m.applyFilter()
	}
	return m, nil
}

func (m *browseModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter", "esc":
		m.filter.Blur()
		m.state = stateList
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *browseModel) applyFilter() {
	query := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for i, t := range m.types {
		if query == "" || strings.Contains(strings.ToLower(t.name), query) {
			m.visible = append(m.visible, i)
		}
	}
	m.selected = min(m.selected, max(len(m.visible)-1, 0))
}

// describe resolves the fields and layout of one type.
func (m *browseModel) describe(t typeEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) from %s\n\n", nameStyle.Render(t.name), t.kind, t.image)

	tr, err := m.b.DecodeMangledType(t.mangled)
	if err != nil {
		return b.String() + errorStyle.Render(err.Error())
	}
	fd, err := m.b.GetFieldTypeInfo(tr)
	if err != nil {
		return b.String() + errorStyle.Render(err.Error())
	}
	fields, err := m.b.GetFieldTypeRefs(tr, fd)
	if err != nil {
		return b.String() + errorStyle.Render(err.Error())
	}

	for _, f := range fields {
		b.WriteString(nameStyle.Render(f.Name))
		if f.Type == nil {
			b.WriteString("\n")
			continue
		}
		b.WriteString(":\n")
		b.WriteString(typeStyle.Render(typeref.String(f.Type)))
		b.WriteString("\n")
	}

	if info, ok := m.b.LayoutOf(tr); ok {
		fmt.Fprintf(&b, "\nsize %d, alignment %d, stride %d\n", info.Size, info.Align, info.Stride)
	}
	return b.String()
}

func (m *browseModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if !m.loaded {
		return "Loading images..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Swift Reflection"))
	fmt.Fprintf(&b, " %d images, %d types\n\n", len(m.paths), len(m.types))

	switch m.state {
	case stateList, stateFilter:
		if m.state == stateFilter || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
		}
		start := max(0, min(m.selected-pageSize/2, len(m.visible)-pageSize))
		end := min(len(m.visible), start+pageSize)
		for i := start; i < end; i++ {
			t := m.types[m.visible[i]]
			line := t.name + " " + typeStyle.Render(t.kind)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + t.name + " " + t.kind))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		if len(m.visible) == 0 {
			b.WriteString(helpStyle.Render("no matching types"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if m.state == stateFilter {
			b.WriteString(helpStyle.Render("enter/esc done"))
		} else {
			b.WriteString(helpStyle.Render("↑/↓ select • / filter • enter fields • q quit"))
		}

	case stateDetail:
		b.WriteString(m.detail)
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter/esc back • q quit"))
	}
	return b.String()
}
