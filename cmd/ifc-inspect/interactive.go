package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	webifc "github.com/dmytro-kravchyna/engine-web-ifc"
	"github.com/dmytro-kravchyna/engine-web-ifc/api"
	"github.com/dmytro-kravchyna/engine-web-ifc/logging"
	"github.com/dmytro-kravchyna/engine-web-ifc/memengine"
	"github.com/dmytro-kravchyna/engine-web-ifc/observe"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	entityStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	refStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type inspectModel struct {
	err      error
	filename string
	cfg      toolConfig
	log      *logging.Logger
	a        *api.API
	handle   webifc.Handle
	schema   string
	lines    []lineEntry
	visible  []lineEntry
	detail   []string
	filter   textinput.Model
	selected int
	offset   int
	height   int
	state    modelState
}

type lineEntry struct {
	id       uint32
	typeName string
}

type modelState int

const (
	stateBrowseLines modelState = iota
	stateLineDetail
	stateFilterType
)

func newInspectModel(filename string, cfg toolConfig) *inspectModel {
	ti := textinput.New()
	ti.Placeholder = "IFCWALL"
	ti.Prompt = "type filter: "
	ti.Width = 40
	return &inspectModel{
		filename: filename,
		cfg:      cfg,
		filter:   ti,
		height:   24,
		state:    stateBrowseLines,
	}
}

type loadedMsg struct {
	err    error
	log    *logging.Logger
	a      *api.API
	handle webifc.Handle
	schema string
	lines  []lineEntry
}

func (m *inspectModel) Init() tea.Cmd {
	return m.loadModel
}

func (m *inspectModel) loadModel() tea.Msg {
	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}

	log := logging.New(m.cfg.Logging)
	a := api.New(memengine.New(),
		api.WithLogger(log.Logger),
		api.WithMetrics(observe.NewRecorder("ifc_inspect_api")))

	h, err := a.OpenModel(&m.cfg.Loader, data)
	if err != nil {
		return loadedMsg{err: err}
	}

	schema, err := a.ModelSchema(h)
	if err != nil {
		schema = "(unknown)"
	}

	ids, err := a.AllLineIDs(h)
	if err != nil {
		a.CloseModel(h)
		return loadedMsg{err: err}
	}
	lines := make([]lineEntry, len(ids))
	for i, id := range ids {
		lines[i] = lineEntry{id: id, typeName: a.NameFromTypeCode(a.LineType(h, id))}
	}

	return loadedMsg{log: log, a: a, handle: h, schema: schema, lines: lines}
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, m.quit()

		case "q":
			if m.state != stateFilterType {
				return m, m.quit()
			}

		case "up", "k":
			if m.state == stateBrowseLines && m.selected > 0 {
				m.selected--
				m.clampScroll()
			}

		case "down", "j":
			if m.state == stateBrowseLines && m.selected < len(m.visible)-1 {
				m.selected++
				m.clampScroll()
			}

		case "enter":
			switch m.state {
			case stateBrowseLines:
				if len(m.visible) > 0 {
					m.detail = m.detailRows(m.visible[m.selected].id)
					m.state = stateLineDetail
				}

			case stateFilterType:
				m.applyFilter(m.filter.Value())
				m.filter.Blur()
				m.state = stateBrowseLines

			case stateLineDetail:
				m.state = stateBrowseLines
				m.detail = nil
			}

		case "/":
			if m.state == stateBrowseLines {
				m.state = stateFilterType
				m.filter.Focus()
				return m, textinput.Blink
			}

		case "esc":
			switch m.state {
			case stateFilterType:
				m.filter.SetValue("")
				m.filter.Blur()
				m.applyFilter("")
				m.state = stateBrowseLines
			case stateLineDetail:
				m.state = stateBrowseLines
				m.detail = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.log = msg.log
		m.a = msg.a
		m.handle = msg.handle
		m.schema = msg.schema
		m.lines = msg.lines
		m.visible = msg.lines
	}

	if m.state == stateFilterType {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *inspectModel) quit() tea.Cmd {
	if m.a != nil {
		m.a.CloseAllModels()
	}
	if m.log != nil {
		m.log.Sync()
	}
	return tea.Quit
}

// applyFilter keeps lines whose entity type contains the query.
func (m *inspectModel) applyFilter(query string) {
	query = strings.ToUpper(strings.TrimSpace(query))
	if query == "" {
		m.visible = m.lines
	} else {
		m.visible = nil
		for _, l := range m.lines {
			if strings.Contains(l.typeName, query) {
				m.visible = append(m.visible, l)
			}
		}
	}
	m.selected = 0
	m.offset = 0
}

func (m *inspectModel) pageSize() int {
	n := m.height - 8
	if n < 5 {
		n = 5
	}
	return n
}

func (m *inspectModel) clampScroll() {
	page := m.pageSize()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+page {
		m.offset = m.selected - page + 1
	}
}

// detailRows renders one row per argument of the line: index, token
// kind, and the value as it would appear in the file.
func (m *inspectModel) detailRows(id uint32) []string {
	n, err := m.a.ArgumentCount(m.handle, id)
	if err != nil {
		return []string{errorStyle.Render(err.Error())}
	}
	rows := make([]string, 0, n)
	for i := uint32(0); i < n; i++ {
		tt, err := m.a.ArgumentTokenType(m.handle, id, i)
		if err != nil {
			rows = append(rows, errorStyle.Render(err.Error()))
			continue
		}
		rows = append(rows, fmt.Sprintf("%3d  %-8s %s",
			i, tokenName(tt), formatArgument(m.a, m.handle, id, i)))
	}
	return rows
}

func tokenName(tt webifc.TokenType) string {
	switch tt {
	case webifc.TokenString:
		return "STRING"
	case webifc.TokenLabel:
		return "LABEL"
	case webifc.TokenEnum:
		return "ENUM"
	case webifc.TokenReal:
		return "REAL"
	case webifc.TokenInteger:
		return "INT"
	case webifc.TokenRef:
		return "REF"
	case webifc.TokenEmpty:
		return "NULL"
	case webifc.TokenSetBegin:
		return "SET"
	default:
		return "?"
	}
}

func (m *inspectModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.a == nil {
		return "Loading model..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("IFC Inspector"))
	fmt.Fprintf(&b, " %s  %s  %d lines\n\n", m.filename, m.schema, len(m.lines))

	switch m.state {
	case stateBrowseLines, stateFilterType:
		if m.state == stateFilterType {
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
		}
		page := m.pageSize()
		end := m.offset + page
		if end > len(m.visible) {
			end = len(m.visible)
		}
		for i := m.offset; i < end; i++ {
			l := m.visible[i]
			row := fmt.Sprintf("#%d=%s", l.id, l.typeName)
			if i == m.selected && m.state == stateBrowseLines {
				b.WriteString(selectedStyle.Render("> " + row))
			} else {
				b.WriteString("  " + refStyle.Render(fmt.Sprintf("#%d", l.id)) + "=" + entityStyle.Render(l.typeName))
			}
			b.WriteString("\n")
		}
		if len(m.visible) == 0 {
			b.WriteString(helpStyle.Render("  (no matching lines)\n"))
		}
		b.WriteString("\n")
		if m.state == stateFilterType {
			b.WriteString(helpStyle.Render("enter apply • esc clear"))
		} else {
			b.WriteString(helpStyle.Render("↑/↓ select • enter inspect • / filter • q quit"))
		}

	case stateLineDetail:
		l := m.visible[m.selected]
		fmt.Fprintf(&b, "%s=%s\n\n", refStyle.Render(fmt.Sprintf("#%d", l.id)), entityStyle.Render(l.typeName))
		for _, row := range m.detail {
			b.WriteString(row)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter/esc back • q quit"))
	}

	return b.String()
}

func runInteractive(filename string, cfg toolConfig) error {
	p := tea.NewProgram(newInspectModel(filename, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
