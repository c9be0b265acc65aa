// ============================================================================
// SmartScript - Templating engine and script server
// ============================================================================
//
// Package:     preview
// Description: Live preview TUI: template editor next to its rendered output
// Author:      frle10
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package preview

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/frle10/smartscript/foundation/smartscript"
	"github.com/frle10/smartscript/foundation/smartscript/ast"
	"github.com/frle10/smartscript/foundation/smartscript/request"
	"github.com/frle10/smartscript/internal/tui"
)

// Pane selects what the right-hand side shows
type Pane int

const (
	PaneOutput Pane = iota
	PaneTree
	PaneSource
)

var paneNames = []string{"Output", "Tree", "Source"}

// String returns the tab label
func (p Pane) String() string {
	if int(p) < len(paneNames) {
		return paneNames[p]
	}
	return "?"
}

// renderDelay is the typing pause before the editor content is rendered
const renderDelay = 150 * time.Millisecond

// MaxOutput bounds the rendered output; longer renders are aborted
const MaxOutput = 256 << 10

var errOutputLimit = errors.New("output limit reached")

// Options configures the preview
type Options struct {
	Engine *smartscript.Engine
	Path   string // file saved by ctrl+s, may be empty
	Source string
	Params map[string]string
}

// Model is the preview TUI model
type Model struct {
	engine *smartscript.Engine
	path   string
	params map[string]string

	// Components
	editor  textarea.Model
	preview viewport.Model

	// State
	pane    Pane
	width   int
	height  int
	ready   bool
	version int
	result  Result
	status  string
	dirty   bool
}

// New creates a preview model
func New(opts Options) Model {
	if opts.Engine == nil {
		opts.Engine, _ = smartscript.NewEngine()
	}

	ta := textarea.New()
	ta.Placeholder = "Hello {$= name $}!"
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.SetValue(opts.Source)
	ta.Focus()

	m := Model{
		engine: opts.Engine,
		path:   opts.Path,
		params: opts.Params,
		editor: ta,
		status: "ready",
	}
	m.result = m.Render(opts.Source)
	return m
}

// Run starts the preview in the alternate screen and blocks until it quits
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Render parses and executes source, collecting every pane's content
func (m Model) Render(source string) Result {
	start := time.Now()
	var res Result

	doc, err := m.engine.Parse(source)
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}
	res.Tree = tui.RenderTree(ast.Dump(doc))
	res.Source = ast.Source(doc)

	var out limitedBuffer
	rc := request.New(&out, m.params, nil)
	if err := m.engine.Execute(context.Background(), doc, rc, rc); err != nil {
		res.Err = err
	}
	res.Output = out.String()
	res.Duration = time.Since(start)
	return res
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab":
			m.pane = (m.pane + 1) % Pane(len(paneNames))
			m.updateContent()
			return m, nil

		case "ctrl+s":
			return m, m.save()

		case "ctrl+r":
			m.version++
			return m, m.renderCmd(m.version)

		case "pgup", "pgdown":
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.updateContent()

	case renderTickMsg:
		if msg.version == m.version {
			return m, m.renderCmd(msg.version)
		}
		return m, nil

	case renderedMsg:
		if msg.version == m.version {
			m.result = msg.result
			m.updateContent()
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
		} else {
			m.dirty = false
			m.status = "saved " + msg.path
		}
		return m, nil
	}

	before := m.editor.Value()
	m.editor, cmd = m.editor.Update(msg)
	cmds = append(cmds, cmd)

	if m.editor.Value() != before {
		m.dirty = true
		m.version++
		version := m.version
		cmds = append(cmds, tea.Tick(renderDelay, func(time.Time) tea.Msg {
			return renderTickMsg{version: version}
		}))
	}

	return m, tea.Batch(cmds...)
}

func (m Model) renderCmd(version int) tea.Cmd {
	source := m.editor.Value()
	return func() tea.Msg {
		return renderedMsg{version: version, result: m.Render(source)}
	}
}

func (m Model) save() tea.Cmd {
	path, source := m.path, m.editor.Value()
	return func() tea.Msg {
		if path == "" {
			return savedMsg{err: errors.New("no file name, start with a path argument")}
		}
		return savedMsg{path: path, err: os.WriteFile(path, []byte(source), 0644)}
	}
}

// layout splits the width between editor and preview
func (m *Model) layout() {
	half := m.width/2 - 2
	bodyHeight := m.height - 6
	if half < 10 {
		half = 10
	}
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	m.editor.SetWidth(half)
	m.editor.SetHeight(bodyHeight)

	if !m.ready {
		m.preview = viewport.New(half, bodyHeight)
		m.ready = true
	} else {
		m.preview.Width = half
		m.preview.Height = bodyHeight
	}
}

func (m *Model) updateContent() {
	if !m.ready {
		return
	}
	m.preview.SetContent(m.PaneContent())
}

// PaneContent returns the text shown in the active pane
func (m Model) PaneContent() string {
	if m.result.Err != nil && (m.pane != PaneOutput || m.result.Output == "") {
		return tui.RenderError(m.result.Err.Error())
	}
	switch m.pane {
	case PaneTree:
		return m.result.Tree
	case PaneSource:
		return m.result.Source
	default:
		if m.result.Err != nil {
			return m.result.Output + "\n" + tui.RenderError(m.result.Err.Error())
		}
		return m.result.Output
	}
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var s strings.Builder

	// Header
	title := "SmartScript preview"
	if m.path != "" {
		title += " " + tui.SubtitleStyle.Render(m.path)
	}
	s.WriteString(tui.RenderTitle(title))
	s.WriteString("\n")

	var tabs []string
	for i, name := range paneNames {
		style := tui.TabStyle
		if Pane(i) == m.pane {
			style = tui.ActiveTabStyle
		}
		tabs = append(tabs, style.Render(name))
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	s.WriteString("\n")

	// Main content
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		tui.FocusedBoxStyle.Render(m.editor.View()),
		tui.BoxStyle.Render(m.preview.View()),
	))
	s.WriteString("\n")

	// Footer
	s.WriteString(m.statusLine())
	s.WriteString("\n")
	s.WriteString(tui.RenderHelp("tab: switch pane • ctrl+s: save • ctrl+r: render • pgup/pgdown: scroll • esc: quit"))
	return s.String()
}

func (m Model) statusLine() string {
	state := tui.StatusOKStyle.Render("ok")
	if m.result.Err != nil {
		state = tui.StatusErrorStyle.Render("error")
	}
	modified := ""
	if m.dirty {
		modified = " [modified]"
	}
	return tui.StatusBarStyle.Render(fmt.Sprintf("%s %s%s • %s", state, m.result.Duration.Round(time.Microsecond), modified, m.status))
}

// limitedBuffer stops a render once MaxOutput bytes were produced
type limitedBuffer struct {
	strings.Builder
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.Len()+len(p) > MaxOutput {
		return 0, errOutputLimit
	}
	return b.Builder.Write(p)
}
