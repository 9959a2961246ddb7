// ============================================================================
// lox - Lox Front End
// ============================================================================
//
// Package:     tui
// Description: Interactive inspector for tokens, trees and diagnostics
// Author:      Mike Stoffels with Claude
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/msto63/lox/internal/server"
	"github.com/msto63/lox/internal/store"
)

// View represents the different views of the inspector
type View int

const (
	ViewTree View = iota
	ViewTokens
	ViewDiagnostics
	ViewHistory
)

var viewNames = []string{"Tree", "Tokens", "Diagnostics", "History"}

// Evaluator turns one source into a payload. *server.Client and
// *server.Local both satisfy it.
type Evaluator interface {
	Process(ctx context.Context, name, source string) (*server.Payload, error)
}

// Config configures the inspector
type Config struct {
	Evaluator Evaluator
	Store     store.RunStore // optional, feeds the history view
	Mode      string         // shown in the status bar, e.g. "local"
	Timeout   time.Duration
}

// Model is the inspector TUI model
type Model struct {
	// State
	view    View
	width   int
	height  int
	ready   bool
	loading bool
	err     error

	// Components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	eval    Evaluator
	store   store.RunStore
	mode    string
	timeout time.Duration

	source   string
	payload  *server.Payload
	duration time.Duration
	runs     []*store.Run
}

// NewModel creates the inspector model
func NewModel(cfg Config) Model {
	ta := textarea.New()
	ta.Placeholder = "Enter an expression..."
	ta.Focus()
	ta.CharLimit = 4000
	ta.SetWidth(80)
	ta.SetHeight(2)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	if cfg.Mode == "" {
		cfg.Mode = "local"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return Model{
		view:     ViewTree,
		textarea: ta,
		spinner:  sp,
		eval:     cfg.Evaluator,
		store:    cfg.Store,
		mode:     cfg.Mode,
		timeout:  cfg.Timeout,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
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
			m.view = (m.view + 1) % View(len(viewNames))
			m.updateContent()
			if m.view == ViewHistory {
				return m, m.loadHistory()
			}
			return m, nil

		case "shift+tab":
			m.view = (m.view + View(len(viewNames)) - 1) % View(len(viewNames))
			m.updateContent()
			if m.view == ViewHistory {
				return m, m.loadHistory()
			}
			return m, nil

		case "enter":
			input := strings.TrimSpace(m.textarea.Value())
			if !m.loading && input != "" {
				m.source = input
				m.textarea.Reset()
				m.loading = true
				return m, tea.Batch(m.process(input), m.spinner.Tick)
			}
			return m, nil

		case "ctrl+l":
			m.source = ""
			m.payload = nil
			m.err = nil
			m.updateContent()
			return m, nil

		case "ctrl+r":
			if m.view == ViewHistory {
				return m, m.loadHistory()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-12)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - 12
		}
		m.textarea.SetWidth(msg.Width - 4)
		m.updateContent()

	case processedMsg:
		m.loading = false
		m.duration = msg.duration
		if msg.err != nil {
			m.err = msg.err
			m.payload = nil
		} else {
			m.err = nil
			m.payload = msg.payload
			if m.payload.LexError || m.payload.ParseError {
				if m.view == ViewTree && m.payload.Tree == "" {
					m.view = ViewDiagnostics
				}
			}
		}
		m.updateContent()

	case historyMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.runs = msg.runs
		}
		m.updateContent()

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var s strings.Builder
	s.WriteString(m.renderHeader())
	s.WriteString("\n")
	s.WriteString(BoxStyle.Render(m.viewport.View()))
	s.WriteString("\n")
	if m.loading {
		s.WriteString(m.spinner.View())
		s.WriteString(" Processing...\n")
	}
	s.WriteString(FocusedInputStyle.Render(m.textarea.View()))
	s.WriteString("\n")
	s.WriteString(m.renderFooter())
	return s.String()
}

func (m *Model) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if View(i) == m.view {
			tabs = append(tabs, ActiveTabStyle.Render(name))
		} else {
			tabs = append(tabs, TabStyle.Render(name))
		}
	}
	title := TitleStyle.Render("lox inspector")
	return lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (m *Model) renderFooter() string {
	help := "Enter: Process • Tab: Switch • Ctrl+L: Clear • Ctrl+C: Quit"
	status := m.mode
	if m.payload != nil {
		if m.payload.ExitCode == 0 {
			status = StatusOKStyle.Render("ok") + " " + status
		} else {
			status = StatusErrorStyle.Render(fmt.Sprintf("exit %d", m.payload.ExitCode)) + " " + status
		}
		status += fmt.Sprintf(" %.2fms (round trip %s)", m.payload.DurationMS, m.duration.Round(time.Microsecond))
	}

	return StatusBarStyle.Width(m.width).Render(
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			help,
			strings.Repeat(" ", max(0, m.width-lipgloss.Width(help)-lipgloss.Width(status)-4)),
			status,
		),
	)
}

// updateContent renders the current view into the viewport
func (m *Model) updateContent() {
	var content string
	switch m.view {
	case ViewTree:
		content = m.renderTree()
	case ViewTokens:
		content = m.renderTokens()
	case ViewDiagnostics:
		content = m.renderDiagnostics()
	case ViewHistory:
		content = m.renderHistory()
	}
	if m.err != nil {
		content = ErrorMessageStyle.Render("Error: "+m.err.Error()) + "\n\n" + content
	}
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

func (m *Model) renderTree() string {
	if m.payload == nil {
		return SubtitleStyle.Render("Type an expression and press Enter, e.g. -123 * (45.67)")
	}
	var s strings.Builder
	s.WriteString(SubtitleStyle.Render(m.source))
	s.WriteString("\n\n")
	if m.payload.Tree == "" {
		s.WriteString(ErrorMessageStyle.Render("no tree"))
		s.WriteString("\n")
		return s.String()
	}
	s.WriteString(m.payload.Tree)
	s.WriteString("\n\n")
	writeOutline(&s, m.payload.AST, "")
	return s.String()
}

// writeOutline prints one node per line, children indented below it
func writeOutline(s *strings.Builder, node map[string]interface{}, indent string) {
	if node == nil {
		return
	}
	child := func(key string) {
		if c, ok := node[key].(map[string]interface{}); ok {
			writeOutline(s, c, indent+"  ")
		}
	}

	s.WriteString(indent)
	switch node["type"] {
	case "binary":
		s.WriteString(NodeStyle.Render("binary ") + OperatorStyle.Render(fmt.Sprint(node["operator"])))
		s.WriteString("\n")
		child("left")
		child("right")
	case "unary":
		s.WriteString(NodeStyle.Render("unary ") + OperatorStyle.Render(fmt.Sprint(node["operator"])))
		s.WriteString("\n")
		child("right")
	case "grouping":
		s.WriteString(NodeStyle.Render("group"))
		s.WriteString("\n")
		child("expression")
	case "literal":
		value := node["value"]
		text := fmt.Sprint(value)
		if str, ok := value.(string); ok {
			text = fmt.Sprintf("%q", str)
		} else if value == nil {
			text = "nil"
		}
		s.WriteString(NodeStyle.Render("literal ") + LiteralStyle.Render(text))
		s.WriteString("\n")
	default:
		s.WriteString(fmt.Sprintf("%v\n", node["type"]))
	}
}

func (m *Model) renderTokens() string {
	if m.payload == nil {
		return SubtitleStyle.Render("No tokens yet")
	}
	var s strings.Builder
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("%d tokens", len(m.payload.Tokens))))
	s.WriteString("\n\n")
	for i, tok := range m.payload.Tokens {
		s.WriteString(fmt.Sprintf("%3d  %s  %s  %q\n",
			i,
			LineStyle.Render(fmt.Sprintf("line %-3d", tok.Line)),
			KindStyle.Render(fmt.Sprintf("%-14s", tok.Kind.String())),
			tok.Lexeme))
	}
	return s.String()
}

func (m *Model) renderDiagnostics() string {
	if m.payload == nil {
		return SubtitleStyle.Render("No diagnostics yet")
	}
	if len(m.payload.Diagnostics) == 0 {
		return StatusOKStyle.Render("No errors")
	}
	var s strings.Builder
	for _, d := range m.payload.Diagnostics {
		s.WriteString(ErrorMessageStyle.Render(d.String()))
		s.WriteString("\n")
	}
	return s.String()
}

func (m *Model) renderHistory() string {
	if m.store == nil {
		return SubtitleStyle.Render("History is disabled")
	}
	if len(m.runs) == 0 {
		return SubtitleStyle.Render("No runs recorded")
	}

	var s strings.Builder
	for _, r := range m.runs {
		src := strings.ReplaceAll(r.Source, "\n", " ")
		if len(src) > 40 {
			src = src[:40] + "..."
		}
		style := StatusOKStyle
		if r.Failed() {
			style = StatusErrorStyle
		}
		s.WriteString(fmt.Sprintf("%s  %-9s %s  %s\n",
			LineStyle.Render(r.Timestamp.Local().Format("2006-01-02 15:04:05")),
			r.Origin,
			style.Render(fmt.Sprintf("exit %-2d", r.ExitCode)),
			src))
	}

	if stats, err := m.store.Stats(context.Background()); err == nil {
		origins := make([]string, 0, len(stats.ByOrigin))
		for o, n := range stats.ByOrigin {
			origins = append(origins, fmt.Sprintf("%s=%d", o, n))
		}
		sort.Strings(origins)
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render(fmt.Sprintf("%d runs, %d failed (%s) • Ctrl+R: Refresh",
			stats.Total, stats.Failed, strings.Join(origins, " "))))
	}
	return s.String()
}

// process evaluates source in the background
func (m *Model) process(source string) tea.Cmd {
	eval := m.eval
	timeout := m.timeout
	return func() tea.Msg {
		if eval == nil {
			return processedMsg{err: fmt.Errorf("no evaluator configured")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		payload, err := eval.Process(ctx, "inspector", source)
		return processedMsg{payload: payload, duration: time.Since(start), err: err}
	}
}

// loadHistory fetches the most recent runs
func (m *Model) loadHistory() tea.Cmd {
	st := m.store
	if st == nil {
		return nil
	}
	return func() tea.Msg {
		runs, err := st.List(context.Background(), store.Filter{Limit: 50})
		return historyMsg{runs: runs, err: err}
	}
}

// Run starts the inspector on the terminal
func Run(cfg Config) error {
	p := tea.NewProgram(NewModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
