package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mython-lang/mython/mython"
)

var (
	accentColor = lipgloss.Color("#3B82F6")
	outputColor = lipgloss.Color("#10B981")
	errorColor  = lipgloss.Color("#EF4444")
	mutedColor  = lipgloss.Color("#6B7280")
	keyColor    = lipgloss.Color("#F59E0B")

	promptStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	outputStyle = lipgloss.NewStyle().
			Foreground(outputColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	headerStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			Padding(0, 1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(keyColor)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

type historyEntry struct {
	input  string
	output string
	isErr  bool
}

// replModel replays the accumulated program on every entry and shows the
// output delta. Replaying keeps the language's whole-program semantics
// (parse-time class resolution, top-down definition order) without a
// second execution mode just for the REPL.
type replModel struct {
	textInput   textinput.Model
	engine      *mython.Engine
	source      string
	lastOutput  string
	pending     []string
	history     []historyEntry
	cmdHistory  []string
	historyIdx  int
	width       int
	height      int
	quitting    bool
	initialized bool
}

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	CtrlC key.Binding
	CtrlD key.Binding
	CtrlL key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "previous entry"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "next entry"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "execute"),
	),
	CtrlC: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	CtrlD: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "quit"),
	),
	CtrlL: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "clear"),
	),
}

func newREPLModel() replModel {
	ti := textinput.New()
	ti.Placeholder = "type a statement..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.Prompt = ">>> "

	return replModel{
		textInput:  ti,
		engine:     mython.NewEngine(mython.Config{}),
		history:    make([]historyEntry, 0),
		cmdHistory: make([]string, 0),
		historyIdx: -1,
	}
}

func (m replModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 10
		m.initialized = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.CtrlC), key.Matches(msg, keys.CtrlD):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.CtrlL):
			m.history = make([]historyEntry, 0)
			return m, nil

		case key.Matches(msg, keys.Up):
			if len(m.cmdHistory) > 0 {
				if m.historyIdx == -1 {
					m.historyIdx = len(m.cmdHistory) - 1
				} else if m.historyIdx > 0 {
					m.historyIdx--
				}
				m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Down):
			if m.historyIdx != -1 {
				if m.historyIdx < len(m.cmdHistory)-1 {
					m.historyIdx++
					m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				} else {
					m.historyIdx = -1
					m.textInput.SetValue("")
				}
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Enter):
			input := m.textInput.Value()
			m.textInput.SetValue("")
			m.historyIdx = -1

			if trimmed := strings.TrimSpace(input); trimmed != "" && strings.HasPrefix(trimmed, ":") {
				var cmd tea.Cmd
				m, cmd = m.handleCommand(trimmed)
				return m, cmd
			}
			m = m.handleLine(input)
			return m, nil
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// handleLine buffers block entries: a line ending in ':' (or any line
// while a block is open) extends the pending entry, and an empty line
// closes it. Plain statements run immediately.
func (m replModel) handleLine(input string) replModel {
	trimmed := strings.TrimSpace(input)

	if len(m.pending) > 0 {
		if trimmed == "" {
			entry := strings.Join(m.pending, "\n")
			m.pending = nil
			return m.execute(entry)
		}
		m.pending = append(m.pending, input)
		m.cmdHistory = append(m.cmdHistory, input)
		return m
	}

	if trimmed == "" {
		return m
	}
	m.cmdHistory = append(m.cmdHistory, input)
	if strings.HasSuffix(trimmed, ":") {
		m.pending = append(m.pending, input)
		return m
	}
	return m.execute(input)
}

func (m replModel) execute(entry string) replModel {
	output, isErr := m.evaluate(entry)
	m.history = append(m.history, historyEntry{input: entry, output: output, isErr: isErr})
	return m
}

func (m *replModel) evaluate(entry string) (string, bool) {
	candidate := m.source + entry + "\n"

	script, err := m.engine.Compile(candidate)
	if err != nil {
		return err.Error(), true
	}

	var buf bytes.Buffer
	if err := script.Run(context.Background(), mython.RunOptions{Output: &buf}); err != nil {
		return err.Error(), true
	}

	full := buf.String()
	delta := strings.TrimPrefix(full, m.lastOutput)
	m.source = candidate
	m.lastOutput = full
	return strings.TrimRight(delta, "\n"), false
}

func (m replModel) handleCommand(input string) (replModel, tea.Cmd) {
	switch strings.Fields(input)[0] {
	case ":clear", ":c":
		m.history = make([]historyEntry, 0)
	case ":reset", ":r":
		m.source = ""
		m.lastOutput = ""
		m.pending = nil
		m.history = append(m.history, historyEntry{input: input, output: "Session reset"})
	case ":quit", ":q":
		m.quitting = true
		return m, tea.Quit
	default:
		m.history = append(m.history, historyEntry{
			input:  input,
			output: fmt.Sprintf("Unknown command: %s", input),
			isErr:  true,
		})
	}
	return m, nil
}

func (m replModel) View() string {
	if !m.initialized {
		return "Loading..."
	}

	if m.quitting {
		return mutedStyle.Render("Goodbye!\n")
	}

	var b strings.Builder

	header := headerStyle.Render("Mython REPL")
	b.WriteString(header + "\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", min(m.width-2, 60))) + "\n\n")

	reservedLines := 8
	availableHeight := m.height - reservedLines

	historyStart := 0
	if len(m.history) > availableHeight {
		historyStart = len(m.history) - availableHeight
	}

	for i := historyStart; i < len(m.history); i++ {
		entry := m.history[i]
		for _, line := range strings.Split(entry.input, "\n") {
			b.WriteString(mutedStyle.Render("  › ") + line + "\n")
		}
		if entry.output != "" {
			if entry.isErr {
				b.WriteString("  " + errorStyle.Render(entry.output) + "\n")
			} else {
				b.WriteString("  " + outputStyle.Render(entry.output) + "\n")
			}
		}
		b.WriteString("\n")
	}

	if len(m.pending) > 0 {
		b.WriteString(mutedStyle.Render("  ... entering block, finish with an empty line") + "\n")
	}

	b.WriteString(m.textInput.View() + "\n\n")

	footer := helpKeyStyle.Render(":reset") + helpDescStyle.Render(" start over  ") +
		helpKeyStyle.Render("ctrl+l") + helpDescStyle.Render(" clear  ") +
		helpKeyStyle.Render("ctrl+c") + helpDescStyle.Render(" quit")
	b.WriteString(footer)

	return b.String()
}

func runREPL() error {
	p := tea.NewProgram(newREPLModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
