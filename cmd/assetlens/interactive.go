package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	assetoverlay "github.com/wippyai/asset-overlay"
	"github.com/wippyai/asset-overlay/config"
	"github.com/wippyai/asset-overlay/dispatch"
)

const historyLimit = 12

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	onStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#98FB98"))

	offStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	decisionStyles = map[dispatch.Decision]lipgloss.Style{
		dispatch.PassThrough: lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		dispatch.Blocked:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		dispatch.Replaced:    lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90")),
		dispatch.Resolved:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")),
	}

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	ov       *assetoverlay.Overlay
	toggles  *config.Toggles
	assets   string
	input    textinput.Model
	history  []result
	selected int
}

type inspectedMsg struct {
	err error
	res result
}

func newInteractiveModel(ov *assetoverlay.Overlay, toggles *config.Toggles, assets string) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "assets/renderer/materials/RenderChunk.material.bin or :no_fog"
	ti.Prompt = "path> "
	ti.Width = 60
	ti.Focus()
	return &interactiveModel{
		ov:      ov,
		toggles: toggles,
		assets:  assets,
		input:   ti,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) inspect(p string) tea.Cmd {
	return func() tea.Msg {
		res, err := inspect(m.ov, p)
		return inspectedMsg{res: res, err: err}
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "up":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down":
			if m.selected < len(m.history)-1 {
				m.selected++
			}
			return m, nil

		case "enter":
			value := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			m.err = nil
			if value == "" {
				if m.selected < len(m.history) {
					return m, m.inspect(m.history[m.selected].path)
				}
				return m, nil
			}
			if name, ok := strings.CutPrefix(value, ":"); ok {
				m.toggle(name)
				return m, nil
			}
			return m, m.inspect(value)
		}

	case inspectedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.history = append([]result{msg.res}, m.history...)
		if len(m.history) > historyLimit {
			m.history = m.history[:historyLimit]
		}
		m.selected = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) toggle(name string) {
	features, err := config.ParseFeatures(name)
	if err != nil {
		m.err = err
		return
	}
	for _, f := range features {
		m.toggles.Set(f, !m.toggles.Enabled(f))
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Asset Lens"))
	b.WriteString(" ")
	b.WriteString(m.assets)
	b.WriteString(fmt.Sprintf("  host %s\n\n", m.ov.HostVersion()))

	for _, f := range config.AllFeatures {
		if m.toggles.Enabled(f) {
			b.WriteString(onStyle.Render("● " + string(f)))
		} else {
			b.WriteString(offStyle.Render("○ " + string(f)))
		}
		b.WriteString("  ")
	}
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	for i, r := range m.history {
		line := decisionStyles[r.outcome.Decision].Render(r.String())
		if i == m.selected {
			line = selectedStyle.Render("> " + r.String())
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter inspect • :feature toggle • ↑/↓ history • enter on empty re-open • esc quit"))
	return b.String()
}

func runInteractive(ov *assetoverlay.Overlay, toggles *config.Toggles, assets string) error {
	p := tea.NewProgram(newInteractiveModel(ov, toggles, assets), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
