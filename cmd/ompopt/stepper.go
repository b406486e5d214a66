package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pmezard/go-difflib/difflib"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	addedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	removedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	hunkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// header and footer lines around the viewport.
const chromeHeight = 4

type stepperModel struct {
	steps    []snapshot
	viewport viewport.Model
	current  int
	diff     bool
	ready    bool
}

func newStepperModel(steps []snapshot) *stepperModel {
	return &stepperModel{steps: steps}
}

func (m *stepperModel) Init() tea.Cmd {
	return nil
}

func (m *stepperModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "right", "l", "n":
			if m.current < len(m.steps)-1 {
				m.current++
				m.refresh()
			}
			return m, nil

		case "left", "h", "p":
			if m.current > 0 {
				m.current--
				m.refresh()
			}
			return m, nil

		case "home", "g":
			m.current = 0
			m.refresh()
			return m, nil

		case "end", "G":
			m.current = len(m.steps) - 1
			m.refresh()
			return m, nil

		case "d":
			m.diff = !m.diff
			m.refresh()
			return m, nil
		}

	case tea.WindowSizeMsg:
		height := max(msg.Height-chromeHeight, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
			m.refresh()
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *stepperModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.content())
	m.viewport.GotoTop()
}

// content is the IR of the current step, or its diff against the previous
// step.
func (m *stepperModel) content() string {
	cur := m.steps[m.current]
	if !m.diff || m.current == 0 {
		return cur.text
	}
	return colorDiff(stepDiff(m.steps[m.current-1].text, cur.text))
}

func (m *stepperModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("ompopt step"))
	b.WriteString(" ")
	b.WriteString(stepStyle.Render(fmt.Sprintf("%d/%d", m.current, len(m.steps)-1)))
	b.WriteString(" ")
	b.WriteString(m.steps[m.current].title)
	if m.diff {
		b.WriteString(" [diff]")
	}
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("←/→ step • ↑/↓ scroll • d diff • g/G first/last • q quit"))
	return b.String()
}

// stepDiff returns a unified diff between two IR texts.
func stepDiff(a, b string) string {
	d, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "before",
		ToFile:   "after",
		Context:  3,
	})
	if err != nil {
		return err.Error()
	}
	if d == "" {
		return "(no change)\n"
	}
	return d
}

func colorDiff(d string) string {
	lines := strings.Split(strings.TrimSuffix(d, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "@@"):
			lines[i] = hunkStyle.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = addedStyle.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = removedStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func runStepper(steps []snapshot) error {
	p := tea.NewProgram(newStepperModel(steps), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
