package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dunamismax/avatarforge/internal/batch"
	"github.com/dunamismax/avatarforge/internal/cutout"
	"github.com/dunamismax/avatarforge/internal/domain"
)

// Model renders batch progress until the updates channel is closed.
type Model struct {
	title    string
	updates  <-chan batch.ProgressUpdate
	started  time.Time
	width    int
	total    int
	done     int
	failed   int
	skipped  int
	circular int
	last     string
	quitting bool
}

type doneMsg struct{}

type updateMsg batch.ProgressUpdate

func NewModel(title string, total int, updates <-chan batch.ProgressUpdate) Model {
	return Model{title: title, total: total, updates: updates, started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return listenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		if msg.Total > 0 {
			m.total = msg.Total
		}
		if msg.Done > m.done {
			m.done = msg.Done
		}
		switch msg.Outcome.Status() {
		case domain.StatusFailed:
			m.failed++
		case domain.StatusSkipped:
			m.skipped++
		}
		if msg.Outcome.Shape == cutout.ShapeCircular.String() {
			m.circular++
		}
		m.last = msg.Outcome.Task.Name
		return m, listenForUpdates(m.updates)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	ratio := 0.0
	if m.total > 0 {
		ratio = math.Min(1, float64(m.done)/float64(m.total))
	}

	elapsed := time.Since(m.started).Round(time.Millisecond)
	counts := dimStyle.Render(fmt.Sprintf("  circular:%d skipped:%d", m.circular, m.skipped))
	if m.failed > 0 {
		counts += errorStyle.Render(fmt.Sprintf(" failed:%d", m.failed))
	}

	lines := []string{
		titleStyle.Render(m.title),
		labelStyle.Render(fmt.Sprintf("Logos: %d/%d", m.done, m.total)) + counts,
		dimStyle.Render(fmt.Sprintf("Last: %s", m.last)),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		barStyle.Render(renderBar(barWidth, ratio)),
	}
	return strings.Join(lines, "\n")
}

func listenForUpdates(updates <-chan batch.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(update)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}
