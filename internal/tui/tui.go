package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"marquee/internal/enrich"
)

// RunFunc executes the enrichment batch, reporting each finished title
// through onProgress. It blocks until the batch completes.
type RunFunc func(onProgress func(enrich.Event)) (enrich.Stats, error)

// progressMsg carries one pipeline event into the update loop.
type progressMsg enrich.Event

// doneMsg carries the final batch result.
type doneMsg struct {
	stats enrich.Stats
	err   error
}

// model is the live view of a running enrichment batch.
type model struct {
	total    int
	cancel   context.CancelFunc
	msgs     chan tea.Msg
	events   []enrich.Event
	created  int
	updated  int
	degraded int
	failed   int
	stats    enrich.Stats
	err      error
	done     bool
	quitting bool
	width    int
	height   int
}

func newModel(total int, cancel context.CancelFunc, msgs chan tea.Msg) model {
	return model{
		total:  total,
		cancel: cancel,
		msgs:   msgs,
	}
}

// waitForMsg relays the next pipeline message into the program.
func waitForMsg(msgs chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-msgs
	}
}

// Init starts listening for pipeline messages.
func (m model) Init() tea.Cmd {
	return waitForMsg(m.msgs)
}

// Update handles messages and updates the model accordingly.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			// Cancel the batch and wait for the pipeline to wind down; the
			// doneMsg still arrives and quits the program.
			m.quitting = true
			m.cancel()
		}

	case progressMsg:
		event := enrich.Event(msg)
		m.events = append(m.events, event)
		switch {
		case event.Err != nil:
			m.failed++
		case event.Created:
			m.created++
		default:
			m.updated++
		}
		if event.Degraded && event.Err == nil {
			m.degraded++
		}
		return m, waitForMsg(m.msgs)

	case doneMsg:
		m.done = true
		m.stats = msg.stats
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

// View renders the TUI.
func (m model) View() string {
	if m.done {
		return ""
	}

	docStyle := lipgloss.NewStyle().Margin(1, 2)
	headerStyle := lipgloss.NewStyle().Bold(true)
	createdStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	updatedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	degradedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	footerStyle := lipgloss.NewStyle().Faint(true)

	header := headerStyle.Render(fmt.Sprintf("🎬 Enriching %d titles", m.total))
	if m.quitting {
		header = headerStyle.Render("🎬 Cancelling after current title...")
	}

	rows := visibleEvents(m.events, m.height)
	body := ""
	for _, event := range rows {
		line := fmt.Sprintf("[%d/%d] %-32.32s", event.Index+1, event.Total, event.Title)
		switch {
		case event.Err != nil:
			body += failedStyle.Render(fmt.Sprintf("%s ✗ %v", line, event.Err)) + "\n"
		case event.Created:
			body += createdStyle.Render(line+" ✓ created") + renderFlags(event, degradedStyle) + "\n"
		default:
			body += updatedStyle.Render(line+" ✓ updated") + renderFlags(event, degradedStyle) + "\n"
		}
	}
	if len(rows) == 0 {
		body = footerStyle.Render("Waiting for the first title...") + "\n"
	}

	footer := footerStyle.Render(fmt.Sprintf(
		"%d/%d processed · %d created · %d updated · %d degraded · %d failed",
		len(m.events), m.total, m.created, m.updated, m.degraded, m.failed,
	))
	help := footerStyle.Render("[q] Cancel")

	return docStyle.Render(header + "\n\n" + body + "\n" + footer + "\n" + help)
}

// renderFlags appends degradation markers to a finished row.
func renderFlags(event enrich.Event, style lipgloss.Style) string {
	flags := ""
	if event.Fallback {
		flags += " " + style.Render("generated metadata")
	}
	if event.Degraded && !event.Fallback {
		flags += " " + style.Render("degraded copy")
	}
	return flags
}

// visibleEvents returns the tail of the event list that fits the terminal.
func visibleEvents(events []enrich.Event, height int) []enrich.Event {
	maxRows := height - 8
	if maxRows < 3 {
		maxRows = 3
	}
	if len(events) <= maxRows {
		return events
	}
	return events[len(events)-maxRows:]
}

// Watch runs the batch under a live terminal view and returns its result.
// Pressing q cancels the batch through the supplied cancel function.
func Watch(total int, cancel context.CancelFunc, fn RunFunc) (enrich.Stats, error) {
	msgs := make(chan tea.Msg, total+2)

	go func() {
		stats, err := fn(func(event enrich.Event) {
			msgs <- progressMsg(event)
		})
		msgs <- doneMsg{stats: stats, err: err}
	}()

	final, err := tea.NewProgram(newModel(total, cancel, msgs), tea.WithAltScreen()).Run()
	if err != nil {
		return enrich.Stats{}, fmt.Errorf("failed to run progress view: %w", err)
	}

	m := final.(model)
	return m.stats, m.err
}
