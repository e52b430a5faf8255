// Package progress renders a terminal progress display for an enrichment
// run while it owns the terminal.
package progress

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/hay-kot/commentrank/internal/core/styles"
	"github.com/hay-kot/commentrank/internal/enrich"
)

const (
	padding  = 2
	maxWidth = 80
)

type (
	startedMsg struct {
		total, cached int
	}
	processedMsg enrich.Outcome
	doneMsg      struct{}
)

// Model is the bubbletea model behind Display.
type Model struct {
	bar         progress.Model
	cancel      context.CancelFunc
	total       int
	cached      int
	processed   int
	counts      map[enrich.Status]int
	current     string
	interrupted bool
	finished    bool
}

// NewModel creates a model. cancel is called when the user presses ctrl+c.
func NewModel(cancel context.CancelFunc) Model {
	return Model{
		bar:    progress.New(progress.WithGradient(styles.ProgressStart, styles.ProgressEnd), progress.WithWidth(40)),
		cancel: cancel,
		counts: map[enrich.Status]int{},
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && !m.interrupted {
			m.interrupted = true
			if m.cancel != nil {
				m.cancel()
			}
		}
	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-padding*2-4, maxWidth)
	case startedMsg:
		m.total = msg.total
		m.cached = msg.cached
	case processedMsg:
		m.processed++
		m.counts[msg.Status]++
		m.current = msg.ID
	case doneMsg:
		m.finished = true
		return m, tea.Quit
	}
	return m, nil
}

// Done returns how many positions are settled, cached ones included.
func (m Model) Done() int {
	return m.cached + m.processed
}

func (m Model) percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.Done()) / float64(m.total)
}

func (m Model) View() string {
	if m.finished {
		return ""
	}

	pad := strings.Repeat(" ", padding)

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(pad + styles.TextPrimaryBold.Render("Fetching comment likes") + "\n\n")
	sb.WriteString(pad + m.bar.ViewAs(m.percent()) + "\n\n")

	counts := fmt.Sprintf("%s/%s", humanize.Comma(int64(m.Done())), humanize.Comma(int64(m.total)))
	sb.WriteString(pad + styles.TextBold.Render(counts) + "  " + styles.TextMuted.Render(fmt.Sprintf(
		"cached %s  fetched %s  not found %s",
		humanize.Comma(int64(m.cached+m.counts[enrich.StatusCached])),
		humanize.Comma(int64(m.counts[enrich.StatusFetched])),
		humanize.Comma(int64(m.counts[enrich.StatusNotFound])),
	)))
	if skipped := m.counts[enrich.StatusSkipped]; skipped > 0 {
		sb.WriteString("  " + styles.TextWarning.Render(fmt.Sprintf("skipped %s", humanize.Comma(int64(skipped)))))
	}
	sb.WriteString("\n")

	if m.current != "" {
		sb.WriteString(pad + styles.TextMuted.Render(styles.IconArrow+" "+m.current) + "\n")
	}

	sb.WriteString("\n")
	if m.interrupted {
		sb.WriteString(pad + styles.TextWarning.Render("stopping, saved progress is kept") + "\n")
	} else {
		sb.WriteString(pad + styles.TextMuted.Render("ctrl+c to stop, the next run resumes here") + "\n")
	}
	return sb.String()
}
