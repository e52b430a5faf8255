package progress

import (
	"context"
	"errors"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/commentrank/internal/enrich"
)

// Display runs the progress model in its own goroutine. It implements
// enrich.Observer and io.Writer, so the driver can report to it and log
// lines can be printed above the bar.
type Display struct {
	program *tea.Program
	done    chan struct{}
	err     error
}

var _ enrich.Observer = (*Display)(nil)

// Start launches the display on out. cancel is called on ctrl+c; it should
// cancel the run, not ctx, so the display stays up while the run winds down.
func Start(ctx context.Context, cancel context.CancelFunc, in io.Reader, out io.Writer) *Display {
	d := &Display{
		program: tea.NewProgram(NewModel(cancel),
			tea.WithContext(ctx),
			tea.WithInput(in),
			tea.WithOutput(out),
			tea.WithoutSignalHandler(),
		),
		done: make(chan struct{}),
	}

	go func() {
		defer close(d.done)
		_, d.err = d.program.Run()
	}()

	return d
}

func (d *Display) Started(total, cached int) {
	d.program.Send(startedMsg{total: total, cached: cached})
}

func (d *Display) Processed(o enrich.Outcome) {
	d.program.Send(processedMsg(o))
}

// Write prints p above the progress bar.
func (d *Display) Write(p []byte) (int, error) {
	d.program.Println(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// Stop clears the display and waits for the program to exit.
func (d *Display) Stop() error {
	d.program.Send(doneMsg{})
	<-d.done
	if errors.Is(d.err, tea.ErrProgramKilled) {
		return nil
	}
	return d.err
}
