package progressbar

import (
	"fmt"
	"os"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

// Bar wraps an mpb progress bar tracking resources processed during an
// extract or create run. It no-ops cleanly when disabled or when
// stderr isn't a terminal.
type Bar struct {
	container   *mpb.Progress
	bar         *mpb.Bar
	enabled     bool
	description string
}

var descLength = 20

// New creates a progress bar for total resources, enabled only if the
// caller requested it and stderr is a terminal.
func New(total int, enabled bool) *Bar {
	isTerm := isTerminal()

	b := &Bar{enabled: enabled && isTerm}
	if !b.enabled {
		return b
	}

	fmt.Fprintln(os.Stderr)

	container := mpb.New(
		mpb.WithOutput(os.Stderr),
		mpb.WithWidth(64),
		mpb.WithRefreshRate(100*time.Millisecond),
	)

	bar := container.New(int64(total),
		mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
		mpb.PrependDecorators(
			decor.Any(func(decor.Statistics) string {
				if len(b.description) > descLength {
					return b.description[:descLength-2] + ".."
				}
				return b.description
			}, decor.WC{W: descLength, C: decor.DindentRight}),
			decor.Name("  "),
			decor.CountersNoUnit("%d/%d", decor.WC{C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
		),
	)

	b.container = container
	b.bar = bar
	return b
}

// Update advances the bar to current and sets the label shown beside
// it (the extract and create commands pass a "resource N/total" counter).
func (b *Bar) Update(current int, description string) {
	if !b.enabled || b.bar == nil {
		return
	}
	b.description = description
	b.bar.SetCurrent(int64(current))
}

// Finish waits for the bar to render its final frame and shuts it
// down.
func (b *Bar) Finish() {
	if !b.enabled || b.container == nil {
		return
	}
	b.container.Wait()
	fmt.Fprintln(os.Stderr)
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
