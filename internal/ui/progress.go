package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"golang.org/x/term"
)

// ShardProgress renders extraction progress as an in-place bar, or as
// plain status lines when stderr is not a terminal. Its Report method
// matches the extractor's progress callback signature.
type ShardProgress struct {
	bar    progress.Model
	writer io.Writer
	tty    bool
	mu     sync.Mutex
}

// NewShardProgress builds a progress renderer for stderr.
func NewShardProgress() *ShardProgress {
	var bar progress.Model
	if NoColor {
		bar = progress.New(
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		)
	} else {
		bar = progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		)
	}
	return &ShardProgress{
		bar:    bar,
		writer: os.Stderr,
		tty:    term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// Report draws one progress update. fraction is in [0, 1]; the bar line
// is terminated once fraction reaches 1.
func (p *ShardProgress) Report(fraction float64, message string) {
	if QuietMode {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.tty {
		Status("Scanning", fmt.Sprintf("%3.0f%%  %s", fraction*100, message))
		return
	}
	fmt.Fprintf(p.writer, "\r\033[K%s %3.0f%%  %s", p.bar.ViewAs(fraction), fraction*100, message)
	if fraction >= 1 {
		fmt.Fprintln(p.writer)
	}
}
