package progress

import (
	"fmt"
	"io"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
)

// ConsoleWriter returns the ANSI aware stdout the bars render to.
func ConsoleWriter() io.Writer {
	return ansi.NewAnsiStdout()
}

// NewBar builds a progress bar for total items rendered to w.
func NewBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionFullWidth(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription(description),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

// BarListener advances bar once per event. Every Complete, Fail and Skip
// call stands for one item dealt with.
func BarListener(bar *progressbar.ProgressBar) func(Event) {
	return func(Event) {
		bar.Add(1)
	}
}
