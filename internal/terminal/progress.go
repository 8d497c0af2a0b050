package terminal

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// Progress reports how many of a batch of torrent files have been processed. It is safe to call
// Step from several goroutines.
type Progress struct {
	bar *progressbar.ProgressBar
}

func NewProgress(total int, description string, w io.Writer) *Progress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "▓",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Progress{bar: bar}
}

// Step marks one more file as done.
func (p *Progress) Step() {
	_ = p.bar.Add(1)
}

// Close finishes the bar and moves past its line, so that output written afterwards starts clean.
func (p *Progress) Close() error {
	return p.bar.Finish()
}
