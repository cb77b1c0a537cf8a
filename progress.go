package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hsaccess/hsapatcher/patcher"
	"github.com/schollz/progressbar/v3"
)

// progressPresenter draws download progress on the terminal. The bar is
// created on the first update, once it is known whether the length is.
type progressPresenter struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func newProgressPresenter(out io.Writer) *progressPresenter {
	return &progressPresenter{out: out}
}

func (p *progressPresenter) Update(pr patcher.Progress) {
	if p.bar == nil {
		p.bar = p.newBar(pr.Percent == patcher.Indeterminate)
	}
	var err error
	if pr.Percent == patcher.Indeterminate {
		err = p.bar.Set64(pr.Transferred)
	} else {
		err = p.bar.Set(pr.Percent)
	}
	if err != nil {
		slog.Debug("Drawing progress failed", "error", err)
	}
}

// Finish ends the bar's line. An incomplete transfer is left where it stopped.
func (p *progressPresenter) Finish(complete bool) {
	if p.bar == nil {
		return
	}
	if complete {
		if err := p.bar.Finish(); err != nil {
			slog.Debug("Drawing progress failed", "error", err)
		}
	}
	fmt.Fprintln(p.out)
}

func (p *progressPresenter) newBar(indeterminate bool) *progressbar.ProgressBar {
	opts := []progressbar.Option{
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("downloading"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100 * time.Millisecond),
	}
	if indeterminate {
		// Without a length the bar becomes a spinner with a byte counter.
		opts = append(opts, progressbar.OptionShowBytes(true))
		return progressbar.NewOptions64(-1, opts...)
	}
	return progressbar.NewOptions(100, opts...)
}
