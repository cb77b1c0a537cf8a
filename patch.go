package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/hsaccess/hsapatcher/patcher"
)

type patchOptions struct {
	Dir        string
	Channel    string
	URL        string
	DryRun     bool
	NoProgress bool
}

// runPatch finds the installation, downloads the archive and applies it.
func (a *app) runPatch(ctx context.Context, opts patchOptions, out io.Writer) error {
	prev := slog.Default()
	slog.SetDefault(prev.With("run", uuid.NewString()))
	defer slog.SetDefault(prev)

	target, err := resolveTarget(opts.Dir)
	if err != nil {
		return err
	}
	src, err := a.resolveSource(opts)
	if err != nil {
		return err
	}

	slog.Info("Starting patch", "dir", target.Root(), "channel", src.Name, "url", src.URL)
	fmt.Fprintf(out, "Installation: %s\n", target.Root())
	fmt.Fprintf(out, "Channel: %s, at %s\n", src.Name, src.URL)

	var onProgress patcher.ProgressFunc
	var presenter *progressPresenter
	if !opts.NoProgress {
		presenter = newProgressPresenter(out)
		onProgress = presenter.Update
	}
	archive, err := a.cfg.Fetcher().Fetch(ctx, src.URL, onProgress)
	if presenter != nil {
		presenter.Finish(err == nil)
	}
	if err != nil {
		return fmt.Errorf("downloading patch: %w", err)
	}

	if opts.DryRun {
		files, err := patcher.Plan(archive)
		if err != nil {
			return fmt.Errorf("reading patch: %w", err)
		}
		for _, f := range files {
			fmt.Fprintln(out, f)
		}
		fmt.Fprintf(out, "%d files would be patched\n", len(files))
		return nil
	}

	result, err := patcher.Apply(ctx, archive, target)
	if err != nil {
		if len(result.Files) > 0 {
			slog.Warn("Patch applied partially", "files", len(result.Files))
		}
		color.New(color.FgRed).Fprintln(out, "Patching failed. Run the patcher again to repair the installation.")
		return fmt.Errorf("applying patch: %w", err)
	}

	color.New(color.FgGreen).Fprintf(out, "Hearthstone patched: %d files, %d bytes\n", len(result.Files), result.Bytes)
	return nil
}

// resolveTarget validates an explicit directory, or discovers one.
func resolveTarget(dir string) (patcher.Target, error) {
	if dir == "" {
		found, ok := patcher.NewLocator().Find()
		if !ok {
			return patcher.Target{}, fmt.Errorf("%w; use --dir or set %s",
				&patcher.InvalidTargetError{}, patcher.HomeEnv)
		}
		dir = found
	}
	return patcher.NewTarget(dir)
}

func (a *app) resolveSource(opts patchOptions) (patcher.Source, error) {
	if opts.URL != "" {
		return patcher.Source{Name: "custom", URL: opts.URL}, nil
	}

	channel := opts.Channel
	if channel == "" {
		channel = a.cfg.Channel
	}
	src, ok := patcher.LookupSource(channel)
	if !ok {
		var names []string
		for _, s := range patcher.Sources() {
			names = append(names, fmt.Sprintf("%q", s.Name))
		}
		return patcher.Source{}, fmt.Errorf("unknown channel %q, choose one of %s", channel, strings.Join(names, ", "))
	}
	return src, nil
}
