package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"stackc/internal/driver"
	"stackc/internal/ui"
)

type buildOutcome struct {
	out *driver.Output
	err error
}

// buildWithUI runs driver.Build while a progress model renders its events.
func buildWithUI(ctx context.Context, title string, files []string, opts driver.Options) (*driver.Output, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan buildOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		out, err := driver.Build(ctx, files, opts)
		outcomeCh <- buildOutcome{out: out, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep the build from blocking on a full channel
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.out, uiErr
	}
	return outcome.out, outcome.err
}
