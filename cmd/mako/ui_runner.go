package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"mako/internal/buildpipeline"
	"mako/internal/ui"
)

// runBuildWithUI runs the build beside the progress display. The build
// closes the event channel when it returns, which ends the display.
func runBuildWithUI(ctx context.Context, title string, req *buildpipeline.CompileRequest) (buildpipeline.BuildResult, error) {
	events := make(chan buildpipeline.Event, 256)
	var (
		result   buildpipeline.BuildResult
		buildErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		defer close(events)
		reqCopy := *req
		reqCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		result, buildErr = buildpipeline.Build(ctx, &reqCopy)
		return nil
	})
	g.Go(func() error {
		program := tea.NewProgram(ui.NewProgressModel(title, events), tea.WithOutput(os.Stdout), tea.WithContext(ctx))
		if _, err := program.Run(); err != nil {
			// дренируем канал, чтобы сборка не заблокировалась
			for range events {
			}
			return err
		}
		return nil
	})
	uiErr := g.Wait()
	if buildErr != nil {
		return result, buildErr
	}
	return result, uiErr
}
