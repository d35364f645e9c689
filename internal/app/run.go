package app

import (
	"context"
	"fmt"

	"github.com/vk/dispatchgo/internal/ctxlog"
	"github.com/vk/dispatchgo/internal/dispatch"
	"github.com/zclconf/go-cty/cty"
)

// Run executes the configured dispatch and renders its rows.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Warn("Failed to close engine connection.", "error", err)
		}
	}()

	args := make([]dispatch.Arg, 0, len(a.config.Named)+2)
	if len(a.config.Args) > 0 {
		positional := make([]cty.Value, len(a.config.Args))
		for i, s := range a.config.Args {
			positional[i] = ParseValue(s)
		}
		args = append(args, dispatch.Pos(positional...))
	}
	for _, n := range a.config.Named {
		args = append(args, dispatch.Named(n.Name, ParseValue(n.Value)))
	}
	if a.config.Channel != "" {
		args = append(args, dispatch.Channel(a.config.Channel))
	}

	res, err := a.dispatcher.Dispatch(ctx, a.config.API, a.config.Method, ParseValue(a.config.Subject), args...)
	if err != nil {
		return fmt.Errorf("dispatch failed: %w", err)
	}
	if res.Short > 0 {
		a.logger.Warn("Some rows were shorter than the result schema.", "short_rows", res.Short)
	}

	if err := render(a.outW, a.config.Format, res); err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}
