package memengine

import (
	"context"
	"errors"

	"github.com/vk/dispatchgo/internal/config"
	"github.com/vk/dispatchgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// FromConfig builds an engine serving the methods and macro table of cfg.
// Each method writes its configured entries into the call's channel, then
// fails if the method declares a failure message.
func FromConfig(ctx context.Context, cfg *config.Engine) *Engine {
	logger := ctxlog.FromContext(ctx)
	e := New()
	if cfg == nil {
		logger.Debug("No engine configuration, starting empty.")
		return e
	}

	e.SetMacros(cfg.Macros...)
	for _, m := range cfg.Methods {
		e.Register(m.API, m.Name, &Method{
			Formal:  m.Formal,
			Returns: m.Returns,
			Proc:    replay(m),
		})
	}
	logger.Debug("In-memory engine loaded.", "methods", len(cfg.Methods), "macros", len(cfg.Macros))
	return e
}

func replay(m *config.Method) Procedure {
	return func(ctx context.Context, w *ChannelWriter, _ cty.Value, _ []cty.Value) error {
		for _, entry := range m.Entries {
			w.Set(entry.Key, entry.Fields...)
		}
		ctxlog.FromContext(ctx).Debug("Replayed configured entries.", "channel", w.Name(), "entries", len(m.Entries))
		if m.Fail != "" {
			return errors.New(m.Fail)
		}
		return nil
	}
}
