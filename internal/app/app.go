package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vk/dispatchgo/internal/config"
	"github.com/vk/dispatchgo/internal/ctxlog"
	"github.com/vk/dispatchgo/internal/dispatch"
	"github.com/vk/dispatchgo/internal/memengine"
	"github.com/vk/dispatchgo/internal/remote"
	"github.com/vk/dispatchgo/internal/sioremote"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	model      *config.Model
	engine     remote.Engine
	closer     io.Closer
	dispatcher *dispatch.Dispatcher
}

// Option customizes an App.
type Option func(*App)

// WithEngine makes the App dispatch against e instead of selecting an
// engine from the configuration.
func WithEngine(e remote.Engine) Option {
	return func(a *App) { a.engine = e }
}

// NewApp is the constructor for the main application. Rows are rendered to
// outW and logs written to logW.
func NewApp(ctx context.Context, outW, logW io.Writer, cfg *Config, loader config.Loader, opts ...Option) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	a := &App{outW: outW, logger: logger, config: cfg, model: &config.Model{}}
	for _, opt := range opts {
		opt(a)
	}

	if cfg.ConfigPath != "" {
		model, err := loader.Load(ctx, cfg.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		a.model = model
		logger.Debug("Configuration loaded and translated into unified model.")
	}

	if err := a.selectEngine(ctx); err != nil {
		return nil, err
	}
	a.dispatcher = dispatch.New(a.engine, a.dispatchOptions(ctx)...)
	return a, nil
}

func (a *App) selectEngine(ctx context.Context) error {
	switch {
	case a.engine != nil:
		a.logger.Debug("Using injected engine.")
	case a.config.Offline:
		a.logger.Info("Running offline against the configured in-memory engine.")
		a.engine = memengine.FromConfig(ctx, a.model.Engine)
	default:
		client, err := sioremote.Connect(ctx, a.model.Remote)
		if err != nil {
			return fmt.Errorf("failed to connect to engine: %w", err)
		}
		a.engine = client
		a.closer = client
	}
	return nil
}

func (a *App) dispatchOptions(ctx context.Context) []dispatch.Option {
	logger := ctxlog.FromContext(ctx)
	prefix := dispatch.DefaultMacroPrefix
	macroFile := a.config.MacroFile

	var opts []dispatch.Option
	if d := a.model.Dispatch; d != nil {
		if d.MacroPrefix != nil {
			prefix = *d.MacroPrefix
		}
		if d.Channel != "" {
			opts = append(opts, dispatch.WithDefaultChannel(d.Channel))
		}
		opts = append(opts, dispatch.WithSignatureCache(d.CacheSignatures))
		if macroFile == "" && d.MacroFile != "" {
			macroFile = a.relativeToConfig(d.MacroFile)
		}
	}
	opts = append(opts, dispatch.WithMacroPrefix(prefix))

	if macroFile != "" {
		logger.Debug("Resolving macros from a local include file.", "path", macroFile)
		opts = append(opts, dispatch.WithMacroResolver(&dispatch.ScanResolver{
			Table:  remote.NewFileTable(macroFile),
			Prefix: prefix,
		}))
	}
	return opts
}

// relativeToConfig resolves a path written in a config file against the
// directory holding that file.
func (a *App) relativeToConfig(path string) string {
	if filepath.IsAbs(path) || a.config.ConfigPath == "" {
		return path
	}
	dir := a.config.ConfigPath
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	return filepath.Join(dir, path)
}

// Close releases the engine connection, if the App opened one.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
