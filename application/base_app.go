// Package application runs the chat service: it owns the samber/do container,
// the HTTP server and the init / run / graceful shutdown lifecycle.
package application

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/KOMKZ/go-yogan-chat/config"
	"github.com/KOMKZ/go-yogan-chat/di"
	"github.com/KOMKZ/go-yogan-chat/logger"
	"github.com/samber/do/v2"
	"go.uber.org/zap"
)

// BaseApplication holds the container and the state machine shared by every entry point
type BaseApplication struct {
	injector *do.RootScope

	appConfig    *AppConfig
	logger       *logger.CtxZapLogger
	configLoader *config.Loader

	ctx    context.Context
	cancel context.CancelFunc
	state  AppState
	mu     sync.RWMutex

	startedAt time.Time

	onSetup    func(*BaseApplication) error
	onReady    func(*BaseApplication) error
	onShutdown func(context.Context) error
}

type AppState int

const (
	StateInit AppState = iota
	StateSetup
	StateRunning
	StateStopping
	StateStopped
)

func (s AppState) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateSetup:
		return "Setup"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// NewBase registers every provider and loads the configuration and the core logger.
// Nothing else is built until Setup.
func NewBase(opts di.ConfigOptions) (*BaseApplication, error) {
	injector := do.New()
	di.RegisterCoreProviders(injector, opts)

	loader, err := do.Invoke[*config.Loader](injector)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	appCfg := DefaultAppConfig()
	if err := loader.Unmarshal(&appCfg); err != nil {
		return nil, fmt.Errorf("decode app config: %w", err)
	}
	appCfg.ApplyDefaults()
	if appCfg.App.Env == "" {
		appCfg.App.Env = opts.Env
	}
	if appCfg.App.Env == "" {
		appCfg.App.Env = config.GetEnv()
	}
	if err := appCfg.Validate(); err != nil {
		return nil, err
	}

	logMgr, err := do.Invoke[*logger.Manager](injector)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	coreLogger := logMgr.Logger("app")

	ctx, cancel := context.WithCancel(context.Background())
	coreLogger.DebugCtx(ctx, "application initialized",
		zap.String("config_path", opts.ConfigPath),
		zap.Strings("config_files", loader.LoadedFiles()),
		zap.String("env", appCfg.App.Env))

	return &BaseApplication{
		injector:     injector,
		appConfig:    &appCfg,
		logger:       coreLogger,
		configLoader: loader,
		ctx:          ctx,
		cancel:       cancel,
		state:        StateInit,
		startedAt:    time.Now(),
	}, nil
}

// Setup starts the core components, then runs the OnSetup callback
func (b *BaseApplication) Setup() error {
	b.setState(StateSetup)

	if err := di.StartCoreComponents(b.ctx, b.injector, b.logger); err != nil {
		return fmt.Errorf("start core components: %w", err)
	}

	if b.onSetup != nil {
		if err := b.onSetup(b); err != nil {
			return fmt.Errorf("onSetup failed: %w", err)
		}
	}
	return nil
}

// Shutdown runs OnShutdown, then shuts the container down. samber/do stops
// dependents before their dependencies: event pool, cache, redis, database, logger.
func (b *BaseApplication) Shutdown(timeout time.Duration) error {
	b.setState(StateStopping)
	b.logger.DebugCtx(b.ctx, "starting graceful shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if b.onShutdown != nil {
		if err := b.onShutdown(ctx); err != nil {
			b.logger.ErrorCtx(ctx, "onShutdown callback failed", zap.Error(err))
		}
	}

	// the logger manager is shut down with the rest, so log first
	b.logger.InfoCtx(ctx, "application stopped", zap.Duration("uptime", time.Since(b.startedAt)))

	var err error
	if errs := b.injector.ShutdownWithContext(ctx); errs != nil {
		err = errs
	}
	b.setState(StateStopped)
	return err
}

// WaitShutdown blocks until SIGINT/SIGTERM or cancellation.
// A second signal during the graceful shutdown exits immediately.
func (b *BaseApplication) WaitShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		b.logger.InfoCtx(b.ctx, "shutdown signal received", zap.String("signal", sig.String()))
		b.cancel()

		go func() {
			sig := <-quit
			b.logger.WarnCtx(context.Background(), "second signal received, forcing exit", zap.String("signal", sig.String()))
			os.Exit(1)
		}()

	case <-b.ctx.Done():
		signal.Stop(quit)
		b.logger.DebugCtx(context.Background(), "context cancelled, starting graceful shutdown")
	}
}

// Cancel triggers shutdown programmatically
func (b *BaseApplication) Cancel() {
	b.cancel()
}

func (b *BaseApplication) OnSetup(fn func(*BaseApplication) error) *BaseApplication {
	b.onSetup = fn
	return b
}

func (b *BaseApplication) OnReady(fn func(*BaseApplication) error) *BaseApplication {
	b.onReady = fn
	return b
}

func (b *BaseApplication) OnShutdown(fn func(context.Context) error) *BaseApplication {
	b.onShutdown = fn
	return b
}

func (b *BaseApplication) Logger() *logger.CtxZapLogger {
	return b.logger
}

func (b *BaseApplication) ConfigLoader() *config.Loader {
	return b.configLoader
}

func (b *BaseApplication) Injector() *do.RootScope {
	return b.injector
}

func (b *BaseApplication) AppConfig() AppConfig {
	return *b.appConfig
}

func (b *BaseApplication) GetState() AppState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

func (b *BaseApplication) Context() context.Context {
	return b.ctx
}

func (b *BaseApplication) setState(state AppState) {
	b.mu.Lock()
	old := b.state
	b.state = state
	b.mu.Unlock()

	b.logger.DebugCtx(b.ctx, "state changed",
		zap.String("from", old.String()),
		zap.String("to", state.String()))
}
