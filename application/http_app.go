package application

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-chat/di"
	"go.uber.org/zap"
)

// Application is the chat HTTP service
type Application struct {
	*BaseApplication

	httpServer *HTTPServer
}

func New(opts di.ConfigOptions) (*Application, error) {
	base, err := NewBase(opts)
	if err != nil {
		return nil, err
	}
	return &Application{BaseApplication: base}, nil
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts down gracefully
func (a *Application) Run(ctx context.Context) error {
	if err := a.RunNonBlocking(); err != nil {
		_ = a.BaseApplication.Shutdown(a.appConfig.HTTP.ShutdownTimeout)
		return err
	}

	stop := context.AfterFunc(ctx, a.Cancel)
	defer stop()

	a.WaitShutdown()
	return a.gracefulShutdown()
}

// RunNonBlocking sets up every component and starts the listener
func (a *Application) RunNonBlocking() error {
	if err := a.Setup(); err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	engine, err := NewEngine(*a.appConfig, a.injector)
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}
	a.httpServer = NewHTTPServer(engine, a.appConfig.HTTP, a.logger)
	if err := a.httpServer.Start(); err != nil {
		return err
	}

	a.setState(StateRunning)
	if a.onReady != nil {
		if err := a.onReady(a.BaseApplication); err != nil {
			return fmt.Errorf("onReady failed: %w", err)
		}
	}

	a.logger.InfoCtx(a.ctx, "chat service started",
		zap.String("name", a.appConfig.App.Name),
		zap.String("version", a.appConfig.App.Version),
		zap.String("env", a.appConfig.App.Env),
		zap.String("addr", a.httpServer.Addr().String()))
	return nil
}

// gracefulShutdown stops accepting requests before the container closes the stores
func (a *Application) gracefulShutdown() error {
	timeout := a.appConfig.HTTP.ShutdownTimeout
	if a.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.logger.ErrorCtx(ctx, "http server close failed", zap.Error(err))
		}
	}
	return a.BaseApplication.Shutdown(timeout)
}

func (a *Application) HTTPServer() *HTTPServer {
	return a.httpServer
}

func (a *Application) OnReady(fn func(*Application) error) *Application {
	a.BaseApplication.OnReady(func(*BaseApplication) error {
		return fn(a)
	})
	return a
}

func (a *Application) OnShutdown(fn func(context.Context, *Application) error) *Application {
	a.BaseApplication.OnShutdown(func(ctx context.Context) error {
		return fn(ctx, a)
	})
	return a
}
