package app

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/config"
	"github.com/ludo-technologies/jsboard/internal/server"
	"github.com/ludo-technologies/jsboard/service"
)

const shutdownTimeout = 5 * time.Second

// ServeConfig holds configuration for the watch-and-serve use case
type ServeConfig struct {
	Root   string
	Config *config.Config

	// Listener overrides Config.Server.Addr(); used when the caller
	// already bound a port
	Listener net.Listener

	// Ready is called with the dashboard URL once the server accepts
	// connections
	Ready func(url string)
}

// ServeUseCase keeps a snapshot fresh while serving it over HTTP
type ServeUseCase struct {
	adapters []domain.ToolAdapter
	runner   service.CommandRunner
	logger   *log.Logger
	browser  func(url string) error
}

// NewServeUseCase creates a serve use case. adapters may be nil for the
// production set.
func NewServeUseCase(adapters []domain.ToolAdapter, runner service.CommandRunner, logger *log.Logger) *ServeUseCase {
	return &ServeUseCase{
		adapters: adapters,
		runner:   runner,
		logger:   orDiscard(logger),
		browser:  service.OpenBrowser,
	}
}

// Execute runs until ctx is done. The server answers "not ready" until the
// first cycle completes; watcher errors never stop serving.
func (uc *ServeUseCase) Execute(ctx context.Context, cfg ServeConfig) error {
	if cfg.Config == nil {
		cfg.Config = config.DefaultConfig()
	}
	root, err := ResolveRoot(cfg.Config, cfg.Root)
	if err != nil {
		return domain.NewInvalidInputError("invalid analysis root", err)
	}
	ws, err := newWorkspace(cfg.Config, root, workspaceOptions{
		adapters: uc.adapters,
		runner:   uc.runner,
		logger:   uc.logger,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := service.NewRefreshLoop(ws.pipeline, cfg.Config.Watch.Debounce(), uc.logger)
	hub := service.NewBroadcaster()
	loop.OnPublish(hub.Publish)
	details, err := service.NewDetailService(loop, service.DefaultDetailCacheSize)
	if err != nil {
		return err
	}

	ln := cfg.Listener
	if ln == nil {
		ln, err = net.Listen("tcp", cfg.Config.Server.Addr())
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Config.Server.Addr(), err)
		}
	}
	srv := server.New(ln.Addr().String(), server.NewMux(server.Deps{
		Snapshots: loop,
		Details:   details,
		Status:    loop,
		Push:      hub,
		Logger:    uc.logger,
	}), uc.logger)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	if cfg.Config.Watch.Enabled {
		watcher, err := service.NewWatcher(ws.matcher, func(string) { loop.Notify() }, uc.logger)
		if err != nil {
			uc.logger.Error("file watching disabled", "err", err)
		} else {
			defer watcher.Close()
			if err := watcher.AddTree(root); err != nil {
				uc.logger.Error("cannot watch analysis root", "root", root, "err", err)
			}
			go watcher.Run(ctx)
		}
	}

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		loop.Run(ctx)
	}()

	url := "http://" + ln.Addr().String()
	uc.logger.Info("dashboard ready", "url", url, "root", root)
	if cfg.Ready != nil {
		cfg.Ready(url)
	}
	if cfg.Config.Server.OpenBrowser && !service.IsSSH() && service.IsInteractiveEnvironment() {
		if err := uc.browser(url); err != nil {
			uc.logger.Warn("cannot open browser", "err", err)
		}
	}

	var result error
	select {
	case <-ctx.Done():
	case result = <-serveErr:
		cancel()
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		uc.logger.Warn("server shutdown incomplete", "err", err)
	}
	<-loopDone
	return result
}
