package app

import (
	"context"
	"fmt"
	"os"
	"time"

	dockerCli "github.com/docker/docker/client"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/auto-dns/docker-hostmanager/internal/config"
	"github.com/auto-dns/docker-hostmanager/internal/core"
	"github.com/auto-dns/docker-hostmanager/internal/event"
	"github.com/auto-dns/docker-hostmanager/internal/hostsfile"
	"github.com/auto-dns/docker-hostmanager/internal/state"
)

// Options selects how a run behaves beyond what the config file carries.
type Options struct {
	// HostsPath is the file whose managed block is maintained. Empty means
	// preview mode: the block is printed to stdout instead.
	HostsPath string
	// Once performs a single inventory and write, then exits.
	Once bool
	// Guard watches the hosts file for outside edits and repairs them.
	Guard bool
}

type App struct {
	logger       zerolog.Logger
	dockerClient *dockerCli.Client
	source       *event.DockerSource
	engine       *core.Engine
	guard        *hostsfile.Guard
	once         bool
}

// New creates a new App by wiring up all dependencies.
func New(cfg *config.Config, opts Options, logger zerolog.Logger) (*App, error) {
	dockerClient, err := dockerCli.NewClientWithOpts(
		dockerCli.WithHost(cfg.DockerSocket),
		dockerCli.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}

	source := event.NewDockerSource(dockerClient, logger)
	store := state.NewStore()

	var engine *core.Engine
	if opts.HostsPath == "" {
		engine = core.NewEngine(logger, cfg, source, hostsfile.NewPreview(os.Stdout), store, opts.Once)
	} else {
		engine = core.NewEngine(logger, cfg, source, hostsfile.NewWriter(opts.HostsPath, logger), store, opts.Once)
	}

	var guard *hostsfile.Guard
	if opts.Guard && opts.HostsPath != "" {
		guard = hostsfile.NewGuard(opts.HostsPath, engine.Notify, logger)
	}

	return &App{
		logger:       logger,
		dockerClient: dockerClient,
		source:       source,
		engine:       engine,
		guard:        guard,
		once:         opts.Once,
	}, nil
}

// Run starts the engine and, when enabled, the hosts file guard, and
// blocks until ctx is cancelled or the engine finishes.
func (a *App) Run(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := a.dockerClient.Ping(pingCtx); err != nil {
		return fmt.Errorf("pinging docker daemon: %w", err)
	}

	a.logger.Info().Msg("application starting")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.engine.Run(ctx)
	})
	if a.guard != nil && !a.once {
		g.Go(func() error {
			// Best effort: a dead guard must not take the engine down.
			if err := a.guard.Run(ctx); err != nil {
				a.logger.Warn().Err(err).Msg("hosts file guard stopped")
			}
			return nil
		})
	}
	return g.Wait()
}

func (a *App) Close() error {
	if err := a.source.Close(); err != nil {
		return fmt.Errorf("close docker client: %w", err)
	}
	return nil
}
