package core

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/auto-dns/docker-hostmanager/internal/config"
	"github.com/auto-dns/docker-hostmanager/internal/domain"
	"github.com/auto-dns/docker-hostmanager/internal/state"
)

type engineState int32

const (
	stateIdle engineState = iota
	stateResolving
	stateDebouncing
	stateWriting
	stateStopped
)

func (s engineState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateResolving:
		return "resolving"
	case stateDebouncing:
		return "debouncing"
	case stateWriting:
		return "writing"
	case stateStopped:
		return "stopped"
	}
	return "unknown"
}

// Engine coordinates event ingestion, hostname resolution, state updates, and
// debounced publication of the resolved entries. Events are handled on a
// single control loop; the debounce timer flushes on its own goroutine, with
// the store's lock and the debouncer's run lock keeping snapshot and write
// serialized against mutation and against other writes.
type Engine struct {
	logger zerolog.Logger
	cfg    *config.Config
	source eventSource
	sink   sink
	store  *state.Store
	sched  *Debouncer
	once   bool

	state  atomic.Int32
	runCtx context.Context
}

func NewEngine(logger zerolog.Logger, cfg *config.Config, source eventSource, s sink, store *state.Store, once bool) *Engine {
	e := &Engine{
		logger: logger,
		cfg:    cfg,
		source: source,
		sink:   s,
		store:  store,
		once:   once,
		runCtx: context.Background(),
	}
	e.sched = NewDebouncer(cfg.Debounce(), func() {
		_ = e.flush(e.runCtx)
	})
	return e
}

// State reports where the engine sits in its processing cycle.
func (e *Engine) State() string {
	return engineState(e.state.Load()).String()
}

// Notify schedules a reconcile write without a container event. The file
// guard uses it when the target file changes underneath the manager.
func (e *Engine) Notify() {
	e.notify()
}

func (e *Engine) Run(ctx context.Context) error {
	e.runCtx = ctx
	e.logger.Info().Msg("Starting reconciliation engine")

	events, err := e.source.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribing to container events: %w", err)
	}

	e.logger.Info().Msg("Populating state from currently running containers")
	if err := e.reconcileAll(ctx); err != nil {
		if e.once {
			e.setState(stateStopped)
			return fmt.Errorf("initial container inventory: %w", err)
		}
		e.logger.Error().Err(err).Msg("Initial container inventory failed")
	}

	if e.once {
		e.sched.Stop()
		err := e.flush(ctx)
		e.setState(stateStopped)
		e.logger.Info().Msg("Single pass complete")
		return err
	}

	for {
		select {
		case <-ctx.Done():
			e.shutdown()
			return nil
		case evt, ok := <-events:
			if !ok {
				e.logger.Warn().Msg("Event stream closed")
				e.shutdown()
				return nil
			}
			e.handleEvent(ctx, evt)
		}
	}
}

// reconcileAll replaces the store contents with the engine's current view:
// every running container is inspected and upserted, and ids the engine no
// longer reports are dropped.
func (e *Engine) reconcileAll(ctx context.Context) error {
	e.setState(stateResolving)
	ids, err := e.source.ListRunningIds(ctx)
	if err != nil {
		e.setState(stateIdle)
		return fmt.Errorf("listing running containers: %w", err)
	}
	for _, id := range ids {
		c, err := e.source.Inspect(ctx, id)
		if err != nil {
			e.logger.Warn().Err(err).Str("container_id", id).Msg("Inspect failed during inventory, skipping container")
			continue
		}
		if !c.Running {
			e.store.Remove(id)
			continue
		}
		e.store.Upsert(c.Id, c.Name, ResolveHostnames(c, e.cfg.TLD, e.logger))
	}
	for _, id := range lo.Without(e.store.Ids(), ids...) {
		e.store.Remove(id)
		e.logger.Debug().Str("container_id", id).Msg("Dropped stale container during inventory")
	}
	e.notify()
	return nil
}

func (e *Engine) handleEvent(ctx context.Context, evt domain.ContainerEvent) {
	log := e.logger.With().Str("container_id", evt.ContainerId).Str("event", string(evt.Type)).Logger()
	switch {
	case evt.Type == domain.EventTypeResync:
		log.Info().Msg("Event stream re-established, reconciling all containers")
		if err := e.reconcileAll(ctx); err != nil {
			log.Error().Err(err).Msg("Resync failed")
		}
	case evt.Type == domain.EventTypeContainerStarted:
		e.setState(stateResolving)
		c, err := e.source.Inspect(ctx, evt.ContainerId)
		if err != nil {
			log.Warn().Err(err).Msg("Inspect failed, dropping event")
			e.setState(stateIdle)
			return
		}
		if !c.Running {
			// Started and already gone again.
			if e.store.Remove(evt.ContainerId) {
				e.notify()
			} else {
				e.setState(stateIdle)
			}
			return
		}
		entries := ResolveHostnames(c, e.cfg.TLD, log)
		e.store.Upsert(c.Id, c.Name, entries)
		log.Info().Msgf("Resolved %d hostname entries for container %s", len(entries), c.Name)
		e.notify()
	case evt.Type.Removal():
		if e.store.Remove(evt.ContainerId) {
			log.Info().Msgf("Removed entries for container %s", evt.Name)
			e.notify()
		} else {
			log.Debug().Msg("Ignoring event for unknown container")
		}
	default:
		log.Debug().Msg("Ignoring unsupported event type")
	}
}

func (e *Engine) notify() {
	e.setState(stateDebouncing)
	e.sched.Notify()
}

func (e *Engine) flush(ctx context.Context) error {
	e.setState(stateWriting)
	defer e.setState(stateIdle)
	entries, collisions := e.store.Snapshot()
	for _, c := range collisions {
		e.logger.Warn().
			Str("hostname", c.Hostname).
			Str("winner", fmt.Sprintf("%s (%s)", c.Winner.ContainerName, c.Winner.IP)).
			Str("loser", fmt.Sprintf("%s (%s)", c.Loser.ContainerName, c.Loser.IP)).
			Msg("Hostname claimed by multiple containers, most recent wins")
	}
	if err := e.sink.Flush(ctx, entries); err != nil {
		e.logger.Error().Err(err).Msg("Failed to publish hostname entries")
		return err
	}
	e.logger.Debug().Msgf("Published %d hostname entries", len(entries))
	return nil
}

// shutdown drains a pending flush so the file is not left stale relative to
// the last processed event.
func (e *Engine) shutdown() {
	if pending := e.sched.Stop(); pending {
		e.logger.Debug().Msg("Flushing pending write before shutdown")
		e.sched.FlushNow()
	}
	e.setState(stateStopped)
	e.logger.Info().Msg("Reconciliation engine stopped")
}

func (e *Engine) setState(s engineState) {
	old := engineState(e.state.Swap(int32(s)))
	if old != s {
		e.logger.Debug().Msgf("Engine state %s -> %s", old, s)
	}
}
