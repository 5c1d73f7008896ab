package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/events"
	"github.com/docker/docker/api/types/filters"
	"github.com/rs/zerolog"

	"github.com/auto-dns/docker-hostmanager/internal/domain"
)

const eventBufferSize = 100

// DockerSource adapts the docker daemon's event stream and inspect API to
// the engine's view of the world.
type DockerSource struct {
	logger zerolog.Logger
	cli    dockerClient
}

func NewDockerSource(cli dockerClient, logger zerolog.Logger) *DockerSource {
	return &DockerSource{
		logger: logger,
		cli:    cli,
	}
}

// Subscribe starts pumping container events until ctx is cancelled. The
// returned channel is closed when the pump exits. Lost daemon connections
// are retried with exponential backoff; after every reconnect a resync
// event is emitted so the consumer can repair whatever was missed while
// the stream was down.
func (s *DockerSource) Subscribe(ctx context.Context) (<-chan domain.ContainerEvent, error) {
	out := make(chan domain.ContainerEvent, eventBufferSize)
	go s.pump(ctx, out)
	return out, nil
}

func (s *DockerSource) pump(ctx context.Context, out chan<- domain.ContainerEvent) {
	defer close(out)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 30 * time.Second
	policy.MaxElapsedTime = 0

	reconnect := false
	for {
		if ctx.Err() != nil {
			return
		}
		if reconnect {
			wait := policy.NextBackOff()
			s.logger.Warn().Dur("backoff", wait).Msg("docker event stream lost, reconnecting")
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return
			}
		}

		handled, err := s.stream(ctx, out, reconnect)
		if err == nil {
			return
		}
		s.logger.Error().Err(err).Msg("docker event stream error")
		if handled > 0 {
			policy.Reset()
		}
		reconnect = true
	}
}

// stream consumes one connection worth of daemon events. A nil error means
// context cancellation; anything else asks the pump for a reconnect.
func (s *DockerSource) stream(ctx context.Context, out chan<- domain.ContainerEvent, resync bool) (int, error) {
	msgCh, errCh := s.cli.Events(ctx, events.ListOptions{Filters: eventFilters()})

	if resync {
		select {
		case out <- domain.ContainerEvent{Type: domain.EventTypeResync}:
		case <-ctx.Done():
			return 0, nil
		}
	}

	handled := 0
	for {
		select {
		case <-ctx.Done():
			return handled, nil
		case err, ok := <-errCh:
			if !ok {
				return handled, errors.New("docker error channel closed")
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return handled, nil
			}
			return handled, err
		case msg, ok := <-msgCh:
			if !ok {
				return handled, errors.New("docker event channel closed")
			}
			handled++
			evt, err := fromEventsMessage(msg)
			if err != nil {
				var unsupported *UnsupportedEventTypeError
				if errors.As(err, &unsupported) {
					s.logger.Debug().Err(err).Msg("skipping docker event")
				} else {
					s.logger.Error().Err(err).Msg("converting docker event")
				}
				continue
			}
			s.logger.Debug().
				Str("container_id", evt.ContainerId).
				Str("container_name", evt.Name).
				Str("event_type", string(evt.Type)).
				Msg("docker event received")
			select {
			case out <- evt:
			case <-ctx.Done():
				return handled, nil
			}
		}
	}
}

func eventFilters() filters.Args {
	args := filters.NewArgs()
	args.Add("type", string(events.ContainerEventType))
	args.Add("type", string(events.NetworkEventType))
	args.Add("event", string(events.ActionStart))
	args.Add("event", string(events.ActionStop))
	args.Add("event", string(events.ActionDie))
	args.Add("event", string(events.ActionDestroy))
	args.Add("event", string(events.ActionPause))
	args.Add("event", string(events.ActionUnPause))
	args.Add("event", string(events.ActionConnect))
	args.Add("event", string(events.ActionDisconnect))
	return args
}

func (s *DockerSource) ListRunningIds(ctx context.Context) ([]string, error) {
	containers, err := s.cli.ContainerList(ctx, container.ListOptions{All: false})
	if err != nil {
		return nil, fmt.Errorf("listing containers: %w", err)
	}
	ids := make([]string, 0, len(containers))
	for _, c := range containers {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (s *DockerSource) Inspect(ctx context.Context, id string) (domain.Container, error) {
	resp, err := s.cli.ContainerInspect(ctx, id)
	if err != nil {
		return domain.Container{}, fmt.Errorf("inspecting container %s: %w", id, err)
	}
	return fromInspect(resp), nil
}

func (s *DockerSource) Close() error {
	return s.cli.Close()
}
