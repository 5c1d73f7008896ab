package event

import (
	"sort"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/events"
	"github.com/samber/lo"

	"github.com/auto-dns/docker-hostmanager/internal/domain"
)

// DomainEnvVar carries extra hostnames for a container, comma separated.
// Each item is either a bare hostname or network:hostname.
const DomainEnvVar = "DOMAIN_NAME"

// kill is deliberately absent: the daemon emits it for every signal
// delivered to a container, not just terminating ones. The die event
// covers actual exits.
var containerActions = map[events.Action]domain.EventType{
	events.ActionStart:   domain.EventTypeContainerStarted,
	events.ActionUnPause: domain.EventTypeContainerStarted,
	events.ActionStop:    domain.EventTypeContainerStopped,
	events.ActionPause:   domain.EventTypeContainerStopped,
	events.ActionDie:     domain.EventTypeContainerDied,
	events.ActionDestroy: domain.EventTypeContainerDestroyed,
}

func fromEventsMessage(msg events.Message) (domain.ContainerEvent, error) {
	switch msg.Type {
	case events.ContainerEventType:
		eventType, ok := containerActions[msg.Action]
		if !ok {
			return domain.ContainerEvent{}, NewUnsupportedEventTypeError(string(msg.Type), string(msg.Action))
		}
		return domain.ContainerEvent{
			ContainerId: msg.Actor.ID,
			Name:        msg.Actor.Attributes["name"],
			Type:        eventType,
		}, nil
	case events.NetworkEventType:
		if msg.Action != events.ActionConnect && msg.Action != events.ActionDisconnect {
			return domain.ContainerEvent{}, NewUnsupportedEventTypeError(string(msg.Type), string(msg.Action))
		}
		// The actor of a network event is the network; the container rides
		// along in the attributes. Membership changed, so re-inspect it the
		// same way a fresh start is handled.
		id := msg.Actor.Attributes["container"]
		if id == "" {
			return domain.ContainerEvent{}, NewUnsupportedEventTypeError(string(msg.Type), string(msg.Action))
		}
		return domain.ContainerEvent{
			ContainerId: id,
			Type:        domain.EventTypeContainerStarted,
		}, nil
	default:
		return domain.ContainerEvent{}, NewUnsupportedEventTypeError(string(msg.Type), string(msg.Action))
	}
}

func fromInspect(resp container.InspectResponse) domain.Container {
	c := domain.Container{}
	if resp.ContainerJSONBase != nil {
		c.Id = resp.ID
		c.Name = strings.TrimPrefix(resp.Name, "/")
		if resp.State != nil {
			c.Running = resp.State.Running
		}
	}
	if resp.NetworkSettings != nil {
		c.LegacyIP = resp.NetworkSettings.IPAddress
		// Map iteration order is random; sort so repeated inspects of the
		// same container always yield the same attachment order.
		names := lo.Keys(resp.NetworkSettings.Networks)
		sort.Strings(names)
		for _, name := range names {
			endpoint := resp.NetworkSettings.Networks[name]
			if endpoint == nil {
				continue
			}
			aliases := make([]string, len(endpoint.Aliases))
			copy(aliases, endpoint.Aliases)
			c.Networks = append(c.Networks, domain.NetworkAttachment{
				Name:    name,
				IP:      endpoint.IPAddress,
				Aliases: aliases,
			})
		}
	}
	if resp.Config != nil {
		c.Domains = domainsFromEnv(resp.Config.Env)
	}
	return c
}

func domainsFromEnv(env []string) []string {
	for _, kv := range env {
		if name, value, ok := strings.Cut(kv, "="); ok && name == DomainEnvVar {
			return strings.Split(value, ",")
		}
	}
	return nil
}
