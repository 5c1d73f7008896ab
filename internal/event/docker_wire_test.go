package event

import (
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/events"
	"github.com/docker/docker/api/types/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auto-dns/docker-hostmanager/internal/domain"
)

func TestFromEventsMessageContainerActions(t *testing.T) {
	tests := []struct {
		action events.Action
		want   domain.EventType
	}{
		{events.ActionStart, domain.EventTypeContainerStarted},
		{events.ActionUnPause, domain.EventTypeContainerStarted},
		{events.ActionStop, domain.EventTypeContainerStopped},
		{events.ActionPause, domain.EventTypeContainerStopped},
		{events.ActionDie, domain.EventTypeContainerDied},
		{events.ActionDestroy, domain.EventTypeContainerDestroyed},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			msg := events.Message{
				Type:   events.ContainerEventType,
				Action: tt.action,
				Actor: events.Actor{
					ID:         "abc123",
					Attributes: map[string]string{"name": "web"},
				},
			}
			evt, err := fromEventsMessage(msg)
			require.NoError(t, err)
			assert.Equal(t, "abc123", evt.ContainerId)
			assert.Equal(t, "web", evt.Name)
			assert.Equal(t, tt.want, evt.Type)
		})
	}
}

func TestFromEventsMessageUnsupported(t *testing.T) {
	tests := []struct {
		name string
		msg  events.Message
	}{
		{
			name: "kill is ignored",
			msg: events.Message{
				Type:   events.ContainerEventType,
				Action: events.ActionKill,
				Actor:  events.Actor{ID: "abc123"},
			},
		},
		{
			name: "create is ignored",
			msg: events.Message{
				Type:   events.ContainerEventType,
				Action: events.ActionCreate,
				Actor:  events.Actor{ID: "abc123"},
			},
		},
		{
			name: "image events are ignored",
			msg: events.Message{
				Type:   events.ImageEventType,
				Action: events.ActionPull,
			},
		},
		{
			name: "network event without container attribute",
			msg: events.Message{
				Type:   events.NetworkEventType,
				Action: events.ActionConnect,
				Actor:  events.Actor{ID: "net-id", Attributes: map[string]string{"name": "myapp"}},
			},
		},
		{
			name: "network create is ignored",
			msg: events.Message{
				Type:   events.NetworkEventType,
				Action: events.ActionCreate,
				Actor:  events.Actor{ID: "net-id"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromEventsMessage(tt.msg)
			require.Error(t, err)
			assert.IsType(t, &UnsupportedEventTypeError{}, err)
		})
	}
}

func TestFromEventsMessageNetworkMembership(t *testing.T) {
	for _, action := range []events.Action{events.ActionConnect, events.ActionDisconnect} {
		t.Run(string(action), func(t *testing.T) {
			msg := events.Message{
				Type:   events.NetworkEventType,
				Action: action,
				Actor: events.Actor{
					ID:         "net-id",
					Attributes: map[string]string{"name": "myapp", "container": "abc123"},
				},
			}
			evt, err := fromEventsMessage(msg)
			require.NoError(t, err)
			assert.Equal(t, "abc123", evt.ContainerId, "container id comes from the attributes, not the actor")
			assert.Equal(t, domain.EventTypeContainerStarted, evt.Type)
		})
	}
}

func TestFromInspect(t *testing.T) {
	resp := container.InspectResponse{
		ContainerJSONBase: &container.ContainerJSONBase{
			ID:    "abc123",
			Name:  "/web",
			State: &container.State{Running: true},
		},
		Config: &container.Config{
			Env: []string{"PATH=/usr/bin", "DOMAIN_NAME=api.local,default:admin.local"},
		},
		NetworkSettings: &container.NetworkSettings{
			DefaultNetworkSettings: container.DefaultNetworkSettings{IPAddress: "172.17.0.2"},
			Networks: map[string]*network.EndpointSettings{
				"zeta":  {IPAddress: "10.0.1.2", Aliases: []string{"z"}},
				"alpha": {IPAddress: "10.0.0.2"},
			},
		},
	}

	c := fromInspect(resp)

	assert.Equal(t, "abc123", c.Id)
	assert.Equal(t, "web", c.Name, "leading slash is stripped")
	assert.True(t, c.Running)
	assert.Equal(t, "172.17.0.2", c.LegacyIP)
	assert.Equal(t, []domain.NetworkAttachment{
		{Name: "alpha", IP: "10.0.0.2", Aliases: []string{}},
		{Name: "zeta", IP: "10.0.1.2", Aliases: []string{"z"}},
	}, c.Networks, "attachments are ordered by network name")
	assert.Equal(t, []string{"api.local", "default:admin.local"}, c.Domains)
}

func TestFromInspectSparseResponse(t *testing.T) {
	c := fromInspect(container.InspectResponse{})
	assert.Empty(t, c.Id)
	assert.False(t, c.Running)
	assert.Empty(t, c.Networks)
	assert.Empty(t, c.Domains)
}

func TestDomainsFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  []string
		want []string
	}{
		{"absent", []string{"PATH=/usr/bin"}, nil},
		{"single", []string{"DOMAIN_NAME=api.local"}, []string{"api.local"}},
		{"several with spaces", []string{"DOMAIN_NAME=api.local, admin.local"}, []string{"api.local", " admin.local"}},
		{"qualified", []string{"DOMAIN_NAME=backend:api.local"}, []string{"backend:api.local"}},
		{"no env at all", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domainsFromEnv(tt.env))
		})
	}
}
