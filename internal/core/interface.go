package core

import (
	"context"

	"github.com/auto-dns/docker-hostmanager/internal/domain"
	"github.com/auto-dns/docker-hostmanager/internal/hosts"
)

type eventSource interface {
	Subscribe(ctx context.Context) (<-chan domain.ContainerEvent, error)
	ListRunningIds(ctx context.Context) ([]string, error)
	Inspect(ctx context.Context, containerId string) (domain.Container, error)
}

type sink interface {
	Flush(ctx context.Context, entries []hosts.Entry) error
}
