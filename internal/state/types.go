package state

import (
	"time"

	"github.com/auto-dns/docker-hostmanager/internal/hosts"
)

type containerRecord struct {
	ContainerId   string
	ContainerName string
	Entries       []hosts.Entry
	Seq           uint64
	LastUpdated   time.Time
}

// Collision reports two containers claiming the same hostname with different
// addresses. The winner is the most recently resolved claim and is the one
// present in the snapshot.
type Collision struct {
	Hostname string
	Winner   hosts.Entry
	Loser    hosts.Entry
}
