package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auto-dns/docker-hostmanager/internal/hosts"
)

func entry(hostname, ip, containerId string) hosts.Entry {
	return hosts.Entry{Hostname: hostname, IP: ip, ContainerId: containerId, ContainerName: containerId}
}

func TestSnapshotFirstSeenOrder(t *testing.T) {
	s := NewStore()
	s.Upsert("web-id", "web", []hosts.Entry{
		entry("web.myapp", "172.18.0.2", "web-id"),
		entry("www.myapp", "172.18.0.2", "web-id"),
	})
	s.Upsert("db-id", "db", []hosts.Entry{
		entry("db.myapp", "172.18.0.3", "db-id"),
		entry("database.myapp", "172.18.0.3", "db-id"),
	})

	snap, collisions := s.Snapshot()
	require.Empty(t, collisions)
	require.Len(t, snap, 4)
	assert.Equal(t, "web.myapp", snap[0].Hostname)
	assert.Equal(t, "www.myapp", snap[1].Hostname)
	assert.Equal(t, "db.myapp", snap[2].Hostname)
	assert.Equal(t, "database.myapp", snap[3].Hostname)

	// An update must not move the container out of first-seen order.
	s.Upsert("web-id", "web", []hosts.Entry{
		entry("web.myapp", "172.18.0.9", "web-id"),
	})
	snap, _ = s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "web.myapp", snap[0].Hostname)
	assert.Equal(t, "172.18.0.9", snap[0].IP)
	assert.Equal(t, []string{"web-id", "db-id"}, s.Ids())
}

func TestSnapshotIsRepeatable(t *testing.T) {
	s := NewStore()
	s.Upsert("a", "alpha", []hosts.Entry{entry("alpha.net", "10.0.0.1", "a")})
	s.Upsert("b", "beta", []hosts.Entry{entry("beta.net", "10.0.0.2", "b")})

	first, _ := s.Snapshot()
	second, _ := s.Snapshot()
	assert.Equal(t, first, second)
}

func TestRemove(t *testing.T) {
	s := NewStore()
	s.Upsert("a", "alpha", []hosts.Entry{entry("alpha.net", "10.0.0.1", "a")})
	s.Upsert("b", "beta", []hosts.Entry{entry("beta.net", "10.0.0.2", "b")})

	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"), "second removal of the same id")
	assert.False(t, s.Remove("never-seen"))

	snap, _ := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "beta.net", snap[0].Hostname)
	assert.Equal(t, []string{"b"}, s.Ids())
}

func TestSnapshotCollisionLastResolvedWins(t *testing.T) {
	s := NewStore()
	s.Upsert("old", "db-old", []hosts.Entry{entry("db.myapp", "172.18.0.3", "old")})
	s.Upsert("new", "db-new", []hosts.Entry{entry("db.myapp", "172.18.0.7", "new")})

	snap, collisions := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "172.18.0.7", snap[0].IP)
	assert.Equal(t, "new", snap[0].ContainerId)

	require.Len(t, collisions, 1)
	assert.Equal(t, "db.myapp", collisions[0].Hostname)
	assert.Equal(t, "172.18.0.7", collisions[0].Winner.IP)
	assert.Equal(t, "172.18.0.3", collisions[0].Loser.IP)
}

func TestSnapshotCollisionReupsertedEarlierContainerWins(t *testing.T) {
	s := NewStore()
	s.Upsert("first", "db-first", []hosts.Entry{entry("db.myapp", "172.18.0.3", "first")})
	s.Upsert("second", "db-second", []hosts.Entry{entry("db.myapp", "172.18.0.7", "second")})
	// The first-seen container resolves again and becomes the newest claim.
	s.Upsert("first", "db-first", []hosts.Entry{entry("db.myapp", "172.18.0.3", "first")})

	snap, collisions := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "172.18.0.3", snap[0].IP)
	assert.Equal(t, "first", snap[0].ContainerId)
	require.Len(t, collisions, 1)
	assert.Equal(t, "first", collisions[0].Winner.ContainerId)
}

func TestSnapshotSameAddressDuplicateIsNotACollision(t *testing.T) {
	s := NewStore()
	s.Upsert("a", "web", []hosts.Entry{entry("shared.myapp", "172.18.0.2", "a")})
	s.Upsert("b", "web-replica", []hosts.Entry{entry("shared.myapp", "172.18.0.2", "b")})

	snap, collisions := s.Snapshot()
	assert.Empty(t, collisions)
	require.Len(t, snap, 1)
	assert.Equal(t, "a", snap[0].ContainerId)
}
