package state

import (
	"sync"
	"time"

	"github.com/auto-dns/docker-hostmanager/internal/hosts"
)

// Store is the authoritative in-memory mapping of container id to resolved
// hostname entries. Iteration order for snapshots is ascending first-seen
// order, so an unchanged store renders byte-identical output.
type Store struct {
	mu      sync.RWMutex
	records map[string]*containerRecord
	order   []string // container ids, first-seen order
	seq     uint64
}

func NewStore() *Store {
	return &Store{
		records: make(map[string]*containerRecord),
	}
}

// Upsert inserts or replaces the resolved entries for a container. A known id
// keeps its first-seen position; only its entries and recency change.
func (s *Store) Upsert(containerId, containerName string, entries []hosts.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if rec, ok := s.records[containerId]; ok {
		rec.ContainerName = containerName
		rec.Entries = entries
		rec.Seq = s.seq
		rec.LastUpdated = time.Now()
		return
	}
	s.records[containerId] = &containerRecord{
		ContainerId:   containerId,
		ContainerName: containerName,
		Entries:       entries,
		Seq:           s.seq,
		LastUpdated:   time.Now(),
	}
	s.order = append(s.order, containerId)
}

// Remove drops a container and reports whether it was known.
func (s *Store) Remove(containerId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[containerId]; !ok {
		return false
	}
	delete(s.records, containerId)
	for i, id := range s.order {
		if id == containerId {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Ids returns the known container ids in first-seen order.
func (s *Store) Ids() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

// Snapshot returns every entry in first-seen container order with hostname
// collisions resolved. When two containers claim one hostname with different
// addresses the most recently resolved claim wins, keeping the hostname's
// original position; every such conflict is reported as a Collision.
func (s *Store) Snapshot() ([]hosts.Entry, []Collision) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type claim struct {
		slot int
		seq  uint64
	}
	var (
		out        []hosts.Entry
		collisions []Collision
	)
	claims := make(map[string]claim)
	for _, id := range s.order {
		rec := s.records[id]
		for _, e := range rec.Entries {
			c, ok := claims[e.Hostname]
			if !ok {
				claims[e.Hostname] = claim{slot: len(out), seq: rec.Seq}
				out = append(out, e)
				continue
			}
			held := out[c.slot]
			if held.IP == e.IP {
				// Same address, harmless duplicate.
				continue
			}
			if rec.Seq > c.seq {
				collisions = append(collisions, Collision{Hostname: e.Hostname, Winner: e, Loser: held})
				out[c.slot] = e
				claims[e.Hostname] = claim{slot: c.slot, seq: rec.Seq}
			} else {
				collisions = append(collisions, Collision{Hostname: e.Hostname, Winner: held, Loser: e})
			}
		}
	}
	return out, collisions
}
