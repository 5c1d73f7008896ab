package domain

type EventType string

const (
	EventTypeContainerStarted   EventType = "start"
	EventTypeContainerStopped   EventType = "stop"
	EventTypeContainerDied      EventType = "die"
	EventTypeContainerDestroyed EventType = "destroy"
	// EventTypeResync is synthesized by the event source after the stream has
	// been re-established; it asks the engine for a full inventory pass.
	EventTypeResync EventType = "resync"
)

func (et EventType) IsValid() bool {
	switch et {
	case EventTypeContainerStarted,
		EventTypeContainerStopped,
		EventTypeContainerDied,
		EventTypeContainerDestroyed,
		EventTypeResync:
		return true
	}
	return false
}

// Removal reports whether the event retires the container's entries.
func (et EventType) Removal() bool {
	switch et {
	case EventTypeContainerStopped, EventTypeContainerDied, EventTypeContainerDestroyed:
		return true
	}
	return false
}

type ContainerEvent struct {
	ContainerId string
	Name        string
	Type        EventType
}
