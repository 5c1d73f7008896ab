package domain

// NetworkAttachment is one network membership of a container as reported by
// the engine: the network's name, the container's address on it, and any
// user-defined aliases.
type NetworkAttachment struct {
	Name    string
	IP      string
	Aliases []string
}

// Container is the inspected view of a container reduced to what hostname
// resolution needs. Networks is ordered (sorted by network name) so that
// derived output is deterministic.
type Container struct {
	Id       string
	Name     string
	Running  bool
	LegacyIP string
	Networks []NetworkAttachment
	Domains  []string
}

// PrimaryIP is the address a bare custom-domain directive binds to: the first
// network attachment, or the legacy bridge address when the container has no
// attachments. Empty when the container has no address at all.
func (c Container) PrimaryIP() string {
	if len(c.Networks) > 0 {
		return c.Networks[0].IP
	}
	return c.LegacyIP
}
