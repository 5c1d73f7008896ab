package hosts

import (
	"fmt"
	"net"
	"regexp"
)

// Entry is a single (hostname, IP) pair derived from a container, tagged with
// its origin for collision reporting.
type Entry struct {
	Hostname      string
	IP            string
	ContainerId   string
	ContainerName string
}

// hosts(5) names are laxer than DNS: underscores are legal and show up in
// every compose-derived network name, so the label charset includes them.
var hostnameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_](?:[a-zA-Z0-9_-]{0,61}[a-zA-Z0-9_])?(?:\.[a-zA-Z0-9_](?:[a-zA-Z0-9_-]{0,61}[a-zA-Z0-9_])?)*$`)

func NewEntry(hostname, ip, containerId, containerName string) (Entry, error) {
	if !isValidHostname(hostname) {
		return Entry{}, fmt.Errorf("invalid hostname: %s", hostname)
	}
	if net.ParseIP(ip) == nil {
		return Entry{}, fmt.Errorf("invalid IP address: %s", ip)
	}
	return Entry{
		Hostname:      hostname,
		IP:            ip,
		ContainerId:   containerId,
		ContainerName: containerName,
	}, nil
}

func (e Entry) String() string {
	return fmt.Sprintf("%s -> %s", e.Hostname, e.IP)
}

func (e Entry) Equal(other Entry) bool {
	return e.Hostname == other.Hostname && e.IP == other.IP
}

func isValidHostname(hostname string) bool {
	if len(hostname) > 255 {
		return false
	}
	return hostnameRegexp.MatchString(hostname)
}
