package hosts

import "strings"

// FormatLines renders entries as hosts(5) lines, one line per IP:
// "{ip} {host1} {host2} ...". Lines appear in order of each IP's first
// occurrence, hostnames in entry order, so identical input renders
// byte-identical output.
func FormatLines(entries []Entry) []string {
	var order []string
	byIP := make(map[string][]string, len(entries))
	for _, e := range entries {
		if _, ok := byIP[e.IP]; !ok {
			order = append(order, e.IP)
		}
		byIP[e.IP] = append(byIP[e.IP], e.Hostname)
	}
	lines := make([]string, 0, len(order))
	for _, ip := range order {
		lines = append(lines, ip+" "+strings.Join(byIP[ip], " "))
	}
	return lines
}
