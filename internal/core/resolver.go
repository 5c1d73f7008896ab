package core

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/auto-dns/docker-hostmanager/internal/domain"
	"github.com/auto-dns/docker-hostmanager/internal/hosts"
)

// networkMatches reports whether an attachment named networkName satisfies a
// directive qualifier. Compose prefixes the project name onto network names,
// so qualifier "default" also matches "myproject_default" and
// "myproject-default".
func networkMatches(networkName, qualifier string) bool {
	return networkName == qualifier ||
		strings.HasSuffix(networkName, "_"+qualifier) ||
		strings.HasSuffix(networkName, "-"+qualifier)
}

// ResolveHostnames derives the ordered, deduplicated hostname entries for a
// container:
//
//  1. Per network attachment, {name}.{network} plus {alias}.{network} for
//     each alias, bound to the attachment's address.
//  2. With no attachments, {name}{tld} bound to the legacy bridge address.
//  3. Per custom-domain directive, "network:hostname" binds hostname to the
//     matching attachment's address; a bare "hostname" binds to the
//     container's primary address.
//
// Outputs are unioned in that order. A malformed or unmatchable directive is
// skipped with a warning and never aborts the rest of the container.
func ResolveHostnames(c domain.Container, tld string, logger zerolog.Logger) []hosts.Entry {
	var entries []hosts.Entry
	seen := make(map[string]string) // hostname -> ip

	add := func(hostname, ip string) {
		e, err := hosts.NewEntry(hostname, ip, c.Id, c.Name)
		if err != nil {
			logger.Warn().Msgf("Skipping entry for container %s: %v", c.Name, err)
			return
		}
		if prev, ok := seen[hostname]; ok {
			if prev != ip {
				logger.Warn().Msgf("Container %s derives %s from both %s and %s, keeping %s", c.Name, hostname, prev, ip, prev)
			}
			return
		}
		seen[hostname] = ip
		entries = append(entries, e)
	}

	for _, att := range c.Networks {
		add(c.Name+"."+att.Name, att.IP)
		for _, alias := range att.Aliases {
			add(alias+"."+att.Name, att.IP)
		}
	}

	if len(c.Networks) == 0 && c.LegacyIP != "" {
		add(c.Name+tld, c.LegacyIP)
	}

	for _, directive := range c.Domains {
		directive = strings.TrimSpace(directive)
		if directive == "" {
			continue
		}
		if qualifier, hostname, qualified := strings.Cut(directive, ":"); qualified {
			if qualifier == "" || hostname == "" || strings.Contains(hostname, ":") {
				logger.Warn().Msgf("Skipping malformed domain directive %q on container %s", directive, c.Name)
				continue
			}
			matched := false
			for _, att := range c.Networks {
				if networkMatches(att.Name, qualifier) {
					add(hostname, att.IP)
					matched = true
				}
			}
			if !matched {
				logger.Warn().Msgf("No network matching %q for domain directive %q on container %s", qualifier, directive, c.Name)
			}
			continue
		}
		ip := c.PrimaryIP()
		if ip == "" {
			logger.Warn().Msgf("No address for bare domain directive %q on container %s", directive, c.Name)
			continue
		}
		add(directive, ip)
	}

	if len(entries) == 0 {
		logger.Debug().Msgf("No hostnames derived for container %s", c.Name)
	}
	return entries
}
