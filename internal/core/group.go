package core

/*
portclean — trims domain:port lists down to the ports that matter
Copyright (C) 2025  Pepijn van der Stap <rxtls@vanderstap.info>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// DomainPortGroup maps each domain to its ports in the order they were read.
// Domains iterate in first-seen order; Go maps do not keep insertion order,
// so the order is tracked in a separate slice.
//
// The output order of a cleaning run depends on this: Filter walks Domains()
// and emits each domain's entries as one block.
// Concurrency: not safe for concurrent use. A group is built and consumed by
// a single run.
type DomainPortGroup struct {
	order []string            // Domains in first-seen order, no duplicates.
	ports map[string][]string // Domain -> ports in input order, duplicates kept.
	total int                 // Number of Add calls, i.e. entries recorded.
}

// NewDomainPortGroup returns an empty group.
func NewDomainPortGroup() *DomainPortGroup {
	return &DomainPortGroup{
		ports: make(map[string][]string),
	}
}

// Add appends port to the domain's list, creating the list on first sight.
// Duplicate ports are kept, so the count compared against the port limit is
// the number of input records for the domain, not the number of distinct
// ports.
//
// Parameters:
//   domain: The record's domain, used as-is (no normalization).
//   port: The record's port, an opaque string.
func (g *DomainPortGroup) Add(domain, port string) {
	list, ok := g.ports[domain]
	if !ok {
		g.order = append(g.order, domain)
	}
	g.ports[domain] = append(list, port)
	g.total++
}

// AddEntry is Add for a parsed Entry.
func (g *DomainPortGroup) AddEntry(e Entry) {
	g.Add(e.Domain, e.Port)
}

// Domains returns the domains in first-seen order.
//
// Returns:
//   The group's internal order slice. It must not be modified.
func (g *DomainPortGroup) Domains() []string {
	return g.order
}

// Ports returns the ports recorded for domain, in input order.
//
// Returns:
//   The domain's port list, or nil if the domain was never added.
func (g *DomainPortGroup) Ports(domain string) []string {
	return g.ports[domain]
}

// Len returns the number of distinct domains.
func (g *DomainPortGroup) Len() int {
	return len(g.order)
}

// Entries returns the number of ports recorded across all domains.
func (g *DomainPortGroup) Entries() int {
	return g.total
}
