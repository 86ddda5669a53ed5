/*
Package core implements the port cleaning pass: parsing domain:port entries,
grouping them per domain in first-seen order, applying the port limit and
replacing the input file with the result.
*/
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

import (
	"time"
)

const (
	// DefaultPortLimit is the number of ports a domain may have before it is
	// reduced to the web ports.
	DefaultPortLimit = 20

	// PortHTTP and PortHTTPS are the only ports kept for domains over the limit,
	// emitted in this order.
	PortHTTP  = "80"
	PortHTTPS = "443"

	// ProgressLogInterval limits how often verbose mode reports read progress.
	ProgressLogInterval = 2 * time.Second

	// entrySeparator splits a record into domain and port.
	entrySeparator = ":"
)

// keptPorts lists the ports retained for trimmed domains, in output order.
var keptPorts = [...]string{PortHTTP, PortHTTPS}
