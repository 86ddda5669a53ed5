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
	"strings"
)

// Entry is a single domain:port record. Both fields are opaque strings;
// neither the domain syntax nor the port number is validated.
type Entry struct {
	Domain string
	Port   string
}

// ParseEntry parses one input line. Surrounding whitespace is trimmed and the
// line is split on every ':'; segment 0 is the domain and segment 1 the port,
// anything after that is ignored ("a:b:c" yields port "b"). Lines without a
// ':' are rejected.
func ParseEntry(line string) (Entry, bool) {
	parts := strings.Split(strings.TrimSpace(line), entrySeparator)
	if len(parts) < 2 {
		return Entry{}, false
	}
	return Entry{Domain: parts[0], Port: parts[1]}, true
}

// String formats the entry the way it is written to the output file.
func (e Entry) String() string {
	return e.Domain + entrySeparator + e.Port
}
