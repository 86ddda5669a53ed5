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
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	pio "github.com/x-stp/portclean/internal/io"
	"github.com/x-stp/portclean/internal/metrics"

	"github.com/zeebo/xxh3"
	"golang.org/x/time/rate"
)

// Config holds the parameters of a cleaning run.
type Config struct {
	FilePath  string // File of domain:port lines, replaced in place.
	PortLimit int    // Domains with more ports than this keep only 80 and 443.
	Verbose   bool   // Log read progress.
}

// Validate checks the config before any file is opened.
func (c *Config) Validate() error {
	if c.FilePath == "" {
		return ErrEmptyPath
	}
	if c.PortLimit < 0 {
		return ErrNegativeLimit
	}
	return nil
}

// Stats describes a finished run. The hashes are xxh3 checksums of the raw
// input bytes and of the bytes written, so an unchanged file can be spotted
// without keeping a copy around.
type Stats struct {
	LinesRead      int64
	MalformedLines int64
	EntriesParsed  int64
	Domains        int64
	DomainsTrimmed int64
	EntriesWritten int64
	BytesWritten   int64
	InputHash      uint64
	OutputHash     uint64
	StartTime      time.Time
	Duration       time.Duration
}

// Changed reports whether the rewritten file differs byte-wise from the input.
func (s *Stats) Changed() bool {
	return s.InputHash != s.OutputHash
}

func (s *Stats) runStats() metrics.RunStats {
	return metrics.RunStats{
		LinesRead:      s.LinesRead,
		MalformedLines: s.MalformedLines,
		EntriesParsed:  s.EntriesParsed,
		Domains:        s.Domains,
		DomainsTrimmed: s.DomainsTrimmed,
		EntriesWritten: s.EntriesWritten,
	}
}

// Cleaner runs a single read, filter and replace pass over one file.
type Cleaner struct {
	config  *Config
	metrics *metrics.Metrics
}

// NewCleaner validates config and returns a Cleaner for it.
func NewCleaner(config *Config) (*Cleaner, error) {
	if config == nil {
		return nil, ErrEmptyPath
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Cleaner{
		config:  config,
		metrics: metrics.GetMetrics(),
	}, nil
}

// Clean is NewCleaner followed by Run.
func Clean(config *Config) (*Stats, error) {
	c, err := NewCleaner(config)
	if err != nil {
		return nil, err
	}
	return c.Run()
}

// Run reads the file, groups ports per domain, applies the port limit and
// atomically replaces the file with the result. The original file is only
// touched by the final rename, so on any error it is left as it was.
func (c *Cleaner) Run() (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	elapsed := metrics.MeasureDuration()

	err := c.run(stats)
	stats.Duration = elapsed()
	if err != nil {
		c.metrics.RecordFailure(stats.Duration)
		return nil, err
	}
	c.metrics.RecordRun(stats.runStats(), stats.Duration)
	return stats, nil
}

func (c *Cleaner) run(stats *Stats) error {
	group, err := c.read(stats)
	if err != nil {
		return err
	}

	entries, trimmed := filterGroup(group, c.config.PortLimit)
	stats.Domains = int64(group.Len())
	stats.DomainsTrimmed = int64(trimmed)

	return c.write(entries, stats)
}

func (c *Cleaner) read(stats *Stats) (*DomainPortGroup, error) {
	file, err := os.Open(c.config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	hasher := xxh3.New()
	var progress *rate.Sometimes
	if c.config.Verbose {
		progress = &rate.Sometimes{Interval: ProgressLogInterval}
	}

	group, err := readGroups(io.TeeReader(file, hasher), stats, progress)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file %s: %w", c.config.FilePath, err)
	}
	stats.InputHash = hasher.Sum64()
	return group, nil
}

func (c *Cleaner) write(entries []Entry, stats *Stats) error {
	af, err := pio.Create(c.config.FilePath, nil)
	if err != nil {
		return err
	}
	defer af.Abort()

	hasher := xxh3.New()
	if _, err := WriteEntries(io.MultiWriter(af, hasher), entries); err != nil {
		return err
	}
	if err := af.Commit(); err != nil {
		if !errors.Is(err, pio.ErrDirSync) {
			return err
		}
		log.Printf("Warning: %v", err)
	}

	stats.EntriesWritten = int64(len(entries))
	stats.BytesWritten = af.BytesWritten()
	stats.OutputHash = hasher.Sum64()
	return nil
}

// ReadGroups parses every line of r into a DomainPortGroup. Lines without a
// ':' are skipped. Lines are not length-limited.
func ReadGroups(r io.Reader) (*DomainPortGroup, error) {
	return readGroups(r, &Stats{}, nil)
}

func readGroups(r io.Reader, stats *Stats, progress *rate.Sometimes) (*DomainPortGroup, error) {
	group := NewDomainPortGroup()
	reader := bufio.NewReaderSize(r, pio.DefaultBufferSize)

	for {
		chunk, err := reader.ReadString('\n')
		if len(chunk) > 0 {
			for _, line := range splitLines(chunk) {
				stats.LinesRead++
				if entry, ok := ParseEntry(line); ok {
					group.AddEntry(entry)
					stats.EntriesParsed++
				} else {
					stats.MalformedLines++
				}
			}
			if progress != nil {
				progress.Do(func() {
					log.Printf("Read %d lines (%d entries, %d domains)...",
						stats.LinesRead, stats.EntriesParsed, group.Len())
				})
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return group, nil
			}
			return nil, err
		}
	}
}

// splitLines breaks a chunk ending in '\n' (or at EOF) into lines. "\r\n",
// "\n" and a lone "\r" all end a line, so files with old Mac line endings
// are read record by record.
func splitLines(chunk string) []string {
	chunk = strings.TrimSuffix(chunk, "\n")
	chunk = strings.TrimSuffix(chunk, "\r")
	return strings.Split(chunk, "\r")
}

// Filter applies the port limit to g and returns the entries to keep, domains
// in first-seen order.
//
// A domain with more than limit ports is reduced to domain:80 and domain:443,
// each emitted once and only if present in its ports. Every other domain keeps
// all of its entries in input order, duplicates included.
func Filter(g *DomainPortGroup, limit int) []Entry {
	entries, _ := filterGroup(g, limit)
	return entries
}

func filterGroup(g *DomainPortGroup, limit int) ([]Entry, int) {
	entries := make([]Entry, 0, g.Entries())
	trimmed := 0

	for _, domain := range g.Domains() {
		ports := g.Ports(domain)
		if len(ports) <= limit {
			for _, port := range ports {
				entries = append(entries, Entry{Domain: domain, Port: port})
			}
			continue
		}

		trimmed++
		for _, keep := range keptPorts {
			if slices.Contains(ports, keep) {
				entries = append(entries, Entry{Domain: domain, Port: keep})
			}
		}
	}
	return entries, trimmed
}

// WriteEntries writes one domain:port line per entry and returns the number
// of bytes written.
func WriteEntries(w io.Writer, entries []Entry) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	for _, e := range entries {
		n, err := bw.WriteString(e.String() + "\n")
		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("failed to write entry %s: %w", e, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return total, fmt.Errorf("failed to flush entries: %w", err)
	}
	return total, nil
}

// StatusMessage is the line printed after a successful run.
func StatusMessage(limit int) string {
	return fmt.Sprintf("[*] Port cleaning completed. Only ports 80 and 443 were kept for domains with more than %d open ports.", limit)
}
