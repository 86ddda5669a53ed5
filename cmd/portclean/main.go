/*
Package main is the entry point for the portclean command-line application.

portclean trims a file of domain:port lines in place. Domains with more open
ports than the limit (default 20) are reduced to their port 80 and 443
entries; every other domain is kept as-is. The file is replaced atomically, so
an interrupted run leaves either the old or the new content.

It leverages several internal packages:
  - `internal/core`: parsing, per-domain grouping and the retention rule.
  - `internal/io`: the sibling temp file and rename used to replace the input.
  - `internal/metrics`: Prometheus counters, optionally written to a textfile.
*/
package main

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
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/x-stp/portclean/internal/core"
	"github.com/x-stp/portclean/internal/metrics"
)

var (
	filePath    string
	portLimit   int
	verbose     bool
	metricsFile string
)

var rootCmd = &cobra.Command{
	Use:   "portclean",
	Short: "Cleans ports from a file, keeping only ports 80 and 443 for domains with more than a specified limit of open ports",
	Args:  cobra.NoArgs,
	// Errors are printed once by main.
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if metricsFile != "" {
			metrics.EnableMetrics()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cleanPorts(cmd.OutOrStdout(), &core.Config{
			FilePath:  filePath,
			PortLimit: portLimit,
			Verbose:   verbose,
		})
	},
}

func init() {
	rootCmd.Flags().StringVarP(&filePath, "file", "f", "", "Path to the file with open ports in the format target.com:port")
	rootCmd.Flags().IntVarP(&portLimit, "limit", "l", core.DefaultPortLimit, "Port limit per domain before keeping only 80 and 443")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log progress and a run summary to stderr")
	rootCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run (node_exporter textfile format)")
	_ = rootCmd.MarkFlagRequired("file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cleanPorts is the handler for the root command.
func cleanPorts(out io.Writer, config *core.Config) error {
	if config.Verbose {
		log.Printf("Cleaning ports: file='%s', limit=%d", config.FilePath, config.PortLimit)
	}

	stats, err := core.Clean(config)
	writeMetrics()
	if err != nil {
		return err
	}

	if config.Verbose {
		displayStats(stats)
	}
	fmt.Fprintln(out, core.StatusMessage(config.PortLimit))
	return nil
}

// writeMetrics exports the run's metrics if a textfile was requested. Failures
// are only logged; the file cleanup itself already succeeded or failed.
func writeMetrics() {
	if metricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(metricsFile); err != nil {
		log.Printf("Warning: %v", err)
	}
}

func displayStats(stats *core.Stats) {
	log.Printf("Lines read: %d (%d malformed skipped)", stats.LinesRead, stats.MalformedLines)
	log.Printf("Domains: %d (%d trimmed to ports 80/443)", stats.Domains, stats.DomainsTrimmed)
	log.Printf("Entries: %d in, %d out (%d bytes)", stats.EntriesParsed, stats.EntriesWritten, stats.BytesWritten)
	if !stats.Changed() {
		log.Println("File content unchanged.")
	}
	log.Printf("Processing time: %v", stats.Duration)
}
