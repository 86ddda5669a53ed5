package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteTextfileDisabledIsNoop(t *testing.T) {
	if IsMetricsEnabled() {
		t.Skip("metrics already enabled by another test")
	}

	path := filepath.Join(t.TempDir(), "portclean.prom")
	GetMetrics().RecordRun(RunStats{LinesRead: 5}, time.Millisecond)
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no metrics file while disabled, got %v", err)
	}
}

func TestRecordRunAndWriteTextfile(t *testing.T) {
	EnableMetrics()
	m := GetMetrics()

	m.RecordRun(RunStats{
		LinesRead:      4,
		MalformedLines: 1,
		EntriesParsed:  3,
		Domains:        1,
		DomainsTrimmed: 1,
		EntriesWritten: 2,
	}, 10*time.Millisecond)
	m.RecordFailure(time.Millisecond)

	path := filepath.Join(t.TempDir(), "portclean.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(b)
	for _, want := range []string{
		"portclean_lines_read_total 4",
		"portclean_malformed_lines_total 1",
		"portclean_entries_parsed_total 3",
		"portclean_domains_trimmed_total 1",
		"portclean_entries_written_total 2",
		"portclean_runs_failed_total 1",
		"portclean_run_duration_seconds_count 2",
		"portclean_last_success_timestamp_seconds",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q:\n%s", want, out)
		}
	}
}
