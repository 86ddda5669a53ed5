package core

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseEntry(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name   string
		input  string
		want   Entry
		wantOK bool
	}{
		{"Simple", "example.com:443", Entry{"example.com", "443"}, true},
		{"Surrounding whitespace", "  example.com:80 \r\n", Entry{"example.com", "80"}, true},
		{"Extra segments ignored", "a:b:c", Entry{"a", "b"}, true},
		{"IPv6-looking input keeps second segment", "::1", Entry{"", ""}, true},
		{"Empty port", "example.com:", Entry{"example.com", ""}, true},
		{"Empty domain", ":8080", Entry{"", "8080"}, true},
		{"Non-numeric port kept as-is", "example.com:http", Entry{"example.com", "http"}, true},
		{"No separator", "justtext", Entry{}, false},
		{"Empty line", "", Entry{}, false},
		{"Only whitespace", "   \n", Entry{}, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseEntry(tc.input)
			if ok != tc.wantOK {
				t.Fatalf("ParseEntry(%q) ok = %t, want %t", tc.input, ok, tc.wantOK)
			}
			if got != tc.want {
				t.Errorf("ParseEntry(%q) = %+v, want %+v", tc.input, got, tc.want)
			}
		})
	}
}

func TestEntryString(t *testing.T) {
	t.Parallel()
	if got := (Entry{Domain: "a.com", Port: "8443"}).String(); got != "a.com:8443" {
		t.Fatalf("String() = %q", got)
	}
}

func TestDomainPortGroupKeepsFirstSeenOrder(t *testing.T) {
	t.Parallel()

	g := NewDomainPortGroup()
	for _, line := range []string{"z.com:1", "a.com:2", "z.com:3", "m.com:4", "a.com:2"} {
		e, ok := ParseEntry(line)
		if !ok {
			t.Fatalf("ParseEntry(%q) failed", line)
		}
		g.AddEntry(e)
	}

	if want := []string{"z.com", "a.com", "m.com"}; !reflect.DeepEqual(g.Domains(), want) {
		t.Fatalf("Domains() = %v, want %v", g.Domains(), want)
	}
	if want := []string{"2", "2"}; !reflect.DeepEqual(g.Ports("a.com"), want) {
		t.Fatalf("Ports(a.com) = %v, want %v", g.Ports("a.com"), want)
	}
	if g.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", g.Len())
	}
	if g.Entries() != 5 {
		t.Fatalf("Entries() = %d, want 5", g.Entries())
	}
	if g.Ports("missing.com") != nil {
		t.Fatalf("expected nil ports for unknown domain")
	}
}

func TestReadGroupsSkipsMalformedLines(t *testing.T) {
	t.Parallel()

	input := "a.com:80\njusttext\n\nb.com:22:extra\r\na.com:443"
	g, err := ReadGroups(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadGroups: %v", err)
	}
	if want := []string{"a.com", "b.com"}; !reflect.DeepEqual(g.Domains(), want) {
		t.Fatalf("Domains() = %v, want %v", g.Domains(), want)
	}
	if want := []string{"80", "443"}; !reflect.DeepEqual(g.Ports("a.com"), want) {
		t.Fatalf("Ports(a.com) = %v, want %v", g.Ports("a.com"), want)
	}
	if want := []string{"22"}; !reflect.DeepEqual(g.Ports("b.com"), want) {
		t.Fatalf("Ports(b.com) = %v, want %v", g.Ports("b.com"), want)
	}
}

func TestReadGroupsLineEndings(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name  string
		input string
	}{
		{"Unix", "a.com:80\nb.com:22\na.com:443\n"},
		{"Windows", "a.com:80\r\nb.com:22\r\na.com:443\r\n"},
		{"Old Mac", "a.com:80\rb.com:22\ra.com:443\r"},
		{"Old Mac without trailing newline", "a.com:80\rb.com:22\ra.com:443"},
		{"Mixed", "a.com:80\rb.com:22\r\na.com:443\n"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			g, err := ReadGroups(strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("ReadGroups: %v", err)
			}
			if want := []string{"a.com", "b.com"}; !reflect.DeepEqual(g.Domains(), want) {
				t.Fatalf("Domains() = %q, want %q", g.Domains(), want)
			}
			if want := []string{"80", "443"}; !reflect.DeepEqual(g.Ports("a.com"), want) {
				t.Fatalf("Ports(a.com) = %q, want %q", g.Ports("a.com"), want)
			}
			if want := []string{"22"}; !reflect.DeepEqual(g.Ports("b.com"), want) {
				t.Fatalf("Ports(b.com) = %q, want %q", g.Ports("b.com"), want)
			}
		})
	}
}

func TestReadGroupsBlankCarriageReturnLines(t *testing.T) {
	t.Parallel()

	stats := &Stats{}
	g, err := readGroups(strings.NewReader("a.com:80\r\r\njusttext\rb.com:22"), stats, nil)
	if err != nil {
		t.Fatalf("readGroups: %v", err)
	}
	if g.Entries() != 2 {
		t.Fatalf("Entries() = %d, want 2", g.Entries())
	}
	if stats.LinesRead != 4 || stats.MalformedLines != 2 {
		t.Fatalf("unexpected stats: lines=%d malformed=%d", stats.LinesRead, stats.MalformedLines)
	}
}

func TestReadGroupsLongLine(t *testing.T) {
	t.Parallel()

	domain := strings.Repeat("a", 1<<20) + ".com"
	g, err := ReadGroups(strings.NewReader(domain + ":8080\n"))
	if err != nil {
		t.Fatalf("ReadGroups: %v", err)
	}
	if g.Len() != 1 || g.Ports(domain)[0] != "8080" {
		t.Fatalf("long line not parsed")
	}
}

func BenchmarkParseEntry(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = ParseEntry("  www.example.com:8443:tcp \n")
	}
}
