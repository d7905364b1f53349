package report

import (
	"strings"
	"testing"

	"github.com/lumenlight/oidsweep/internal/probe"
)

func TestAggregateFiltersAndOrders(t *testing.T) {
	outcomes := []probe.Outcome{
		probe.Value("10.30.6.2", "B"),
		probe.NoResponse("10.30.6.7"),
		probe.Value("10.30.6.10", "C"),
		probe.NoResponse("10.30.6.200"),
		probe.Value("10.30.6.1", "A"),
	}

	r := Aggregate(outcomes)
	if r.Empty() {
		t.Fatal("Empty() = true for populated report")
	}

	// Numeric last-octet ordering: .10 sorts after .2, not between .1 and .2.
	wantAddrs := []string{"10.30.6.1", "10.30.6.2", "10.30.6.10"}
	if len(r.Records) != len(wantAddrs) {
		t.Fatalf("got %d records, want %d", len(r.Records), len(wantAddrs))
	}
	for i, want := range wantAddrs {
		if r.Records[i].Addr != want {
			t.Errorf("Records[%d].Addr = %q, want %q", i, r.Records[i].Addr, want)
		}
	}
}

func TestAggregateAllNoResponse(t *testing.T) {
	outcomes := []probe.Outcome{
		probe.NoResponse("10.30.6.1"),
		probe.NoResponse("10.30.6.2"),
	}

	r := Aggregate(outcomes)
	if !r.Empty() {
		t.Errorf("Empty() = false, records = %v", r.Records)
	}

	// The empty state is distinct from a one-record report.
	one := Aggregate([]probe.Outcome{probe.Value("10.30.6.1", "A")})
	if one.Empty() {
		t.Error("one-record report classified as empty")
	}
}

func TestRenderEmpty(t *testing.T) {
	var sb strings.Builder
	if err := (Report{}).Render(&sb); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := sb.String(); got != "No snmp devices\n" {
		t.Errorf("Render() = %q, want %q", got, "No snmp devices\n")
	}
}

func TestRenderTable(t *testing.T) {
	r := Aggregate([]probe.Outcome{
		probe.Value("10.30.6.200", "PL-1000GM"),
		probe.Value("10.30.6.5", "PL-2000AD rev B"),
	})

	var sb strings.Builder
	if err := r.Render(&sb); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), sb.String())
	}
	if !strings.HasPrefix(lines[0], "IP") || !strings.Contains(lines[0], "ProductName") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "10.30.6.5") {
		t.Errorf("first row = %q, want .5 first", lines[2])
	}
	if !strings.HasPrefix(lines[3], "10.30.6.200") {
		t.Errorf("second row = %q, want .200 second", lines[3])
	}
	// Address column padded to the widest address.
	if !strings.Contains(lines[2], "10.30.6.5    ") {
		t.Errorf("address column not padded: %q", lines[2])
	}
}
