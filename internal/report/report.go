// Package report aggregates probe outcomes into the final ordered scan
// report and renders it as text.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/lumenlight/oidsweep/internal/probe"
)

// Record is one responding host: its address and the extracted value.
type Record struct {
	Addr  string `json:"addr"`
	Value string `json:"value"`
}

// Report is the ordered set of responding hosts for one sweep.
type Report struct {
	Records []Record
}

// Empty reports whether no host yielded a value. An empty report renders
// differently from a populated one, however small.
func (r Report) Empty() bool {
	return len(r.Records) == 0
}

// Aggregate filters out no-response outcomes and orders the survivors by
// the numeric value of the last octet. The prefix is constant across a
// sweep, so last-octet ordering is full address ordering; it must be
// numeric so .10 sorts after .2, not before it.
func Aggregate(outcomes []probe.Outcome) Report {
	records := make([]Record, 0, len(outcomes))
	for _, out := range outcomes {
		if !out.Responded {
			continue
		}
		records = append(records, Record{Addr: out.Addr, Value: out.Value})
	}

	sort.Slice(records, func(i, j int) bool {
		return lastOctet(records[i].Addr) < lastOctet(records[j].Addr)
	})

	return Report{Records: records}
}

func lastOctet(addr string) int {
	idx := strings.LastIndexByte(addr, '.')
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(addr[idx+1:])
	if err != nil {
		return 0
	}
	return n
}

// Render writes the report as a two-column table, each column padded to its
// widest cell. An empty report renders as a single "no devices" line.
func (r Report) Render(w io.Writer) error {
	if r.Empty() {
		_, err := fmt.Fprintln(w, "No snmp devices")
		return err
	}

	addrWidth := len("IP")
	valWidth := len("ProductName")
	for _, rec := range r.Records {
		if len(rec.Addr) > addrWidth {
			addrWidth = len(rec.Addr)
		}
		if len(rec.Value) > valWidth {
			valWidth = len(rec.Value)
		}
	}

	if _, err := fmt.Fprintf(w, "%-*s  %-*s\n", addrWidth, "IP", valWidth, "ProductName"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s  %s\n", strings.Repeat("-", addrWidth), strings.Repeat("-", valWidth)); err != nil {
		return err
	}
	for _, rec := range r.Records {
		if _, err := fmt.Fprintf(w, "%-*s  %-*s\n", addrWidth, rec.Addr, valWidth, rec.Value); err != nil {
			return err
		}
	}
	return nil
}
