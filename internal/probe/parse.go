package probe

import "strings"

// stringMarker precedes the value in snmpget textual output for display
// strings, e.g. `SNMPv2-SMI::enterprises... = STRING: "PL-1000GM"`.
const stringMarker = "STRING:"

// negativeIndicators mark output that means "host answered nothing useful":
// a protocol-level timeout or an agent that has no object at the queried OID.
// Matched case-insensitively.
var negativeIndicators = []string{
	"timeout",
	"no such object",
	"nosuchobject",
	"no such instance",
	"nosuchinstance",
}

// IsNegative reports whether raw output classifies as no-response: empty
// after trimming, or containing a negative-indicator marker.
func IsNegative(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return true
	}
	low := strings.ToLower(trimmed)
	for _, marker := range negativeIndicators {
		if strings.Contains(low, marker) {
			return true
		}
	}
	return false
}

// Extract pulls the display value out of raw snmpget output. It is total:
// any input, including the empty string, yields a string and never an error.
//
// The textual encoding is not uniform across response types, so extraction
// degrades in order: a quoted segment after the STRING: marker, then an
// unquoted token after the marker, then the trimmed raw text unchanged.
func Extract(raw string) string {
	if idx := strings.Index(raw, stringMarker); idx >= 0 {
		rest := strings.TrimSpace(raw[idx+len(stringMarker):])

		// Quoted display string: STRING: "value"
		if strings.HasPrefix(rest, `"`) {
			if end := strings.Index(rest[1:], `"`); end >= 0 {
				return strings.TrimSpace(rest[1 : 1+end])
			}
		}

		// Bare token up to the next whitespace, stray quotes stripped.
		if fields := strings.Fields(rest); len(fields) > 0 {
			return strings.Trim(fields[0], `"`)
		}
	}

	return strings.TrimSpace(raw)
}
