package nagios

import (
	"strings"
)

// PerfDatum is a single performance data item attached to a Response.
type PerfDatum struct {
	Label string
	Value float64
	Warn  *Range
	Crit  *Range
}

// Status evaluates the datum against its own thresholds. It is independent
// of the status of the Response the datum belongs to.
func (p PerfDatum) Status() Status {
	if p.Crit != nil && p.Crit.Contains(p.Value) {
		return CRITICAL
	}
	if p.Warn != nil && p.Warn.Contains(p.Value) {
		return WARNING
	}
	return OK
}

// String formats the datum as label=value;warn;crit with trailing empty
// fields dropped.
func (p PerfDatum) String() string {
	var sb strings.Builder
	sb.WriteString(quoteLabel(p.Label))
	sb.WriteByte('=')
	sb.WriteString(formatFloat(p.Value))

	fields := []string{p.Warn.String(), p.Crit.String()}
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	for _, f := range fields {
		sb.WriteByte(';')
		sb.WriteString(f)
	}
	return sb.String()
}

func quoteLabel(label string) string {
	label = oneLine(label)
	if !strings.ContainsAny(label, " ='") {
		return label
	}
	return "'" + strings.ReplaceAll(label, "'", "''") + "'"
}
