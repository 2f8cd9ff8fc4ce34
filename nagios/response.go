package nagios

import (
	"fmt"
	"strings"
)

// DefaultPrefix names the service in the status line.
const DefaultPrefix = "RABBITMQ_QUEUES"

// Response is the result of a check: a status, a human readable message and
// ordered performance data.
type Response struct {
	Status   Status
	Message  string
	PerfData []PerfDatum
}

// NewResponse returns a Response without performance data.
func NewResponse(status Status, message string) *Response {
	return &Response{Status: status, Message: message}
}

// AddPerfData appends a performance data item.
func (r *Response) AddPerfData(label string, value float64, warn, crit *Range) {
	r.PerfData = append(r.PerfData, PerfDatum{
		Label: label,
		Value: value,
		Warn:  warn,
		Crit:  crit,
	})
}

// Line renders the status line using prefix as the service name.
func (r *Response) Line(prefix string) string {
	var sb strings.Builder
	if prefix != "" {
		sb.WriteString(prefix)
		sb.WriteByte(' ')
	}
	fmt.Fprintf(&sb, "%s: %s", r.Status, oneLine(r.Message))

	if len(r.PerfData) > 0 {
		sb.WriteString(" |")
		for _, p := range r.PerfData {
			sb.WriteByte(' ')
			sb.WriteString(p.String())
		}
	}
	return sb.String()
}

func (r *Response) String() string {
	return r.Line(DefaultPrefix)
}

// "|" separates perfdata and newlines start long output, neither may appear
// in the message itself.
func oneLine(msg string) string {
	return strings.NewReplacer("|", "/", "\r", " ", "\n", " ").Replace(msg)
}
