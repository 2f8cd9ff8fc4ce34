// Package nagios implements the monitoring-plugin output convention:
// statuses with their exit codes, threshold ranges, performance data and
// the single status line a plugin prints.
package nagios

// Status is the verdict of a check.
type Status int

const (
	OK Status = iota
	WARNING
	CRITICAL
	UNKNOWN
)

var statusNames = [...]string{"OK", "WARNING", "CRITICAL", "UNKNOWN"}

func (s Status) String() string {
	if s < OK || s > UNKNOWN {
		return "UNKNOWN"
	}
	return statusNames[s]
}

// ExitCode returns the process exit code monitoring systems expect for s.
func (s Status) ExitCode() int {
	if s < OK || s > UNKNOWN {
		return int(UNKNOWN)
	}
	return int(s)
}

// Worse reports whether s is strictly more severe than other on the
// OK < WARNING < CRITICAL scale. UNKNOWN is not part of that scale and is
// never worse or better than anything.
func (s Status) Worse(other Status) bool {
	if s == UNKNOWN || other == UNKNOWN {
		return false
	}
	return s > other
}
