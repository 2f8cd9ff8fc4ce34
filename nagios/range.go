package nagios

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Range is a threshold in the plugin range syntax [@]start:end.
//
// An omitted start means 0, "~" means negative infinity and an omitted end
// means positive infinity. The range describes the alert zone: Contains
// reports whether a value falls into it, and a leading "@" inverts the test.
type Range struct {
	Start  float64
	End    float64
	Invert bool

	raw string
}

// ParseRange parses s into a Range.
func ParseRange(s string) (*Range, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return nil, fmt.Errorf("empty range")
	}

	r := &Range{Start: 0, End: math.Inf(1), raw: raw}

	body := raw
	if strings.HasPrefix(body, "@") {
		r.Invert = true
		body = body[1:]
	}

	start, end, hasColon := strings.Cut(body, ":")
	if !hasColon {
		// "10" is shorthand for "0:10"
		end, start = start, ""
	}

	switch start {
	case "":
	case "~":
		r.Start = math.Inf(-1)
	default:
		v, err := strconv.ParseFloat(start, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range %q: bad start %q", raw, start)
		}
		r.Start = v
	}

	if end != "" {
		v, err := strconv.ParseFloat(end, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range %q: bad end %q", raw, end)
		}
		r.End = v
	} else if !hasColon {
		return nil, fmt.Errorf("invalid range %q", raw)
	}

	if r.Start > r.End {
		return nil, fmt.Errorf("invalid range %q: start is greater than end", raw)
	}

	return r, nil
}

// MustParseRange is like ParseRange but panics on error.
func MustParseRange(s string) *Range {
	r, err := ParseRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Contains reports whether v falls into the alert zone described by r.
func (r *Range) Contains(v float64) bool {
	in := v >= r.Start && v <= r.End
	if r.Invert {
		return !in
	}
	return in
}

// String returns the range as it was written.
func (r *Range) String() string {
	if r == nil {
		return ""
	}
	if r.raw != "" {
		return r.raw
	}
	var sb strings.Builder
	if r.Invert {
		sb.WriteByte('@')
	}
	switch {
	case math.IsInf(r.Start, -1):
		sb.WriteByte('~')
	case r.Start != 0:
		sb.WriteString(formatFloat(r.Start))
	}
	sb.WriteByte(':')
	if !math.IsInf(r.End, 1) {
		sb.WriteString(formatFloat(r.End))
	}
	return sb.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
