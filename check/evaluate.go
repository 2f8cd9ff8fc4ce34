package check

import (
	"fmt"

	"github.com/jlecren/rabbitmq-nagios-plugins/broker/rabbitmq"
	"github.com/jlecren/rabbitmq-nagios-plugins/config"
	"github.com/jlecren/rabbitmq-nagios-plugins/nagios"
)

// consumersCritical flags a queue that nobody consumes from.
var consumersCritical = nagios.MustParseRange("0")

type queueVerdict struct {
	status  nagios.Status
	message string
	count   int64
}

// evaluateQueue compares the message count of q against the configured
// ranges. A defined critical range always wins over the warning range.
func evaluateQueue(q *rabbitmq.Queue, cfg *config.Validated) queueVerdict {
	v := queueVerdict{status: nagios.OK, message: "No messages found in queue"}
	if q.Messages != nil && *q.Messages != 0 {
		v.count = *q.Messages
		v.message = fmt.Sprintf("found %d messages", v.count)
	}

	switch {
	case cfg.CriticalRange != nil && cfg.CriticalRange.Contains(float64(v.count)):
		v.status = nagios.CRITICAL
	case cfg.WarningRange != nil && cfg.WarningRange.Contains(float64(v.count)):
		v.status = nagios.WARNING
	}
	return v
}

// aggregate folds v into result. The first queue initialises the result; a
// later queue only replaces status and message when it is strictly worse,
// so among equally severe queues the first one's message is kept.
func aggregate(result *nagios.Response, v queueVerdict) *nagios.Response {
	if result == nil {
		return nagios.NewResponse(v.status, v.message)
	}
	if v.status.Worse(result.Status) {
		result.Status = v.status
		result.Message = v.message
	}
	return result
}

func attachPerfData(result *nagios.Response, q *rabbitmq.Queue, v queueVerdict, cfg *config.Validated, name string) {
	result.AddPerfData(name+".messages", float64(v.count), cfg.WarningRange, cfg.CriticalRange)
	result.AddPerfData(name+".rate", q.Rate(), nil, nil)
	result.AddPerfData(name+".consumers", float64(q.Consumers), nil, consumersCritical)
}
