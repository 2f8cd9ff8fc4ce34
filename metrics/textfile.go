// Package metrics exports check results as Prometheus gauges in the text
// format read by node_exporter's textfile collector.
package metrics

import (
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jlecren/rabbitmq-nagios-plugins/nagios"
)

var queueGauges = []struct {
	suffix string
	opts   prometheus.GaugeOpts
}{
	{".messages", prometheus.GaugeOpts{Name: "rabbitmq_queue_messages", Help: "Messages in the queue."}},
	{".rate", prometheus.GaugeOpts{Name: "rabbitmq_queue_message_rate", Help: "Rate of change of the message count per second."}},
	{".consumers", prometheus.GaugeOpts{Name: "rabbitmq_queue_consumers", Help: "Consumers attached to the queue."}},
}

// WriteTextfile writes the status and the per-queue performance data of
// resp to path. vhost is the URL-escaped vhost the check ran against.
func WriteTextfile(path, vhost string, resp *nagios.Response) error {
	if unescaped, err := url.PathUnescape(vhost); err == nil {
		vhost = unescaped
	}

	reg := prometheus.NewRegistry()

	status := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "rabbitmq_queues_check_status",
		Help:        "Result of the queue check: 0 OK, 1 WARNING, 2 CRITICAL, 3 UNKNOWN.",
		ConstLabels: prometheus.Labels{"vhost": vhost},
	})
	status.Set(float64(resp.Status.ExitCode()))
	reg.MustRegister(status)

	vecs := make([]*prometheus.GaugeVec, len(queueGauges))
	for i, g := range queueGauges {
		vecs[i] = prometheus.NewGaugeVec(g.opts, []string{"vhost", "queue"})
		reg.MustRegister(vecs[i])
	}

	for _, p := range resp.PerfData {
		for i, g := range queueGauges {
			if queue, ok := strings.CutSuffix(p.Label, g.suffix); ok {
				vecs[i].WithLabelValues(vhost, queue).Set(p.Value)
				break
			}
		}
	}

	return prometheus.WriteToTextfile(path, reg)
}
