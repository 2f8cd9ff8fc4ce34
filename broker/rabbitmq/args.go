package rabbitmq

import (
	"time"

	"github.com/jlecren/rabbitmq-nagios-plugins/broker/amqpcommon"
)

// ManagementArgs holds parameters for the RabbitMQ management API
type ManagementArgs struct {
	Hostname string
	Port     string
	UseTLS   bool
	Vhost    string // already URL-escaped, "/" is "%2F"
	User     string
	Password string
	TLS      amqpcommon.TLSConfig
	Timeout  time.Duration
}
