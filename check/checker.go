// Package check evaluates the queues of a vhost against message count
// thresholds and reports the worst of them.
package check

import (
	"context"
	"fmt"

	"github.com/jlecren/rabbitmq-nagios-plugins/broker/amqpcommon"
	"github.com/jlecren/rabbitmq-nagios-plugins/broker/rabbitmq"
	"github.com/jlecren/rabbitmq-nagios-plugins/config"
	"github.com/jlecren/rabbitmq-nagios-plugins/log"
	"github.com/jlecren/rabbitmq-nagios-plugins/nagios"
)

// QueueAPI is the part of the management API a check needs.
type QueueAPI interface {
	ListQueues(ctx context.Context) ([]rabbitmq.Queue, error)
	GetQueue(ctx context.Context, name string) (*rabbitmq.Queue, error)
}

// ClientFactory creates the QueueAPI once the config is known to be valid.
type ClientFactory func(cfg *config.Validated) (QueueAPI, error)

// NewManagementClient is the ClientFactory talking to a real broker.
func NewManagementClient(cfg *config.Validated) (QueueAPI, error) {
	return rabbitmq.NewClient(rabbitmq.ManagementArgs{
		Hostname: cfg.Hostname,
		Port:     cfg.Port,
		UseTLS:   cfg.UseSSL,
		Vhost:    cfg.Vhost,
		User:     cfg.Username,
		Password: cfg.Password,
		TLS: amqpcommon.TLSConfig{
			Enabled:    cfg.UseSSL,
			CACert:     cfg.CACert,
			ClientCert: cfg.ClientCert,
			ClientKey:  cfg.ClientKey,
			Insecure:   cfg.Insecure,
		},
		Timeout: cfg.Timeout,
	})
}

// Checker runs one check of all queues matching a pattern.
type Checker struct {
	cfg       config.Config
	newClient ClientFactory
}

func New(cfg config.Config, newClient ClientFactory) *Checker {
	return &Checker{cfg: cfg, newClient: newClient}
}

// Check always returns a response; failures are turned into an UNKNOWN or
// CRITICAL response, including panics.
func (c *Checker) Check(ctx context.Context) (resp *nagios.Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = (&Error{Kind: KindInternal, Err: fmt.Errorf("%v", r)}).Response()
		}
	}()

	resp, err := c.check(ctx)
	if err != nil {
		checkErr := classify(StageSetup, "", err)
		log.Error("check failed: %v", checkErr)
		return checkErr.Response()
	}
	return resp
}

func (c *Checker) check(ctx context.Context) (*nagios.Response, error) {
	cfg, err := c.cfg.Validate()
	if err != nil {
		return nil, &Error{Kind: KindConfig, Stage: StageSetup, Err: err}
	}

	api, err := c.newClient(cfg)
	if err != nil {
		return nil, &Error{Kind: KindConfig, Stage: StageSetup, Err: err}
	}
	if closer, ok := api.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	queues, err := api.ListQueues(ctx)
	if err != nil {
		return nil, classify(StageList, "", err)
	}
	log.Verbose("vhost %s has %d queues", cfg.Vhost, len(queues))

	var result *nagios.Response
	for _, listed := range queues {
		if !cfg.Matcher.MatchString(listed.Name) {
			continue
		}

		q, err := api.GetQueue(ctx, listed.Name)
		if err != nil {
			return nil, classify(StageDetail, listed.Name, err)
		}

		v := evaluateQueue(q, cfg)
		log.With("queue", listed.Name, "messages", v.count, "consumers", q.Consumers).
			Debugf("queue is %s", v.status)

		result = aggregate(result, v)
		attachPerfData(result, q, v, cfg, listed.Name)
	}

	if result == nil {
		return nagios.NewResponse(nagios.OK, fmt.Sprintf("No queues matched pattern %q", cfg.Pattern)), nil
	}
	return result, nil
}
