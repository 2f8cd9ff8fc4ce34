//go:build integration

// Package integration provides testcontainer helpers for integration tests.
// Build with: -tags integration
package integration

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
)

const rabbitMQImage = "rabbitmq:4-management-alpine"

// BrokerContainer holds a running test broker container.
type BrokerContainer struct {
	Container testcontainers.Container

	// AMQP URL, used to seed queues with messages.
	URL string

	// Management API endpoint and credentials.
	ManagementHost string
	ManagementPort string
	User           string
	Password       string
}

func (b *BrokerContainer) Terminate(ctx context.Context) {
	if b.Container != nil {
		b.Container.Terminate(ctx) //nolint:errcheck
	}
}

// StartRabbitMQ starts a RabbitMQ container with the management plugin
// using the testcontainers module.
func StartRabbitMQ(ctx context.Context) (*BrokerContainer, error) {
	c, err := rabbitmq.Run(ctx, rabbitMQImage)
	if err != nil {
		return nil, fmt.Errorf("starting RabbitMQ: %w", err)
	}

	amqpURL, err := c.AmqpURL(ctx)
	if err != nil {
		c.Terminate(ctx) //nolint:errcheck
		return nil, err
	}

	httpURL, err := c.HttpURL(ctx)
	if err != nil {
		c.Terminate(ctx) //nolint:errcheck
		return nil, err
	}
	u, err := url.Parse(httpURL)
	if err != nil {
		c.Terminate(ctx) //nolint:errcheck
		return nil, err
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		c.Terminate(ctx) //nolint:errcheck
		return nil, err
	}

	return &BrokerContainer{
		Container:      c,
		URL:            amqpURL,
		ManagementHost: host,
		ManagementPort: port,
		User:           c.AdminUsername,
		Password:       c.AdminPassword,
	}, nil
}
