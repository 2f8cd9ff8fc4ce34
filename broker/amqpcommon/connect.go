// Package amqpcommon holds the connection settings shared by the management
// HTTP client and the AMQP 1.0 connection: credentials and TLS material.
package amqpcommon

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"

	"github.com/Azure/go-amqp"
	"github.com/jlecren/rabbitmq-nagios-plugins/log"
)

const containerID = "check_rabbitmq_queues"

// ConnArguments holds AMQP connection parameters
type ConnArguments struct {
	Server   string
	User     string
	Password string
	TLS      TLSConfig
}

// TLSConfig holds TLS parameters for AMQP and HTTPS
type TLSConfig struct {
	Enabled    bool
	CACert     string // Path to CA certificate file
	ClientCert string // Path to client certificate file
	ClientKey  string // Path to client key file
	Insecure   bool   // Skip certificate verification
}

// Connect establishes an AMQP 1.0 connection with SASL PLAIN, or ANONYMOUS
// when no user is given.
func Connect(args ConnArguments) (*amqp.Conn, *amqp.Session, error) {
	ctx := context.WithoutCancel(context.Background())

	connOptions := &amqp.ConnOptions{
		ContainerID: containerID,
		SASLType:    amqp.SASLTypeAnonymous(),
	}
	if args.User != "" {
		connOptions.SASLType = amqp.SASLTypePlain(args.User, args.Password)
	}

	if args.TLS.Enabled || strings.HasPrefix(args.Server, "amqps://") {
		tlsConfig, err := BuildTLSConfig(args.TLS)
		if err != nil {
			return nil, nil, fmt.Errorf("TLS configuration error: %w", err)
		}
		connOptions.TLSConfig = tlsConfig
	}

	log.Verbose("connecting to %s", args.Server)
	connection, err := amqp.Dial(ctx, args.Server, connOptions)
	if err != nil {
		return nil, nil, err
	}

	session, err := connection.NewSession(ctx, nil)
	if err != nil {
		connection.Close()
		return nil, nil, err
	}

	return connection, session, nil
}

// BuildTLSConfig turns file paths into a *tls.Config. Empty paths leave the
// system defaults in place.
func BuildTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.Insecure,
	}

	if cfg.CACert != "" {
		caCert, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate %s", cfg.CACert)
		}
		tlsConfig.RootCAs = pool
	}

	if cfg.ClientCert != "" || cfg.ClientKey != "" {
		if cfg.ClientCert == "" || cfg.ClientKey == "" {
			return nil, fmt.Errorf("client certificate and key must be given together")
		}
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}
