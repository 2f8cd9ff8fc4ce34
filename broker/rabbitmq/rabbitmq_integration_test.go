//go:build integration

package rabbitmq_test

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jlecren/rabbitmq-nagios-plugins/broker/rabbitmq"
	"github.com/jlecren/rabbitmq-nagios-plugins/check"
	"github.com/jlecren/rabbitmq-nagios-plugins/config"
	"github.com/jlecren/rabbitmq-nagios-plugins/nagios"
	"github.com/jlecren/rabbitmq-nagios-plugins/test/integration"
)

var broker *integration.BrokerContainer

func TestMain(m *testing.M) {
	ctx := context.Background()
	var err error
	broker, err = integration.StartRabbitMQ(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start RabbitMQ: %v\n", err)
		os.Exit(1)
	}

	err = integration.WaitForBroker(func() error {
		c, s, err := rabbitmq.Connect(newConnArgs())
		if err != nil {
			return err
		}
		s.Close(context.Background())
		c.Close()
		return nil
	}, 30*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "RabbitMQ not ready: %v\n", err)
		broker.Terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()
	broker.Terminate(ctx)
	os.Exit(code)
}

func newConnArgs() rabbitmq.ConnArguments {
	u, _ := url.Parse(broker.URL)
	return rabbitmq.ConnArguments{
		Server:   "amqp://" + u.Host,
		User:     broker.User,
		Password: broker.Password,
	}
}

func newConfig(pattern string) config.Config {
	return config.Config{
		Hostname: broker.ManagementHost,
		Port:     broker.ManagementPort,
		Vhost:    config.DefaultVhost,
		Username: broker.User,
		Password: broker.Password,
		Pattern:  pattern,
		Timeout:  5 * time.Second,
	}
}

// declareQueue creates a durable classic queue through the management API.
func declareQueue(t *testing.T, name string) {
	t.Helper()
	u := fmt.Sprintf("http://%s/api/queues/%%2F/%s",
		net.JoinHostPort(broker.ManagementHost, broker.ManagementPort), url.PathEscape(name))

	req, err := http.NewRequest(http.MethodPut, u, bytes.NewBufferString(`{"durable":true}`))
	if err != nil {
		t.Fatal(err)
	}
	req.SetBasicAuth(broker.User, broker.Password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("declare %s: %v", name, err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		t.Fatalf("declare %s: status %d", name, resp.StatusCode)
	}
}

func publish(t *testing.T, queue string, n int) {
	t.Helper()
	bodies := make([][]byte, n)
	for i := range bodies {
		bodies[i] = []byte(fmt.Sprintf("message %d", i))
	}
	if err := rabbitmq.Publish(context.Background(), newConnArgs(), queue, bodies...); err != nil {
		t.Fatalf("Publish to %s: %v", queue, err)
	}
}

// waitForCount polls the check until the management API reports the
// published messages; queue stats are refreshed periodically.
func waitForCount(t *testing.T, cfg config.Config, perf string) *nagios.Response {
	t.Helper()
	var resp *nagios.Response
	err := integration.WaitForBroker(func() error {
		resp = check.New(cfg, check.NewManagementClient).Check(context.Background())
		if !strings.Contains(resp.String(), perf) {
			return fmt.Errorf("got %s", resp)
		}
		return nil
	}, 30*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestRabbitMQ_ListAndGetQueue(t *testing.T) {
	declareQueue(t, "it.list.one")
	publish(t, "it.list.one", 2)

	client, err := rabbitmq.NewClient(rabbitmq.ManagementArgs{
		Hostname: broker.ManagementHost,
		Port:     broker.ManagementPort,
		Vhost:    config.DefaultVhost,
		User:     broker.User,
		Password: broker.Password,
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	queues, err := client.ListQueues(context.Background())
	if err != nil {
		t.Fatalf("ListQueues: %v", err)
	}
	found := false
	for _, q := range queues {
		if q.Name == "it.list.one" {
			found = true
		}
	}
	if !found {
		t.Fatalf("it.list.one not in %d listed queues", len(queues))
	}

	q, err := client.GetQueue(context.Background(), "it.list.one")
	if err != nil {
		t.Fatalf("GetQueue: %v", err)
	}
	if q.Name != "it.list.one" {
		t.Errorf("name = %q, want it.list.one", q.Name)
	}
}

func TestRabbitMQ_CheckWarning(t *testing.T) {
	declareQueue(t, "it.warn.small")
	declareQueue(t, "it.warn.big")
	publish(t, "it.warn.big", 12)

	cfg := newConfig(`it\.warn\.`)
	cfg.Warning = "10:"
	cfg.Critical = "100:"

	resp := waitForCount(t, cfg, "it.warn.big.messages=12;")

	if resp.Status != nagios.WARNING {
		t.Errorf("status = %s, want WARNING (%s)", resp.Status, resp)
	}
	if resp.Message != "found 12 messages" {
		t.Errorf("message = %q, want %q", resp.Message, "found 12 messages")
	}
	// nobody consumes from the queues
	if !strings.Contains(resp.String(), "it.warn.small.consumers=0;;0") {
		t.Errorf("missing consumers perfdata in %s", resp)
	}
}

func TestRabbitMQ_CheckCriticalWithSlashInName(t *testing.T) {
	declareQueue(t, "it/crit")
	publish(t, "it/crit", 3)

	cfg := newConfig("it/")
	cfg.Critical = "3:"

	resp := waitForCount(t, cfg, "it/crit.messages=3;")

	if resp.Status != nagios.CRITICAL {
		t.Errorf("status = %s, want CRITICAL (%s)", resp.Status, resp)
	}
}

func TestRabbitMQ_CheckNoMatch(t *testing.T) {
	resp := check.New(newConfig("does-not-exist"), check.NewManagementClient).Check(context.Background())

	if resp.Status != nagios.OK {
		t.Errorf("status = %s, want OK", resp.Status)
	}
	if !strings.Contains(resp.Message, "No queues matched") {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestRabbitMQ_CheckWrongPassword(t *testing.T) {
	cfg := newConfig(".*")
	cfg.Password = "wrong"

	resp := check.New(cfg, check.NewManagementClient).Check(context.Background())

	if resp.Status != nagios.UNKNOWN {
		t.Errorf("status = %s, want UNKNOWN (%s)", resp.Status, resp)
	}
}
