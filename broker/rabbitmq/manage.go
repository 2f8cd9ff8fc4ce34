package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/jlecren/rabbitmq-nagios-plugins/broker/amqpcommon"
	"github.com/jlecren/rabbitmq-nagios-plugins/log"
)

// ErrMissingOption is returned when a URL cannot be formed because a
// required option is empty.
var ErrMissingOption = errors.New("missing required option")

// URLError reports a management API URL that could not be formed.
type URLError struct {
	Err error
}

func (e *URLError) Error() string { return "problem forming api url: " + e.Err.Error() }
func (e *URLError) Unwrap() error { return e.Err }

// RequestError reports a request that did not produce a usable response:
// the connection failed, timed out or the API answered with a non-2xx code.
type RequestError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("management API returned status %d for %s: %v", e.StatusCode, e.URL, e.Err)
	}
	return fmt.Sprintf("management API request failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// DecodeError reports a response body that is not the expected JSON.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to parse response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Queue holds the queue fields returned by /api/queues.
type Queue struct {
	Name            string       `json:"name"`
	Vhost           string       `json:"vhost"`
	Messages        *int64       `json:"messages"`
	Consumers       int64        `json:"consumers"`
	MessagesDetails *RateDetails `json:"messages_details"`
}

type RateDetails struct {
	Rate float64 `json:"rate"`
}

// Rate returns messages_details.rate, or 0 when the broker did not report it.
func (q *Queue) Rate() float64 {
	if q.MessagesDetails == nil {
		return 0
	}
	return q.MessagesDetails.Rate
}

// ListURL returns {scheme}://host:port/api/queues/{vhost}.
func ListURL(args ManagementArgs) (*url.URL, error) {
	return apiURL(args, "")
}

// QueueURL returns the detail URL of a single queue. The queue name is path
// escaped so that "/" and spaces stay inside one path segment.
func QueueURL(args ManagementArgs, queue string) (*url.URL, error) {
	return apiURL(args, "/"+url.PathEscape(queue))
}

func apiURL(args ManagementArgs, suffix string) (*url.URL, error) {
	switch {
	case args.Hostname == "":
		return nil, &URLError{Err: fmt.Errorf("%w: hostname", ErrMissingOption)}
	case args.Port == "":
		return nil, &URLError{Err: fmt.Errorf("%w: port", ErrMissingOption)}
	case args.Vhost == "":
		return nil, &URLError{Err: fmt.Errorf("%w: vhost", ErrMissingOption)}
	}

	scheme := "http"
	if args.UseTLS {
		scheme = "https"
	}

	raw := fmt.Sprintf("%s://%s/api/queues/%s%s", scheme, net.JoinHostPort(args.Hostname, args.Port), args.Vhost, suffix)
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &URLError{Err: err}
	}
	return u, nil
}

// Client queries the RabbitMQ management API.
type Client struct {
	args       ManagementArgs
	httpClient *http.Client
}

// NewClient returns a Client for args. TLS settings are only applied when
// args.UseTLS is set.
func NewClient(args ManagementArgs) (*Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if args.UseTLS {
		tlsConfig, err := amqpcommon.BuildTLSConfig(args.TLS)
		if err != nil {
			return nil, fmt.Errorf("TLS configuration error: %w", err)
		}
		transport.TLSClientConfig = tlsConfig
	}

	return &Client{
		args: args,
		httpClient: &http.Client{
			Timeout:   args.Timeout,
			Transport: transport,
		},
	}, nil
}

// ListQueues lists the queues of the configured vhost.
func (c *Client) ListQueues(ctx context.Context) ([]Queue, error) {
	u, err := ListURL(c.args)
	if err != nil {
		return nil, err
	}

	body, err := c.managementGet(ctx, u)
	if err != nil {
		return nil, err
	}

	var queues []Queue
	if err := json.Unmarshal(body, &queues); err != nil {
		return nil, &DecodeError{URL: u.String(), Err: err}
	}
	return queues, nil
}

// GetQueue returns the details of a single queue.
func (c *Client) GetQueue(ctx context.Context, name string) (*Queue, error) {
	u, err := QueueURL(c.args, name)
	if err != nil {
		return nil, err
	}

	body, err := c.managementGet(ctx, u)
	if err != nil {
		return nil, err
	}

	var queue Queue
	if err := json.Unmarshal(body, &queue); err != nil {
		return nil, &DecodeError{URL: u.String(), Err: err}
	}
	return &queue, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) managementGet(ctx context.Context, u *url.URL) ([]byte, error) {
	fullURL := u.String()
	log.Verbose("requesting %s", fullURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &URLError{Err: err}
	}
	if c.args.User != "" {
		req.SetBasicAuth(c.args.User, c.args.Password)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{URL: fullURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{URL: fullURL, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{URL: fullURL, StatusCode: resp.StatusCode, Err: apiErrorReason(body)}
	}

	return body, nil
}

// The management API explains failures as {"error": ..., "reason": ...}.
func apiErrorReason(body []byte) error {
	var msg struct {
		Error  string `json:"error"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(body, &msg); err == nil && msg.Error != "" {
		return fmt.Errorf("err '%s', reason '%s'", msg.Error, msg.Reason)
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return errors.New(string(body))
}
