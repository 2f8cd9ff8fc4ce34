package check

import (
	"errors"
	"fmt"

	"github.com/jlecren/rabbitmq-nagios-plugins/broker/rabbitmq"
	"github.com/jlecren/rabbitmq-nagios-plugins/config"
	"github.com/jlecren/rabbitmq-nagios-plugins/nagios"
)

// Kind classifies a check failure.
type Kind int

const (
	KindConfig Kind = iota
	KindURL
	KindTransport
	KindParse
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindURL:
		return "url"
	case KindTransport:
		return "transport"
	case KindParse:
		return "parse"
	default:
		return "internal"
	}
}

// Stage tells which request of the check failed.
type Stage int

const (
	StageSetup Stage = iota
	StageList
	StageDetail
)

// Error is a failed check. Its Status depends on both Kind and Stage: the
// queue list failing means the broker state is unknown, a single queue
// failing after the list succeeded is reported as critical.
type Error struct {
	Kind  Kind
	Stage Stage
	Queue string
	Err   error
}

func (e *Error) Error() string {
	if e.Queue != "" {
		return fmt.Sprintf("%s error on queue %s: %v", e.Kind, e.Queue, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the error to a verdict.
func (e *Error) Status() nagios.Status {
	if e.Stage == StageDetail && e.Kind != KindInternal {
		return nagios.CRITICAL
	}
	return nagios.UNKNOWN
}

// Message is the text shown in the status line.
func (e *Error) Message() string {
	switch {
	case e.Kind == KindInternal:
		return "Error occurred: " + e.Err.Error()
	case e.Kind == KindConfig && e.Stage == StageSetup:
		return "Incorrect check config: " + e.Err.Error()
	case e.Stage == StageDetail:
		return e.Queue + ": " + e.Err.Error()
	case e.Kind == KindURL, e.Kind == KindConfig:
		return "Error with URL: " + e.Err.Error()
	default:
		return "The server did not respond: " + e.Err.Error()
	}
}

// Response turns the error into the terminal result of a check.
func (e *Error) Response() *nagios.Response {
	return nagios.NewResponse(e.Status(), e.Message())
}

func classify(stage Stage, queue string, err error) *Error {
	var (
		checkErr  *Error
		urlErr    *rabbitmq.URLError
		decodeErr *rabbitmq.DecodeError
		validErr  *config.ValidationError
	)

	kind := KindTransport
	switch {
	case errors.As(err, &checkErr):
		return checkErr
	case errors.As(err, &validErr), errors.Is(err, rabbitmq.ErrMissingOption):
		kind = KindConfig
	case errors.As(err, &urlErr):
		kind = KindURL
	case errors.As(err, &decodeErr):
		kind = KindParse
	}

	return &Error{Kind: kind, Stage: stage, Queue: queue, Err: err}
}
