package cmd

import (
	"errors"

	"github.com/jlecren/rabbitmq-nagios-plugins/nagios"
)

// StatusError carries a non-OK verdict out of a command's RunE so that main
// can exit with the matching plugin exit code. The status line has already
// been printed when it is returned.
type StatusError struct {
	Status nagios.Status
}

func (e *StatusError) Error() string {
	return "check finished with status " + e.Status.String()
}

// ExitCode returns the process exit code for the error returned by
// Execute. Errors other than StatusError (bad flags, unknown commands) are
// UNKNOWN.
func ExitCode(err error) int {
	if err == nil {
		return nagios.OK.ExitCode()
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status.ExitCode()
	}
	return nagios.UNKNOWN.ExitCode()
}
