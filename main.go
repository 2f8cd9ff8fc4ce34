package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jlecren/rabbitmq-nagios-plugins/broker"
	"github.com/jlecren/rabbitmq-nagios-plugins/cmd"
	"github.com/jlecren/rabbitmq-nagios-plugins/log"
	"github.com/jlecren/rabbitmq-nagios-plugins/nagios"
)

func main() {
	code := run(os.Args[1:], os.Stdout)
	log.Sync()
	os.Exit(code)
}

// run executes the root command with args and returns the exit code.
// Exactly one status line is written to stdout.
func run(args []string, stdout io.Writer) int {
	rootCmd := broker.GetRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)

	err := rootCmd.Execute()

	var statusErr *cmd.StatusError
	if err != nil && !errors.As(err, &statusErr) {
		// flag and usage errors never reached the check
		fmt.Fprintln(stdout, nagios.NewResponse(nagios.UNKNOWN, err.Error()))
	}

	return cmd.ExitCode(err)
}
