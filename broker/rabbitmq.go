package broker

import (
	"github.com/spf13/cobra"

	"github.com/jlecren/rabbitmq-nagios-plugins/check"
	"github.com/jlecren/rabbitmq-nagios-plugins/cmd"
	"github.com/jlecren/rabbitmq-nagios-plugins/config"
	"github.com/jlecren/rabbitmq-nagios-plugins/log"
)

// GetRootCommand returns the queue check as root command. Options default
// to the RABBITMQ_* environment variables.
func GetRootCommand() *cobra.Command {
	return newRootCommand(check.NewManagementClient)
}

func newRootCommand(factory check.ClientFactory) *cobra.Command {
	cfg := config.Defaults()

	rootCmd := cmd.NewCheckCommand(&cfg, factory)
	rootCmd.Use = "check_rabbitmq_queues"
	rootCmd.Short = "Nagios check of RabbitMQ queue backlogs"
	rootCmd.Long = "Checks the message count of every queue of a vhost matching a pattern\n" +
		"through the RabbitMQ management API and reports the worst result."
	rootCmd.PersistentPreRun = func(c *cobra.Command, args []string) {
		log.Init(cfg.Verbose)
	}

	cfg.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(cmd.NewVersionCommand())

	return rootCmd
}
