package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jlecren/rabbitmq-nagios-plugins/check"
	"github.com/jlecren/rabbitmq-nagios-plugins/config"
	"github.com/jlecren/rabbitmq-nagios-plugins/log"
	"github.com/jlecren/rabbitmq-nagios-plugins/metrics"
	"github.com/jlecren/rabbitmq-nagios-plugins/nagios"
)

// NewCheckCommand creates the command checking every queue of a vhost whose
// name matches --pattern. cfg is filled by flags bound by the caller;
// factory creates the management API client once the config is valid.
func NewCheckCommand(cfg *config.Config, factory check.ClientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check message backlog of the queues matching a pattern",
		Args:  cobra.NoArgs,
		// a non-OK verdict comes back as StatusError after the status line
		// was printed, cobra must not add usage or error text to stdout
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return doCheck(cmd, *cfg, factory)
		},
	}

	cmd.Flags().String("config", "", "YAML file with check options, flags take precedence")

	return cmd
}

func doCheck(cmd *cobra.Command, cfg config.Config, factory check.ClientFactory) error {
	var resp *nagios.Response

	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		loaded, err := config.LoadFile(configFile, cmd.Flags())
		if err != nil {
			resp = (&check.Error{Kind: check.KindConfig, Stage: check.StageSetup, Err: err}).Response()
		}
		cfg = loaded
	}

	if cfg.Verbose && !log.IsVerbose {
		log.Init(true)
	}

	if resp == nil {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if cfg.TotalTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.TotalTimeout)
			defer cancel()
		}
		resp = check.New(cfg, factory).Check(ctx)
	}

	fmt.Fprintln(cmd.OutOrStdout(), resp)

	if cfg.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Textfile, cfg.Vhost, resp); err != nil {
			log.Error("failed to write textfile %s: %v", cfg.Textfile, err)
		}
	}

	if resp.Status != nagios.OK {
		return &StatusError{Status: resp.Status}
	}
	return nil
}
