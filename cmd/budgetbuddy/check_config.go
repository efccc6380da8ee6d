package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// checkConfigCmd validates configuration (done by the root pre-run) and
// probes every collection once with the configured credential.
func checkConfigCmd(env *runtimeEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Validate configuration and check the Notion collections are reachable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := newNotionClient(env.cfg, env.logger)
			statuses, err := newUpstreamProbe(env.cfg, client, env.logger).Check(cmd.Context())

			out := cmd.OutOrStdout()
			for _, s := range statuses {
				mark := "ok"
				if !s.Reachable {
					mark = "unreachable"
				}
				fmt.Fprintf(out, "%-12s %s  %s\n", s.Collection, s.DatabaseID, mark)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "configuration OK")
			return nil
		},
	}
}
