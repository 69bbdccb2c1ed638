package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/fanscope/pkg/batch"
)

func newBatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <file|->",
		Short: "Extract every profile listed in a file, one URL per line.",
		Long: "Extract every profile listed in a file (or stdin with -), one URL per line. " +
			"Blank lines and lines starting with # are ignored. Profiles are processed one " +
			`at a time. Rows marked "invalid data" loaded but did not yield both counts ` +
			"and should be checked by hand.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeIn, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			inputs, err := batch.ReadInputs(in)
			closeIn()
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				return fmt.Errorf("no profile URLs in %s", args[0])
			}

			e, err := a.newEngine(cmd.Context())
			if err != nil {
				return err
			}
			limiter := batch.NewHostLimiter(a.s.hostDelay, a.logger)
			for host, d := range a.s.hostDelays {
				limiter.SetHostDelay(host, d)
			}
			runner := batch.New(e,
				batch.WithLogger(a.logger),
				batch.WithPause(a.s.pause),
				batch.WithLimiter(limiter),
				batch.WithHosts(a.s.hosts),
			)
			results, runErr := runner.Run(cmd.Context(), inputs)

			if a.s.jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			} else {
				batch.RenderTable(cmd.OutOrStdout(), results)
			}

			if runErr != nil {
				return fmt.Errorf("batch stopped after %d of %d profiles: %w", len(results), len(inputs), runErr)
			}
			return failures(results)
		},
	}
	cmd.Flags().DurationVar(&a.s.pause, "pause", a.s.pause, "pause between profiles")
	cmd.Flags().DurationVar(&a.s.hostDelay, "host-delay", a.s.hostDelay, "minimum spacing between requests to one host")
	cmd.Flags().BoolVar(&a.s.jsonOut, "json", false, "print results as JSON instead of a table")
	return cmd
}

// failures returns an error when any profile failed outright.
func failures(results []batch.Result) error {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d profiles failed", n, len(results))
}
