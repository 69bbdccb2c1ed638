package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newExtractCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <url>",
		Short: "Extract one profile and print it as JSON.",
		Long: "Extract one profile and print it as JSON. Counts that could not be " +
			"verified are printed as empty strings, meaning unknown rather than zero.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.newEngine(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := e.Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
}
