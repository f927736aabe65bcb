package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kubev2v/transfer-agent/internal/config"
)

func newExportCmd(cfg *config.Configuration) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a spreadsheet describing the pulled forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.exports.Export(cmd.Context(), output)
			if err != nil {
				return fmt.Errorf("failed to export report: %w", err)
			}

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Exported %d forms to %s\n", n, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "forms.xlsx", "Report file")

	return cmd
}
