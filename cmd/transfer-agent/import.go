package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kubev2v/transfer-agent/internal/config"
	"github.com/kubev2v/transfer-agent/internal/models"
)

func newImportCmd(cfg *config.Configuration) *cobra.Command {
	var source, formID string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Pull the forms of an ODK Collect directory and wait for the transfer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			unsubscribe := a.bus.Subscribe(func(e models.Event) { printEvent(out, e) })
			defer unsubscribe()

			id, err := a.transfers.Import(ctx, source, formID)
			if err != nil {
				return err
			}

			t, err := a.transfers.Wait(ctx, id)
			if err != nil {
				// interrupted: ask the jobs to stop and wait for them
				zap.S().Named("main").Infow("import interrupted", "transfer", id)
				if err := a.transfers.Cancel(id); err != nil {
					return err
				}
				if t, err = a.transfers.Wait(context.Background(), id); err != nil {
					return err
				}
			}

			printSummary(out, t)
			if t.Failed > 0 {
				return fmt.Errorf("%d of %d forms failed", t.Failed, t.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "ODK Collect forms directory")
	cmd.Flags().StringVar(&formID, "form-id", "", "Pull only this form")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

func printEvent(w io.Writer, e models.Event) {
	switch e.Type {
	case models.EventPullSuccess:
		color.New(color.FgGreen).Fprintf(w, "  ✓ %s\n", e.FormID)
	case models.EventPullFailure:
		color.New(color.FgRed).Fprintf(w, "  ✗ %s: %v\n", e.FormID, e.Err)
	}
}

func printSummary(w io.Writer, t *models.Transfer) {
	bold := color.New(color.Bold)
	bold.Fprintf(w, "\nTransfer %s %s\n", t.ID, t.State)
	fmt.Fprintf(w, "  forms:     %d\n", t.Total)
	color.New(color.FgGreen).Fprintf(w, "  succeeded: %d\n", t.Succeeded)

	failed := color.New(color.FgRed)
	if t.Failed == 0 {
		failed = color.New(color.Reset)
	}
	failed.Fprintf(w, "  failed:    %d\n", t.Failed)

	for _, e := range t.Errors {
		failed.Fprintf(w, "    %s\n", e)
	}
}
