package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"predictd/internal/client"
	"predictd/pkg/types"
)

func newSmokeCmd() *cobra.Command {
	var baseURL string
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:     "smoke",
		Short:   "Check a running server: health, models and a healthcare prediction",
		Example: "  predictd smoke --base-url http://localhost:8000",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return client.Smoke(ctx, client.New(baseURL, nil), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:8000", "Server base URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")
	return cmd
}

func newModelsCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Validate and list model definitions",
		Long:  "Loads model definitions the same way serve does and prints them. Exits non-zero if any definition is invalid.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := loadRegistry(dir)
			if err != nil {
				return err
			}
			models := make([]types.Model, 0, len(defs))
			for _, d := range defs {
				models = append(models, d.Descriptor())
			}
			return printModels(cmd.OutOrStdout(), models)
		},
	}
	cmd.Flags().StringVar(&dir, "models-dir", "", "Directory of model definition files (empty lists built-in models)")
	return cmd
}

func printModels(w io.Writer, models []types.Model) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDOMAIN\tTYPE\tKIND\tVERSION\tACCURACY\tFEATURES")
	for _, m := range models {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2f\t%d\n", m.Name, m.Domain, m.ProblemType, m.Kind, m.Version, m.Accuracy, m.Features)
	}
	return tw.Flush()
}
