package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mediaranker/internal/preflight"
	"mediaranker/internal/storage"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check directories, the store lock and TMDB access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)

			if jsonOutput {
				return writeJSON(cmd, statusJSON(ctx, results))
			}

			out := cmd.OutOrStdout()
			color := shouldColorize(out)
			fmt.Fprintf(out, "Config: %s (exists: %s)\n", ctx.configPath, yesNo(ctx.configExists))
			fmt.Fprintf(out, "Data:   %s\n", cfg.DatabasePath())
			fmt.Fprintln(out, renderChecks(results, color))

			// The board summary needs the store lock; skip it while another
			// process holds it.
			err = ctx.withSession(cmd, func(b *openBoard) error {
				view := b.View()
				rows := make([][]string, 0, len(view.Tiers)+1)
				for _, tier := range view.Tiers {
					rows = append(rows, []string{tier.Label, fmt.Sprintf("%d", len(tier.Cards))})
				}
				rows = append(rows, []string{view.Pending.Label, fmt.Sprintf("%d", len(view.Pending.Cards))})
				fmt.Fprintln(out, renderTable(fmt.Sprintf("Board (%d items)", view.Total),
					[]string{"Collection", "Items"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
			if errors.Is(err, storage.ErrLocked) {
				fmt.Fprintln(out, "Board: in use by another mediaranker process")
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

type checkOutput struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

type statusOutput struct {
	ConfigPath   string        `json:"configPath"`
	ConfigExists bool          `json:"configExists"`
	Checks       []checkOutput `json:"checks"`
}

func statusJSON(ctx *commandContext, results []preflight.Result) statusOutput {
	out := statusOutput{
		ConfigPath:   ctx.configPath,
		ConfigExists: ctx.configExists,
		Checks:       make([]checkOutput, 0, len(results)),
	}
	for _, r := range results {
		out.Checks = append(out.Checks, checkOutput{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
	}
	return out
}
