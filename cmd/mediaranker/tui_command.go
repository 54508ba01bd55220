package main

import (
	"github.com/spf13/cobra"

	"mediaranker/internal/config"
	"mediaranker/internal/notices"
	"mediaranker/internal/tui"
)

func newTUICommand(ctx *commandContext) *cobra.Command {
	var exportPath string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal board",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			// The terminal owns stdout/stderr while the board is open.
			logger, err := ctx.newLogger(false)
			if err != nil {
				return err
			}
			queue := notices.NewQueue(notices.DefaultQueueSize)
			b, err := ctx.openSession(cmd.Context(), queue, logger)
			if err != nil {
				return err
			}
			defer b.Close()

			target := exportPath
			if target == "" {
				target = cfg.Export.FileName
			}
			if expanded, err := config.ExpandPath(target); err == nil {
				target = expanded
			}
			app := tui.New(cmd.Context(), b.Session, optionalCatalog(cfg, logger), queue, logger, tui.Options{
				ExportPath: target,
				Search:     searchOptions(cfg),
			})
			return app.Run()
		},
	}

	cmd.Flags().StringVar(&exportPath, "export-path", "", "Where the w key writes the board (default: export.file_name)")
	return cmd
}
