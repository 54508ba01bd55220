package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"mediaranker/internal/api"
	"mediaranker/internal/events"
	"mediaranker/internal/logging"
	"mediaranker/internal/notices"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var (
		bind    string
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over HTTP with live websocket updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(true)
			if err != nil {
				return err
			}

			hub := events.NewHub(logger, origins...)
			queue := notices.NewQueue(notices.DefaultQueueSize)
			sink := notices.Multi{queue, hub}

			b, err := ctx.openSession(signalCtx, sink, logger)
			if err != nil {
				return err
			}
			defer b.Close()

			addr := strings.TrimSpace(bind)
			if addr == "" {
				addr = cfg.Paths.APIBind
			}
			server := api.New(api.Deps{
				Session: b.Session,
				Catalog: optionalCatalog(cfg, logger),
				Hub:     hub,
				Notices: queue,
				Sink:    sink,
			}, api.Options{
				Bind:           addr,
				AllowedOrigins: origins,
				Images:         imageResolver(cfg),
				ExportFileName: cfg.Export.FileName,
				Search:         searchOptions(cfg),
			}, logger)

			if err := server.Start(signalCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", server.Addr())

			<-signalCtx.Done()
			server.Stop()
			logger.Info("api server stopped", logging.Uint64("events_published", hub.Stats().Published))
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default: paths.api_bind)")
	cmd.Flags().StringSliceVar(&origins, "origin", nil, "Allowed browser origin (repeatable; default: localhost)")
	return cmd
}
