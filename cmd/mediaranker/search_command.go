package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediaranker/internal/api"
	"mediaranker/internal/board"
	"mediaranker/internal/catalog"
	"mediaranker/internal/search"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var (
		person     bool
		addIndex   int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog, optionally adding a result",
		Long: "Search movies and shows (or people with --person). With --add N the Nth\n" +
			"result is added to your selection; for a person that adds their most\n" +
			"popular credits.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cat, err := catalogClient(cfg)
			if err != nil {
				return err
			}
			category := catalog.CategoryMedia
			if person {
				category = catalog.CategoryPerson
			}
			query := strings.Join(args, " ")
			sink := noticePrinter(cmd.ErrOrStderr())

			if addIndex <= 0 {
				logger, err := ctx.newLogger(false)
				if err != nil {
					return err
				}
				// Listing results never touches the board, so it runs without
				// the store lock against a throwaway board.
				orch := search.New(cat, board.New(), sink, logger, searchOptions(cfg))
				defer orch.Close()
				orch.SetCategory(category)
				res, err := orch.Search(cmd.Context(), query)
				if err != nil {
					return err
				}
				return printResults(cmd, res, imageResolver(cfg), jsonOutput)
			}

			return ctx.withSession(cmd, func(b *openBoard) error {
				orch := search.New(cat, b.Session, sink, b.logger, searchOptions(cfg))
				defer orch.Close()
				orch.SetCategory(category)
				res, err := orch.Search(cmd.Context(), query)
				if err != nil {
					return err
				}
				if res.Failed {
					return errors.New(search.MsgSearchFailed)
				}
				sel, err := orch.Select(cmd.Context(), addIndex-1)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, api.FromSelection(sel, imageResolver(cfg)))
				}
				out := cmd.OutOrStdout()
				for _, added := range sel.Added {
					fmt.Fprintf(out, "%s\t%s\t%s\n", added.Ref, added.Item.Title, added.Item.Label())
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&person, "person", "p", false, "Search people instead of titles")
	cmd.Flags().IntVar(&addIndex, "add", 0, "Add the Nth result (1-based)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printResults(cmd *cobra.Command, res search.Results, images api.Images, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(cmd, api.FromResults(res, images))
	}
	if res.Failed {
		return errors.New(search.MsgSearchFailed)
	}
	out := cmd.OutOrStdout()
	if len(res.Candidates) == 0 {
		fmt.Fprintln(out, "No results")
		return nil
	}
	rows := make([][]string, 0, len(res.Candidates))
	for i, c := range res.Candidates {
		image := "yes"
		if !c.Item.Placeable() {
			image = "missing"
		}
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), c.Item.Title, c.Item.Label(), c.Item.ID, image})
	}
	fmt.Fprintln(out, renderTable(fmt.Sprintf("Results for %q", res.Query),
		[]string{"#", "Title", "Info", "Catalog ID", "Image"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft}))
	return nil
}
