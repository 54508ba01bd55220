package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediaranker/internal/api"
	"mediaranker/internal/board"
	"mediaranker/internal/catalog"
	"mediaranker/internal/media"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show [collection]",
		Short: "Display the board, or one collection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(b *openBoard) error {
				view := b.View()
				out := cmd.OutOrStdout()
				color := shouldColorize(out)

				if len(args) == 1 {
					id, err := board.ParseCollection(args[0])
					if err != nil {
						return err
					}
					if jsonOutput {
						full := api.FromView(view, imageResolver(ctx.configValue()))
						return writeJSON(cmd, pickCollection(full, id))
					}
					fmt.Fprint(out, renderCollection(view.Collection(id), color))
					return nil
				}

				if jsonOutput {
					return writeJSON(cmd, api.FromView(view, imageResolver(ctx.configValue())))
				}
				fmt.Fprint(out, renderBoard(view, color))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func pickCollection(b api.Board, id board.CollectionID) api.Collection {
	if id == board.Pending {
		return b.Pending
	}
	for _, tier := range b.Tiers {
		if tier.ID == string(id) {
			return tier
		}
	}
	return api.Collection{ID: string(id)}
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var (
		id     int64
		title  string
		year   string
		poster string
		kind   string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a title to your selection by hand",
		Long: "Add a title to the pending selection without searching. A poster path is\n" +
			"required; use `mediaranker search --add` to pick from catalog results instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec := catalog.Record{ID: id, Title: title, PosterPath: poster}
			switch strings.ToLower(strings.TrimSpace(kind)) {
			case "", "movie":
				rec.MediaType = "movie"
				rec.ReleaseDate = year
			case "tv", "show":
				rec.MediaType = "tv"
				rec.FirstAirDate = year
			default:
				return fmt.Errorf("unknown type %q (want movie or tv)", kind)
			}
			item, err := media.Normalize(rec, catalog.CategoryMedia)
			if err != nil {
				var npe *media.NotPlaceableError
				if errors.As(err, &npe) {
					return errors.New(npe.Notice())
				}
				return err
			}

			return ctx.withSession(cmd, func(b *openBoard) error {
				res, err := b.Add(cmd.Context(), item)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %q as %s to %s\n", item.Title, res.Ref, board.Pending.Label())
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Catalog id")
	cmd.Flags().StringVar(&title, "title", "", "Title")
	cmd.Flags().StringVar(&year, "year", "", "Release year or date")
	cmd.Flags().StringVar(&poster, "poster", "", "Poster path, relative to the image base URL")
	cmd.Flags().StringVar(&kind, "type", "movie", "movie or tv")
	return cmd
}

func newMoveCommand(ctx *commandContext) *cobra.Command {
	var position int

	cmd := &cobra.Command{
		Use:   "move <item> <collection>",
		Short: "Move an item to pending or a tier",
		Long: "Move an item. <item> is collection:position (pending:1, S:2),\n" +
			"collection:#catalog-id, or a ref from `show`. <collection> is pending or a\n" +
			"tier letter S, A, B, C, D, F.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := board.ParseCollection(args[1])
			if err != nil {
				return err
			}
			if position < 0 {
				return fmt.Errorf("position must be positive")
			}
			index := board.AppendIndex
			if position > 0 {
				index = position - 1
			}

			return ctx.withSession(cmd, func(b *openBoard) error {
				ref, err := b.Resolve(args[0])
				if err != nil {
					return err
				}
				res, err := b.Move(cmd.Context(), ref, to, index)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !res.Changed {
					fmt.Fprintf(out, "%q is already there\n", res.Item.Title)
					return nil
				}
				fmt.Fprintf(out, "Moved %q to %s\n", res.Item.Title, to.Label())
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&position, "position", 0, "1-based position in the target (default: end)")
	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <item>",
		Aliases: []string{"rm"},
		Short:   "Remove an item from the board",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(b *openBoard) error {
				ref, err := b.Resolve(args[0])
				if err != nil {
					return err
				}
				res, err := b.Remove(cmd.Context(), ref)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %q\n", res.Item.Title)
				return nil
			})
		},
	}
}
