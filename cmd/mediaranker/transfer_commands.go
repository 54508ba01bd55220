package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mediaranker/internal/storage"
)

var errNeedsConfirmation = errors.New("this replaces the whole board; rerun with --yes to confirm")

func newExportCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the board to an interchange file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(output)
			if target == "" {
				target = ctx.configValue().Export.FileName
			}
			return ctx.withSession(cmd, func(b *openBoard) error {
				data, err := b.Export(time.Now())
				if err != nil {
					return err
				}
				if target == "-" {
					_, err := cmd.OutOrStdout().Write(data)
					return err
				}
				if err := storage.WriteFileAtomic(target, data); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file, or - for stdout (default: export.file_name)")
	return cmd
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the board with an interchange file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNeedsConfirmation
			}
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(b *openBoard) error {
				report, err := b.Import(cmd.Context(), data)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported %d items\n", report.Loaded)
				if report.DroppedNoImage > 0 {
					fmt.Fprintf(out, "Skipped %d items without an image\n", report.DroppedNoImage)
				}
				if len(report.DroppedTiers) > 0 {
					fmt.Fprintf(out, "Ignored unknown tiers: %s\n", strings.Join(report.DroppedTiers, ", "))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm replacing the board")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	return data, nil
}

func newClearCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every item and the saved board",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNeedsConfirmation
			}
			return ctx.withSession(cmd, func(b *openBoard) error {
				return b.Clear(cmd.Context())
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm clearing the board")
	return cmd
}

func newThemeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "theme [light|dark]",
		Short: "Show or set the colour theme",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(b *openBoard) error {
				if len(args) == 0 {
					theme, err := b.Theme(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), theme)
					return nil
				}
				theme, err := storage.ParseTheme(args[0])
				if err != nil {
					return err
				}
				if err := b.SetTheme(cmd.Context(), theme); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %s\n", theme)
				return nil
			})
		},
	}
}
