package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"mediaranker/internal/board"
	"mediaranker/internal/preflight"
	"mediaranker/internal/session"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var tierColors = map[board.CollectionID]string{
	board.Pending:     ansiBlue,
	board.Masterpiece: ansiRed,
	board.Great:       ansiYellow,
	board.Good:        ansiYellow,
	board.Decent:      ansiGreen,
	board.Mediocre:    ansiBlue,
	board.Bad:         ansiBlue,
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func colorize(s, color string, enabled bool) string {
	if !enabled || color == "" {
		return s
	}
	return color + s + ansiReset
}

func collectionHeading(c session.CollectionView) string {
	return fmt.Sprintf("%s (%d)", c.Label, len(c.Cards))
}

// renderCollection prints one collection as a table, or a single line when
// it is empty.
func renderCollection(c session.CollectionView, color bool) string {
	heading := colorize(collectionHeading(c), tierColors[c.ID], color)
	if len(c.Cards) == 0 {
		return fmt.Sprintf("%s\n  (empty)\n", heading)
	}
	rows := make([][]string, 0, len(c.Cards))
	for i, card := range c.Cards {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			card.Ref.String(),
			card.Title,
			card.Label,
			card.ID,
		})
	}
	table := renderTable("", []string{"#", "Ref", "Title", "Info", "Catalog ID"}, rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight})
	return heading + "\n" + table + "\n"
}

func renderBoard(view session.View, color bool) string {
	var b strings.Builder
	for _, tier := range view.Tiers {
		b.WriteString(renderCollection(tier, color))
		b.WriteString("\n")
	}
	b.WriteString(renderCollection(view.Pending, color))
	return b.String()
}

func renderChecks(results []preflight.Result, color bool) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		state := colorize("OK", ansiGreen, color)
		if !r.Passed {
			state = colorize("FAIL", ansiRed, color)
		}
		rows = append(rows, []string{r.Name, state, r.Detail})
	}
	return renderTable("", []string{"Check", "Status", "Detail"}, rows, nil)
}
