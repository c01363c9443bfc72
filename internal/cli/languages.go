package cli

import (
	"fmt"
	"io"

	"grammarcheck/internal/languagetool"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

func languagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List language tags accepted by --language",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			listLanguages(cmd.OutOrStdout())
		},
	}
}

func listLanguages(w io.Writer) {
	tags := append([]string{languagetool.Auto}, languagetool.Languages...)
	width := 0
	for _, tag := range tags {
		width = max(width, runewidth.StringWidth(tag))
	}
	for _, tag := range tags {
		fmt.Fprintf(w, "%s  %s\n", runewidth.FillRight(tag, width), languagetool.DisplayName(tag))
	}
}
