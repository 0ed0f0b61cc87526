package cli

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"mindmap-cli/internal/docs"
)

func newDocsCmd(app *App) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show built-in documentation topics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				type row struct {
					Topic string `json:"topic" yaml:"topic"`
					Title string `json:"title" yaml:"title"`
				}
				var rows []row
				for _, t := range docs.Topics() {
					rows = append(rows, row{Topic: t, Title: docs.Title(t)})
				}
				return writeOut(cmd, app, map[string]any{"data": rows})
			}

			text, ok := docs.Get(args[0])
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown topic %q; run `mindmap docs` for the list", args[0]))
			}
			if plain {
				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			}
			r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
			if err != nil {
				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			}
			out, err := r.Render(text)
			if err != nil {
				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Print raw markdown without terminal rendering")
	return cmd
}
