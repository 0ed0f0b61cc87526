package cli

import (
	"github.com/spf13/cobra"

	"mindmap-cli/internal/keymap"
)

type keyRow struct {
	Chord string `json:"chord" yaml:"chord"`
	Label string `json:"label" yaml:"label"`
}

func newKeysCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Print the editor's keyboard shortcut table",
		RunE: func(cmd *cobra.Command, args []string) error {
			bindings := keymap.Bindings()
			rows := make([]keyRow, 0, len(bindings))
			for _, b := range bindings {
				rows = append(rows, keyRow{Chord: b.Chord(), Label: b.Label})
			}
			return writeOut(cmd, app, map[string]any{"data": rows})
		},
	}
}
