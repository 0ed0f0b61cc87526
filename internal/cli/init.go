package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize local storage (workspace-first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Ensure(); err != nil {
				return writeErr(cmd, err)
			}
			// Open once so the SQLite schema exists before first use.
			l, err := s.OpenLocal(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.Close()

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"workspace":  app.Workspace,
					"dir":        app.Dir,
					"sqlitePath": filepath.Join(app.Dir, "local.db"),
				},
			})
		},
	}
	return cmd
}
