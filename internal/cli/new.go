package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"mindmap-cli/internal/codec"
	"mindmap-cli/internal/convert"
	"mindmap-cli/internal/model"
	"mindmap-cli/internal/store"
)

func newNewCmd(app *App) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "new [title]",
		Short: "Create a fresh map and save it as the workspace's latest snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := "Central Topic"
			if len(args) == 1 && args[0] != "" {
				title = args[0]
			}

			tree := model.NewDefaultTree(convert.NewNodeID())
			tree.Content = title
			convert.EnsureIDs(tree)
			graph := convert.TreeToFlow(tree, true)

			s, err := resolveStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Ensure(); err != nil {
				return writeErr(cmd, err)
			}
			l, err := s.OpenLocal(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.Close()

			snap := model.Snapshot{
				Nodes:     graph.Nodes,
				Edges:     graph.Edges,
				Tree:      tree,
				Timestamp: time.Now().UTC(),
			}
			if err := l.SaveLatest(cmd.Context(), snap); err != nil {
				return writeErr(cmd, err)
			}

			if out != "" {
				f, ok := codec.FormatForPath(out)
				if !ok {
					f = codec.FormatJSON
				}
				text, err := codec.Encode(f, tree)
				if err != nil {
					return writeErr(cmd, err)
				}
				if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
					return writeErr(cmd, err)
				}
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"workspace": app.Workspace,
					"root":      tree.ID,
					"title":     title,
					"nodes":     tree.CountNodes(),
					"file":      out,
				},
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Also write the new map to a file (format from extension)")
	return cmd
}

func loadLatest(cmd *cobra.Command, app *App) (*store.Local, *model.Snapshot, error) {
	s, err := resolveStore(app)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Ensure(); err != nil {
		return nil, nil, err
	}
	l, err := s.OpenLocal(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	snap, err := l.Latest(cmd.Context())
	if err != nil {
		l.Close()
		return nil, nil, err
	}
	if snap == nil {
		l.Close()
		return nil, nil, errNoSnapshot(app.Workspace)
	}
	return l, snap, nil
}
