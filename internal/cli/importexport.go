package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mindmap-cli/internal/codec"
	"mindmap-cli/internal/convert"
	"mindmap-cli/internal/model"
)

func newImportCmd(app *App) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a map file and store it as the workspace's latest snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := pickFormat(from, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			// Malformed input aborts before anything is written; the stored
			// snapshot is never replaced with a partial tree.
			tree, err := codec.Decode(f, string(raw))
			if err != nil {
				return writeErr(cmd, err)
			}
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

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"workspace": app.Workspace,
					"file":      args[0],
					"format":    f,
					"nodes":     tree.CountNodes(),
				},
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Input format (overrides extension)")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var to, out string
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export the workspace's latest snapshot to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, snap, err := loadLatest(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.Close()

			tree := snap.Tree
			if tree == nil {
				tree = convert.FlowToTree(snap.Nodes, snap.Edges)
			}
			if tree == nil {
				return writeErr(cmd, fmt.Errorf("stored snapshot has no reconstructible tree"))
			}

			path := out
			if len(args) == 1 {
				path = args[0]
			}

			var f codec.Format
			switch {
			case to != "":
				if f, err = codec.ParseFormat(to); err != nil {
					return writeErr(cmd, err)
				}
			case path != "":
				var ok bool
				if f, ok = codec.FormatForPath(path); !ok {
					return writeErr(cmd, fmt.Errorf("cannot infer format from %q; pass --to", path))
				}
			default:
				f = codec.FormatJSON
			}
			if path == "" {
				path = codec.DefaultFilename(f)
			}

			text, err := codec.Encode(f, tree)
			if err != nil {
				return writeErr(cmd, err)
			}
			if path == "-" {
				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			}
			if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"file":   path,
					"format": f,
					"nodes":  tree.CountNodes(),
				},
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Output format (overrides extension)")
	cmd.Flags().StringVar(&out, "out", "", "Output path (default: fixed per-format filename)")
	return cmd
}
