package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mindmap-cli/internal/codec"
	"mindmap-cli/internal/convert"
)

func newConvertCmd(app *App) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a map file between formats",
		Long: `Convert reads a map in any importable format and writes it in any
exportable one. Formats are inferred from extensions (.json, .mm, .opml,
.md, .yaml, .d2) and can be forced with --from/--to. D2 is export-only.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inFormat, err := pickFormat(from, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			outFormat, err := pickFormat(to, args[1])
			if err != nil {
				return writeErr(cmd, err)
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			tree, err := codec.Decode(inFormat, string(raw))
			if err != nil {
				return writeErr(cmd, err)
			}
			convert.EnsureIDs(tree)

			text, err := codec.Encode(outFormat, tree)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := os.WriteFile(args[1], []byte(text), 0o644); err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"in":    args[0],
					"out":   args[1],
					"from":  inFormat,
					"to":    outFormat,
					"nodes": tree.CountNodes(),
				},
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Input format (overrides extension)")
	cmd.Flags().StringVar(&to, "to", "", "Output format (overrides extension)")
	return cmd
}

func pickFormat(flag, path string) (codec.Format, error) {
	if flag != "" {
		return codec.ParseFormat(flag)
	}
	if f, ok := codec.FormatForPath(path); ok {
		return f, nil
	}
	return "", fmt.Errorf("cannot infer format from %q; pass --from/--to", path)
}
