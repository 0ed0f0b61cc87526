package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mindmap-cli/internal/config"
	"mindmap-cli/internal/format"
	"mindmap-cli/internal/store"
	"mindmap-cli/internal/tui"
)

type App struct {
	Dir        string
	Workspace  string
	ConfigFile string
	PrettyJSON bool
	Format     string

	cfg *config.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "mindmap",
		Short:        "Local-first mind map editor + converter",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive editor
  mindmap

  # Create a map and export it as FreeMind XML
  mindmap new "Project plan" --out plan.mm

  # Convert between formats
  mindmap convert plan.mm plan.md

  # Manual save points
  mindmap history save --label "before refactor"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("MINDMAP_DIR", ""), "Path to workspace dir (advanced: overrides workspace resolution; for fixtures/tests)")
	cmd.PersistentFlags().StringVar(&app.Workspace, "workspace", envOr("MINDMAP_WORKSPACE", ""), "Workspace name (default: 'default')")
	cmd.PersistentFlags().StringVar(&app.ConfigFile, "config", "", "Config file (default: ~/.config/mindmap/config.yaml)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("MINDMAP_FORMAT", "json"), "Output format (json|yaml)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newNewCmd(app))
	cmd.AddCommand(newConvertCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newAssistCmd(app))
	cmd.AddCommand(newWebhookCmd(app))
	cmd.AddCommand(newKeysCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(app *App) error {
	st, err := resolveStore(app)
	if err != nil {
		return err
	}
	cfg, err := app.loadConfig()
	if err != nil {
		return err
	}
	return tui.Run(st, cfg)
}

// resolveStore picks the workspace directory:
// 1) --dir
// 2) --workspace
// 3) config workspace (default "default")
func resolveStore(app *App) (store.Store, error) {
	if app.Dir != "" {
		return store.Store{Dir: app.Dir}, nil
	}
	name := app.Workspace
	if name == "" {
		cfg, err := app.loadConfig()
		if err != nil {
			return store.Store{}, err
		}
		name = cfg.Workspace
	}
	dir, err := store.WorkspaceDir(name)
	if err != nil {
		return store.Store{}, err
	}
	app.Workspace = name
	app.Dir = dir
	return store.Store{Dir: dir}, nil
}

func (app *App) loadConfig() (config.Config, error) {
	if app.cfg != nil {
		return *app.cfg, nil
	}
	cfg, err := config.Load(app.ConfigFile)
	if err != nil {
		return config.Config{}, err
	}
	app.cfg = &cfg
	return cfg, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
