package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"mindmap-cli/internal/assist"
)

const offlineAssistKey = "assist_last_reply"

func newAssistCmd(app *App) *cobra.Command {
	var provider, model, apiKey, endpoint string
	cmd := &cobra.Command{
		Use:   "assist <prompt...>",
		Short: "Ask the configured AI provider about the current map",
		Long: `Assist sends a prompt to the configured provider (openai or anthropic).
The API key is read from --key, the MINDMAP_AI_API_KEY environment, the
config file, or the workspace store, in that order. It is sent only to the
chosen provider's API.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			if provider == "" {
				provider = cfg.AIProvider
			}
			key := apiKey
			if key == "" {
				key = cfg.AIAPIKey
			}

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

			if key == "" {
				storedProvider, storedKey, err := l.AIConfig(cmd.Context())
				if err != nil {
					return writeErr(cmd, err)
				}
				if provider == "" {
					provider = storedProvider
				}
				key = storedKey
			}

			client, err := assist.New(provider, key, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			client.Model = model
			client.Endpoint = endpoint

			text, err := client.Complete(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				// Offline fallback: surface the last cached reply if it is
				// still fresh rather than failing outright.
				if cached, cerr := l.GetOffline(cmd.Context(), offlineAssistKey); cerr == nil {
					return writeOut(cmd, app, map[string]any{
						"data": map[string]any{"provider": provider, "text": cached, "cached": true},
					})
				}
				return writeErr(cmd, err)
			}
			_ = l.SetOffline(cmd.Context(), offlineAssistKey, text)
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"provider": provider, "text": text},
			})
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "AI provider (openai|anthropic)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (provider default if empty)")
	cmd.Flags().StringVar(&apiKey, "key", "", "API key (overrides config and store)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Override the provider API endpoint (proxies, tests)")
	cmd.AddCommand(newAssistConfigCmd(app))
	return cmd
}

func newAssistConfigCmd(app *App) *cobra.Command {
	var provider, apiKey string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Store the assistant provider and API key in the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if err := l.SetAIConfig(cmd.Context(), provider, apiKey); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"provider": provider},
			})
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "openai", "AI provider (openai|anthropic)")
	cmd.Flags().StringVar(&apiKey, "key", "", "API key (stored plaintext in the workspace db)")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}
