package cli

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mindmap-cli/internal/webhook"
)

func newWebhookCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Send outgoing map events and run the incoming-webhook endpoint",
	}
	cmd.AddCommand(newWebhookTriggerCmd(app))
	cmd.AddCommand(newWebhookListenCmd(app))
	return cmd
}

func newWebhookTriggerCmd(app *App) *cobra.Command {
	var action, data string
	cmd := &cobra.Command{
		Use:   "trigger <url>",
		Short: "POST a map event to a webhook URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payloadData any
			if data != "" {
				if err := json.Unmarshal([]byte(data), &payloadData); err != nil {
					return writeErr(cmd, fmt.Errorf("--data must be valid JSON: %w", err))
				}
			}
			p, err := webhook.NewPayload(action, payloadData)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := webhook.Trigger(cmd.Context(), nil, args[0], p); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"url": args[0], "action": action},
			})
		},
	}
	cmd.Flags().StringVar(&action, "action", "map_saved", "Event action name")
	cmd.Flags().StringVar(&data, "data", "", "Event data as a JSON string")
	return cmd
}

func newWebhookListenCmd(app *App) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Serve POST /hooks/incoming and print accepted payloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			if addr == "" {
				addr = cfg.WebhookListenAddr
			}

			logger, err := zap.NewProduction()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer logger.Sync()

			router := webhook.NewRouter(logger, func(p webhook.Payload) {
				_ = writeOut(cmd, app, map[string]any{"data": p})
			})

			fmt.Fprintf(cmd.ErrOrStderr(), "listening on %s (POST /hooks/incoming)\n", addr)
			srv := &http.Server{Addr: addr, Handler: router}
			go func() {
				<-cmd.Context().Done()
				_ = srv.Close()
			}()
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8787)")
	return cmd
}
